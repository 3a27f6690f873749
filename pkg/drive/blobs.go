package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/satchelhq/satchel/pkg/core"
)

type blobRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
}

type blobList struct {
	Blobs []blobRecord `json:"blobs"`
}

type revisionRecord struct {
	ID         string    `json:"id"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Size       int64     `json:"size"`
}

type revisionList struct {
	Revisions []revisionRecord `json:"revisions"`
}

// ListBlobs enumerates the blobs directly inside a folder.
func (c *Client) ListBlobs(ctx context.Context, folderID string) ([]core.BlobInfo, error) {
	var out blobList
	if err := c.doJSON(ctx, http.MethodGet, "/v2/folders/"+url.PathEscape(folderID)+"/blobs", nil, &out); err != nil {
		return nil, err
	}
	infos := make([]core.BlobInfo, 0, len(out.Blobs))
	for _, b := range out.Blobs {
		infos = append(infos, core.BlobInfo{RemoteID: b.ID, Name: b.Name, MIMEType: b.MIMEType})
	}
	return infos, nil
}

// ReadBlob fetches a blob's raw bytes.
func (c *Client) ReadBlob(ctx context.Context, remoteID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/v2/blobs/"+url.PathEscape(remoteID)+"/content", "", nil)
}

// CreateBlob uploads a new blob via a multipart request: one JSON part
// for the metadata, one media part for the bytes. Returns the remote id
// assigned by the store.
func (c *Client) CreateBlob(ctx context.Context, folderID, name string, data []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	meta, err := writer.CreateFormField("metadata")
	if err != nil {
		return "", err
	}
	if err := json.NewEncoder(meta).Encode(blobRecord{Name: name, MIMEType: mimeType}); err != nil {
		return "", err
	}
	media, err := writer.CreateFormFile("media", name)
	if err != nil {
		return "", err
	}
	if _, err := media.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	reply, err := c.do(ctx, http.MethodPost,
		"/v2/folders/"+url.PathEscape(folderID)+"/blobs",
		writer.FormDataContentType(), body.Bytes())
	if err != nil {
		return "", err
	}
	var created blobRecord
	if err := json.Unmarshal(reply, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateBlobContent replaces a blob's bytes in place, keeping its name.
func (c *Client) UpdateBlobContent(ctx context.Context, remoteID string, data []byte) error {
	_, err := c.do(ctx, http.MethodPatch,
		"/v2/blobs/"+url.PathEscape(remoteID)+"/content",
		"application/octet-stream", data)
	return err
}

// RenameBlob changes a blob's name, leaving its content alone.
func (c *Client) RenameBlob(ctx context.Context, remoteID, newName string) error {
	body := map[string]string{"name": newName}
	return c.doJSON(ctx, http.MethodPatch, "/v2/blobs/"+url.PathEscape(remoteID), body, nil)
}

// DeleteBlob removes a blob.
func (c *Client) DeleteBlob(ctx context.Context, remoteID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v2/blobs/"+url.PathEscape(remoteID), nil, nil)
}

// ListRevisions returns a blob's revision history, oldest first.
func (c *Client) ListRevisions(ctx context.Context, remoteID string) ([]core.Revision, error) {
	var out revisionList
	if err := c.doJSON(ctx, http.MethodGet, "/v2/blobs/"+url.PathEscape(remoteID)+"/revisions", nil, &out); err != nil {
		return nil, err
	}
	revisions := make([]core.Revision, 0, len(out.Revisions))
	for _, r := range out.Revisions {
		revisions = append(revisions, core.Revision{RevisionID: r.ID, ModifiedAt: r.ModifiedAt, Size: r.Size})
	}
	return revisions, nil
}

// ReadRevision fetches the bytes of a specific revision.
func (c *Client) ReadRevision(ctx context.Context, remoteID, revisionID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet,
		"/v2/blobs/"+url.PathEscape(remoteID)+"/revisions/"+url.PathEscape(revisionID)+"/content", "", nil)
}
