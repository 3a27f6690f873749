package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/satchelhq/satchel/pkg/core"
)

type folderRecord struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Parent  string `json:"parent,omitempty"`
	Trashed bool   `json:"trashed,omitempty"`
}

type folderList struct {
	Folders []folderRecord `json:"folders"`
}

// searchFolders queries folders by label, optionally scoped to a parent.
// An empty label lists every folder in scope.
func (c *Client) searchFolders(ctx context.Context, label, parentID string) ([]folderRecord, error) {
	q := url.Values{}
	if label != "" {
		q.Set("label", label)
	}
	if parentID != "" {
		q.Set("parent", parentID)
	}
	var out folderList
	if err := c.doJSON(ctx, http.MethodGet, "/v2/folders?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

func (c *Client) createFolder(ctx context.Context, label, parentID string) (string, error) {
	body := map[string]string{"label": label}
	if parentID != "" {
		body["parent"] = parentID
	}
	var out folderRecord
	if err := c.doJSON(ctx, http.MethodPost, "/v2/folders", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// EnsureRootFolder searches the whole tree for a non-trashed folder with
// the given label and returns the first match; otherwise one is created
// at the tree root. Duplicate labels are a pre-existing-data anomaly the
// engine tolerates rather than repairs.
func (c *Client) EnsureRootFolder(ctx context.Context, label string) (string, error) {
	found, err := c.searchFolders(ctx, label, "")
	if err != nil {
		return "", fmt.Errorf("searching for root folder %q: %w", label, err)
	}
	for _, f := range found {
		if !f.Trashed {
			return f.ID, nil
		}
	}
	id, err := c.createFolder(ctx, label, "")
	if err != nil {
		return "", fmt.Errorf("creating root folder %q: %w", label, err)
	}
	c.logf(slog.LevelInfo, "created root folder", "label", label, "id", id)
	return id, nil
}

// EnsureSubfolder is the same search-or-create pattern scoped to parentID.
func (c *Client) EnsureSubfolder(ctx context.Context, parentID, label string) (string, error) {
	found, err := c.searchFolders(ctx, label, parentID)
	if err != nil {
		return "", fmt.Errorf("searching for subfolder %q: %w", label, err)
	}
	for _, f := range found {
		if !f.Trashed {
			return f.ID, nil
		}
	}
	id, err := c.createFolder(ctx, label, parentID)
	if err != nil {
		return "", fmt.Errorf("creating subfolder %q: %w", label, err)
	}
	c.logf(slog.LevelDebug, "created subfolder", "label", label, "parent", parentID, "id", id)
	return id, nil
}

// ListFolders returns the immediate, non-trashed child folders of parentID.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]core.FolderInfo, error) {
	found, err := c.searchFolders(ctx, "", parentID)
	if err != nil {
		return nil, err
	}
	infos := make([]core.FolderInfo, 0, len(found))
	for _, f := range found {
		if f.Trashed {
			continue
		}
		infos = append(infos, core.FolderInfo{RemoteID: f.ID, Label: f.Label})
	}
	return infos, nil
}

// RenameFolder changes a folder's label in place. Folders carry no
// content-derived naming, so an in-place rename is safe here.
func (c *Client) RenameFolder(ctx context.Context, remoteID, label string) error {
	body := map[string]string{"label": label}
	return c.doJSON(ctx, http.MethodPatch, "/v2/folders/"+url.PathEscape(remoteID), body, nil)
}

// DeleteFolder removes a folder and everything beneath it.
func (c *Client) DeleteFolder(ctx context.Context, remoteID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v2/folders/"+url.PathEscape(remoteID)+"?recursive=true", nil, nil)
}
