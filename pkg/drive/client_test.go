package drive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/satchelhq/satchel/pkg/core"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:     server.URL,
		Credentials: NewCredentials(StaticSource{Token: "tok"}),
		HTTPClient:  server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.baseDelay = 0
	return client
}

func TestEnsureRootFolderFindsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/folders" || r.Method != http.MethodGet {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("label") != "Satchel" {
			t.Fatalf("label query = %q", r.URL.Query().Get("label"))
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"folders":[{"id":"f_trash","label":"Satchel","trashed":true},{"id":"f_live","label":"Satchel"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	id, err := client.EnsureRootFolder(context.Background(), "Satchel")
	if err != nil {
		t.Fatalf("EnsureRootFolder: %v", err)
	}
	if id != "f_live" {
		t.Errorf("expected first non-trashed match f_live, got %s", id)
	}
}

func TestEnsureSubfolderCreatesWhenMissing(t *testing.T) {
	var created int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			if r.URL.Query().Get("parent") != "f_root" {
				t.Fatalf("parent query = %q", r.URL.Query().Get("parent"))
			}
			_, _ = w.Write([]byte(`{"folders":[]}`))
		case r.Method == http.MethodPost:
			atomic.AddInt32(&created, 1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["label"] != "Plans" || body["parent"] != "f_root" {
				t.Fatalf("create body = %v", body)
			}
			_, _ = w.Write([]byte(`{"id":"f_new","label":"Plans"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	id, err := client.EnsureSubfolder(context.Background(), "f_root", "Plans")
	if err != nil {
		t.Fatalf("EnsureSubfolder: %v", err)
	}
	if id != "f_new" || atomic.LoadInt32(&created) != 1 {
		t.Errorf("id=%s created=%d", id, created)
	}
}

func TestRetriesTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"blobs":[{"id":"b1","name":"a.json","mimeType":"application/json"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	blobs, err := client.ListBlobs(context.Background(), "f_root")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(blobs) != 1 || blobs[0].RemoteID != "b1" {
		t.Fatalf("blobs = %+v", blobs)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls (1 retry), got %d", calls)
	}
}

func TestCreateBlobMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		var meta blobRecord
		if err := json.Unmarshal([]byte(r.FormValue("metadata")), &meta); err != nil {
			t.Fatalf("metadata part: %v", err)
		}
		if meta.Name != "7-Algebra-1.json" || meta.MIMEType != "application/json" {
			t.Fatalf("metadata = %+v", meta)
		}
		media, _, err := r.FormFile("media")
		if err != nil {
			t.Fatalf("media part: %v", err)
		}
		payload, _ := io.ReadAll(media)
		if string(payload) != `{"id":"x"}` {
			t.Fatalf("media payload = %s", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"b_new"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	id, err := client.CreateBlob(context.Background(), "f_root", "7-Algebra-1.json", []byte(`{"id":"x"}`), "application/json")
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	if id != "b_new" {
		t.Errorf("id = %s", id)
	}
}

func TestErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"notFound","message":"no such blob"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.ReadBlob(context.Background(), "b_missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound mapping, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != "notFound" {
		t.Fatalf("expected typed HTTPError with code, got %v", err)
	}
}

func TestListRevisions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/blobs/b1/revisions" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"revisions":[{"id":"r1","modifiedAt":"2026-03-14T09:00:00Z","size":42}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	revisions, err := client.ListRevisions(context.Background(), "b1")
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revisions) != 1 || revisions[0].RevisionID != "r1" || revisions[0].Size != 42 {
		t.Fatalf("revisions = %+v", revisions)
	}
}
