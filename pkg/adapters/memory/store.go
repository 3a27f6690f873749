// Package memory provides an in-memory core.RemoteStore. It backs
// examples, prototypes, and tests that need a remote without a
// network.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/satchelhq/satchel/pkg/core"
)

type folder struct {
	id     string
	label  string
	parent string
}

type blob struct {
	id       string
	folder   string
	name     string
	mimeType string
	data     []byte
	revs     [][]byte
	modified time.Time
}

// Store is an in-memory remote blob store. Listings are returned in a
// stable order (by creation) so callers see deterministic enumeration.
type Store struct {
	mu      sync.Mutex
	nextID  int
	folders map[string]*folder
	blobs   map[string]*blob
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		folders: make(map[string]*folder),
		blobs:   make(map[string]*blob),
		now:     time.Now,
	}
}

func (s *Store) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%06d", prefix, s.nextID)
}

func (s *Store) EnsureRootFolder(_ context.Context, label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.sortedFolders() {
		if f.label == label && f.parent == "" {
			return f.id, nil
		}
	}
	f := &folder{id: s.genID("folder"), label: label}
	s.folders[f.id] = f
	return f.id, nil
}

func (s *Store) EnsureSubfolder(_ context.Context, parentID, label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[parentID]; !ok {
		return "", core.ErrNotFound
	}
	for _, f := range s.sortedFolders() {
		if f.label == label && f.parent == parentID {
			return f.id, nil
		}
	}
	f := &folder{id: s.genID("folder"), label: label, parent: parentID}
	s.folders[f.id] = f
	return f.id, nil
}

func (s *Store) ListFolders(_ context.Context, parentID string) ([]core.FolderInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.FolderInfo
	for _, f := range s.sortedFolders() {
		if f.parent == parentID {
			out = append(out, core.FolderInfo{RemoteID: f.id, Label: f.label})
		}
	}
	return out, nil
}

func (s *Store) RenameFolder(_ context.Context, remoteID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[remoteID]
	if !ok {
		return core.ErrNotFound
	}
	f.label = label
	return nil
}

func (s *Store) DeleteFolder(_ context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[remoteID]; !ok {
		return core.ErrNotFound
	}
	delete(s.folders, remoteID)
	for id, b := range s.blobs {
		if b.folder == remoteID {
			delete(s.blobs, id)
		}
	}
	return nil
}

func (s *Store) ListBlobs(_ context.Context, folderID string) ([]core.BlobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.BlobInfo
	for _, b := range s.sortedBlobs() {
		if b.folder == folderID {
			out = append(out, core.BlobInfo{RemoteID: b.id, Name: b.name, MIMEType: b.mimeType})
		}
	}
	return out, nil
}

func (s *Store) ReadBlob(_ context.Context, remoteID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[remoteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return append([]byte(nil), b.data...), nil
}

func (s *Store) CreateBlob(_ context.Context, folderID, name string, data []byte, mimeType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[folderID]; !ok {
		return "", core.ErrNotFound
	}
	b := &blob{
		id:       s.genID("blob"),
		folder:   folderID,
		name:     name,
		mimeType: mimeType,
		data:     append([]byte(nil), data...),
		revs:     [][]byte{append([]byte(nil), data...)},
		modified: s.now(),
	}
	s.blobs[b.id] = b
	return b.id, nil
}

func (s *Store) UpdateBlobContent(_ context.Context, remoteID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[remoteID]
	if !ok {
		return core.ErrNotFound
	}
	b.data = append([]byte(nil), data...)
	b.revs = append(b.revs, append([]byte(nil), data...))
	b.modified = s.now()
	return nil
}

func (s *Store) RenameBlob(_ context.Context, remoteID, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[remoteID]
	if !ok {
		return core.ErrNotFound
	}
	b.name = newName
	return nil
}

func (s *Store) DeleteBlob(_ context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[remoteID]; !ok {
		return core.ErrNotFound
	}
	delete(s.blobs, remoteID)
	return nil
}

func (s *Store) ListRevisions(_ context.Context, remoteID string) ([]core.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[remoteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]core.Revision, len(b.revs))
	for i, rev := range b.revs {
		out[i] = core.Revision{
			RevisionID: fmt.Sprintf("%s.r%d", b.id, i+1),
			ModifiedAt: b.modified,
			Size:       int64(len(rev)),
		}
	}
	return out, nil
}

func (s *Store) ReadRevision(_ context.Context, remoteID, revisionID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[remoteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	for i, rev := range b.revs {
		if fmt.Sprintf("%s.r%d", b.id, i+1) == revisionID {
			return append([]byte(nil), rev...), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) sortedFolders() []*folder {
	out := make([]*folder, 0, len(s.folders))
	for _, f := range s.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Store) sortedBlobs() []*blob {
	out := make([]*blob, 0, len(s.blobs))
	for _, b := range s.blobs {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

var _ core.RemoteStore = (*Store)(nil)
