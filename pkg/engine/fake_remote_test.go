package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/satchelhq/satchel/pkg/core"
)

// fakeRemote is an in-memory core.RemoteStore. Listings are sorted by
// name so tests see deterministic enumeration order.
type fakeRemote struct {
	mu      sync.Mutex
	nextID  int
	folders map[string]*fakeFolder
	blobs   map[string]*fakeBlob

	// failNext makes the next N calls fail with failErr.
	failNext int
	failErr  error
}

type fakeFolder struct {
	id     string
	label  string
	parent string
}

type fakeBlob struct {
	id       string
	folder   string
	name     string
	mimeType string
	data     []byte
	revs     [][]byte
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		folders: make(map[string]*fakeFolder),
		blobs:   make(map[string]*fakeBlob),
		failErr: core.ErrRemoteUnavailable,
	}
}

func (f *fakeRemote) failFor(n int) {
	f.mu.Lock()
	f.failNext = n
	f.mu.Unlock()
}

func (f *fakeRemote) checkFail() error {
	if f.failNext > 0 {
		f.failNext--
		return f.failErr
	}
	return nil
}

func (f *fakeRemote) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%04d", prefix, f.nextID)
}

func (f *fakeRemote) EnsureRootFolder(_ context.Context, label string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return "", err
	}
	for _, fd := range sortedFolders(f.folders) {
		if fd.label == label && fd.parent == "" {
			return fd.id, nil
		}
	}
	fd := &fakeFolder{id: f.genID("fld"), label: label}
	f.folders[fd.id] = fd
	return fd.id, nil
}

func (f *fakeRemote) EnsureSubfolder(_ context.Context, parentID, label string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return "", err
	}
	for _, fd := range sortedFolders(f.folders) {
		if fd.label == label && fd.parent == parentID {
			return fd.id, nil
		}
	}
	fd := &fakeFolder{id: f.genID("fld"), label: label, parent: parentID}
	f.folders[fd.id] = fd
	return fd.id, nil
}

func (f *fakeRemote) ListFolders(_ context.Context, parentID string) ([]core.FolderInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	var out []core.FolderInfo
	for _, fd := range sortedFolders(f.folders) {
		if fd.parent == parentID {
			out = append(out, core.FolderInfo{RemoteID: fd.id, Label: fd.label})
		}
	}
	return out, nil
}

func (f *fakeRemote) RenameFolder(_ context.Context, remoteID, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return err
	}
	fd, ok := f.folders[remoteID]
	if !ok {
		return core.ErrNotFound
	}
	fd.label = label
	return nil
}

func (f *fakeRemote) DeleteFolder(_ context.Context, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return err
	}
	if _, ok := f.folders[remoteID]; !ok {
		return core.ErrNotFound
	}
	delete(f.folders, remoteID)
	for id, b := range f.blobs {
		if b.folder == remoteID {
			delete(f.blobs, id)
		}
	}
	return nil
}

func (f *fakeRemote) ListBlobs(_ context.Context, folderID string) ([]core.BlobInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	var out []core.BlobInfo
	for _, b := range sortedBlobs(f.blobs) {
		if b.folder == folderID {
			out = append(out, core.BlobInfo{RemoteID: b.id, Name: b.name, MIMEType: b.mimeType})
		}
	}
	return out, nil
}

func (f *fakeRemote) ReadBlob(_ context.Context, remoteID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	b, ok := f.blobs[remoteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return append([]byte(nil), b.data...), nil
}

func (f *fakeRemote) CreateBlob(_ context.Context, folderID, name string, data []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return "", err
	}
	b := &fakeBlob{
		id:       f.genID("blb"),
		folder:   folderID,
		name:     name,
		mimeType: mimeType,
		data:     append([]byte(nil), data...),
		revs:     [][]byte{append([]byte(nil), data...)},
	}
	f.blobs[b.id] = b
	return b.id, nil
}

func (f *fakeRemote) UpdateBlobContent(_ context.Context, remoteID string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return err
	}
	b, ok := f.blobs[remoteID]
	if !ok {
		return core.ErrNotFound
	}
	b.data = append([]byte(nil), data...)
	b.revs = append(b.revs, append([]byte(nil), data...))
	return nil
}

func (f *fakeRemote) RenameBlob(_ context.Context, remoteID, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return err
	}
	b, ok := f.blobs[remoteID]
	if !ok {
		return core.ErrNotFound
	}
	b.name = newName
	return nil
}

func (f *fakeRemote) DeleteBlob(_ context.Context, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return err
	}
	if _, ok := f.blobs[remoteID]; !ok {
		return core.ErrNotFound
	}
	delete(f.blobs, remoteID)
	return nil
}

func (f *fakeRemote) ListRevisions(_ context.Context, remoteID string) ([]core.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	b, ok := f.blobs[remoteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]core.Revision, len(b.revs))
	for i, rev := range b.revs {
		out[i] = core.Revision{
			RevisionID: fmt.Sprintf("rev%d", i+1),
			ModifiedAt: time.Unix(int64(1700000000+i), 0),
			Size:       int64(len(rev)),
		}
	}
	return out, nil
}

func (f *fakeRemote) ReadRevision(_ context.Context, remoteID, revisionID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	b, ok := f.blobs[remoteID]
	if !ok {
		return nil, core.ErrNotFound
	}
	for i, rev := range b.revs {
		if fmt.Sprintf("rev%d", i+1) == revisionID {
			return append([]byte(nil), rev...), nil
		}
	}
	return nil, core.ErrNotFound
}

// seedBlob injects a pre-existing remote blob, bypassing the store API.
func (f *fakeRemote) seedBlob(folderID, name string, data []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &fakeBlob{
		id:     f.genID("blb"),
		folder: folderID,
		name:   name,
		data:   append([]byte(nil), data...),
		revs:   [][]byte{append([]byte(nil), data...)},
	}
	f.blobs[b.id] = b
	return b.id
}

// blobNames returns the names of all blobs in a folder, sorted.
func (f *fakeRemote) blobNames(folderID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, b := range f.blobs {
		if b.folder == folderID {
			out = append(out, b.name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedFolders(m map[string]*fakeFolder) []*fakeFolder {
	out := make([]*fakeFolder, 0, len(m))
	for _, fd := range m {
		out = append(out, fd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func sortedBlobs(m map[string]*fakeBlob) []*fakeBlob {
	out := make([]*fakeBlob, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

var _ core.RemoteStore = (*fakeRemote)(nil)
