package core

import (
	"context"
	"time"
)

// BlobInfo describes a named blob inside a remote folder.
type BlobInfo struct {
	RemoteID string
	Name     string
	MIMEType string
}

// FolderInfo describes a remote folder.
type FolderInfo struct {
	RemoteID string
	Label    string
}

// Revision describes one entry of a blob's revision history.
type Revision struct {
	RevisionID string
	ModifiedAt time.Time
	Size       int64
}

// RemoteStore is the contract for the remote folder-oriented blob
// service. It is a dumb hierarchical container: blobs and folders are
// addressed by opaque remote ids unrelated to the domain's item ids,
// and the only query primitives are by folder and by name.
//
// Adhering to this interface keeps the engine independent of the
// concrete transport (HTTP, mock, in-memory).
type RemoteStore interface {
	// EnsureRootFolder finds a non-trashed folder with the given label
	// anywhere in the tree, or creates one at the tree root. The first
	// match wins when pre-existing duplicates exist.
	EnsureRootFolder(ctx context.Context, label string) (string, error)

	// EnsureSubfolder is the same search-or-create scoped to a parent.
	EnsureSubfolder(ctx context.Context, parentID, label string) (string, error)

	// ListFolders returns the immediate child folders of a parent.
	ListFolders(ctx context.Context, parentID string) ([]FolderInfo, error)

	// RenameFolder changes a folder's label in place.
	RenameFolder(ctx context.Context, remoteID, label string) error

	// DeleteFolder removes a folder and everything beneath it.
	DeleteFolder(ctx context.Context, remoteID string) error

	ListBlobs(ctx context.Context, folderID string) ([]BlobInfo, error)
	ReadBlob(ctx context.Context, remoteID string) ([]byte, error)
	CreateBlob(ctx context.Context, folderID, name string, data []byte, mimeType string) (string, error)
	UpdateBlobContent(ctx context.Context, remoteID string, data []byte) error
	RenameBlob(ctx context.Context, remoteID, newName string) error
	DeleteBlob(ctx context.Context, remoteID string) error

	ListRevisions(ctx context.Context, remoteID string) ([]Revision, error)
	ReadRevision(ctx context.Context, remoteID, revisionID string) ([]byte, error)
}

// Credential is a bearer credential with an optional expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the credential can still be attached to a call
// at the given instant.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && (c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt))
}

// CredentialSource is the external collaborator that hands out bearer
// credentials. The engine never performs the interactive login itself.
type CredentialSource interface {
	// Credential returns the currently held credential, possibly
	// expired or zero when none is available.
	Credential(ctx context.Context) (Credential, error)

	// Refresh obtains a fresh credential or fails.
	Refresh(ctx context.Context) (Credential, error)
}
