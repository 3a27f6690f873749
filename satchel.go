package satchel

import (
	"log/slog"
	"net/http"

	"github.com/satchelhq/satchel/internal/platform"
	"github.com/satchelhq/satchel/pkg/core"
	"github.com/satchelhq/satchel/pkg/engine"
)

// --- Types ---

// Engine is a public alias for the synchronization engine.
type Engine = engine.Engine

// MergePolicy is a public alias for the bulk-load merge policy.
type MergePolicy = engine.MergePolicy

const (
	MergeReplace = engine.MergeReplace
	MergeNewer   = engine.MergeNewer
)

// SettingsBlobName is the reserved remote blob holding collection
// settings; it is never surfaced as an item.
const SettingsBlobName = engine.SettingsBlobName

// --- Configuration ---

// Option defines a functional option for configuring Satchel.
type Option = platform.Option

// WithLogger sets the logger for the engine and the remote client.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRemoteStore injects a custom remote adapter (e.g. mock, in-memory).
func WithRemoteStore(remote core.RemoteStore) Option {
	return platform.WithRemoteStore(remote)
}

// WithCredentialSource sets the provider of bearer credentials.
func WithCredentialSource(source core.CredentialSource) Option {
	return platform.WithCredentialSource(source)
}

// WithStaticToken authenticates with a fixed bearer token.
func WithStaticToken(token string) Option {
	return platform.WithStaticToken(token)
}

// WithBaseURL overrides the remote service endpoint.
func WithBaseURL(url string) Option {
	return platform.WithBaseURL(url)
}

// WithHTTPClient overrides the HTTP client used for remote calls.
func WithHTTPClient(client *http.Client) Option {
	return platform.WithHTTPClient(client)
}

// WithSnapshotPath enables local persistence at the given SQLite path.
func WithSnapshotPath(path string) Option {
	return platform.WithSnapshotPath(path)
}

// WithRootLabel sets the label of the dedicated remote root folder.
func WithRootLabel(label string) Option {
	return platform.WithRootLabel(label)
}

// WithMergePolicy sets how bulk loads reconcile remote and local items.
func WithMergePolicy(policy MergePolicy) Option {
	return platform.WithMergePolicy(policy)
}

// WithScanWidth bounds the concurrency of remote folder scans.
func WithScanWidth(n int) Option {
	return platform.WithScanWidth(n)
}

// --- Factory ---

// New assembles a Satchel engine.
func New(opts ...Option) (*Engine, error) {
	return platform.New(opts...)
}
