package platform

import (
	"log/slog"
	"net/http"

	"github.com/satchelhq/satchel/pkg/core"
	"github.com/satchelhq/satchel/pkg/engine"
)

// options holds the internal configuration for the Satchel engine.
type options struct {
	remote      core.RemoteStore
	credentials core.CredentialSource
	token       string
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	snapshot    string
	rootLabel   string
	mergePolicy engine.MergePolicy
	scanWidth   int
}

// Option defines a functional option for configuring Satchel.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		mergePolicy: engine.MergeNewer,
	}
}

// WithLogger sets the logger for the engine and the remote client.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRemoteStore injects a custom remote adapter (e.g. mock,
// in-memory). If provided, the default HTTP client is skipped.
func WithRemoteStore(remote core.RemoteStore) Option {
	return func(o *options) {
		o.remote = remote
	}
}

// WithCredentialSource sets the collaborator that provides and
// refreshes bearer credentials for the remote service.
func WithCredentialSource(source core.CredentialSource) Option {
	return func(o *options) {
		o.credentials = source
	}
}

// WithStaticToken authenticates with a fixed bearer token instead of a
// refreshing credential source. Mainly for scripts and tests.
func WithStaticToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithBaseURL overrides the remote service endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client used for remote calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithSnapshotPath enables local persistence at the given SQLite
// database path. Empty means in-memory only.
func WithSnapshotPath(path string) Option {
	return func(o *options) {
		o.snapshot = path
	}
}

// WithRootLabel sets the label of the dedicated remote root folder.
func WithRootLabel(label string) Option {
	return func(o *options) {
		o.rootLabel = label
	}
}

// WithMergePolicy sets how bulk loads reconcile remote and local items.
func WithMergePolicy(policy engine.MergePolicy) Option {
	return func(o *options) {
		o.mergePolicy = policy
	}
}

// WithScanWidth bounds the concurrency of remote folder scans.
func WithScanWidth(n int) Option {
	return func(o *options) {
		o.scanWidth = n
	}
}
