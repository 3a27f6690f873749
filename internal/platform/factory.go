package platform

import (
	"errors"

	"github.com/satchelhq/satchel/pkg/adapters/sqlite"
	"github.com/satchelhq/satchel/pkg/core"
	"github.com/satchelhq/satchel/pkg/drive"
	"github.com/satchelhq/satchel/pkg/engine"
)

// defaultBaseURL is the hosted blob service endpoint.
const defaultBaseURL = "https://api.satchelhq.dev"

// New assembles a ready-to-use engine: remote adapter, optional local
// snapshot store, and the orchestrator wired together.
func New(opts ...Option) (*engine.Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	remote, err := buildRemote(o)
	if err != nil {
		return nil, err
	}

	engineOpts := []engine.Option{
		engine.WithMergePolicy(o.mergePolicy),
	}
	if o.logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(o.logger))
	}
	if o.rootLabel != "" {
		engineOpts = append(engineOpts, engine.WithRootLabel(o.rootLabel))
	}
	if o.scanWidth > 0 {
		engineOpts = append(engineOpts, engine.WithScanWidth(o.scanWidth))
	}
	if o.snapshot != "" {
		store, err := sqlite.Open(o.snapshot)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, engine.WithSnapshotStore(store))
	}

	return engine.New(remote, engineOpts...)
}

func buildRemote(o *options) (core.RemoteStore, error) {
	if o.remote != nil {
		return o.remote, nil
	}

	source := o.credentials
	if source == nil && o.token != "" {
		source = drive.StaticSource{Token: o.token}
	}
	if source == nil {
		return nil, errors.New("no credential source configured; use WithCredentialSource, WithStaticToken, or WithRemoteStore")
	}

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return drive.NewClient(drive.Config{
		BaseURL:     baseURL,
		Credentials: drive.NewCredentials(source),
		HTTPClient:  o.httpClient,
		Logger:      o.logger,
	})
}
