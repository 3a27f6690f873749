package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/satchelhq/satchel/pkg/core"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	snapshot    core.SnapshotStore
	logger      *slog.Logger
	now         func() time.Time
	rootLabel   string
	mergePolicy MergePolicy
	scanWidth   int
}

func defaultOptions() *options {
	return &options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		rootLabel:   "Satchel",
		mergePolicy: MergeNewer,
		scanWidth:   4,
	}
}

// WithSnapshotStore persists local state across restarts.
func WithSnapshotStore(s core.SnapshotStore) Option {
	return func(o *options) { o.snapshot = s }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRootLabel sets the label of the dedicated remote root folder.
func WithRootLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.rootLabel = label
		}
	}
}

// WithMergePolicy sets how bulk loads reconcile remote and local items.
func WithMergePolicy(p MergePolicy) Option {
	return func(o *options) {
		if p == MergeReplace || p == MergeNewer {
			o.mergePolicy = p
		}
	}
}

// WithScanWidth bounds how many blob reads a folder scan runs at once.
func WithScanWidth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.scanWidth = n
		}
	}
}
