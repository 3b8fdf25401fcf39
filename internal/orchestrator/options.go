package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// defaultEventBuffer is the events channel capacity when none is configured.
const defaultEventBuffer = 256

// Option configures a Coordinator. Use With* functions to create Options.
type Option func(*coordinatorOptions)

// coordinatorOptions holds all optional configuration.
type coordinatorOptions struct {
	logger      *zap.Logger
	journal     Journal
	now         func() time.Time
	eventBuffer int
	baseCtx     context.Context
	artifact    string
}

func defaultOptions() *coordinatorOptions {
	return &coordinatorOptions{
		logger:      zap.NewNop(),
		journal:     nopJournal{},
		now:         time.Now,
		eventBuffer: defaultEventBuffer,
		baseCtx:     context.Background(),
		artifact:    DefaultArtifactName,
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *coordinatorOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithJournal records session history to j.
func WithJournal(j Journal) Option {
	return func(o *coordinatorOptions) {
		if j != nil {
			o.journal = j
		}
	}
}

// WithClock sets the time source used for generated file names and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *coordinatorOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEventBuffer sets the events channel capacity.
func WithEventBuffer(n int) Option {
	return func(o *coordinatorOptions) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

// WithBaseContext sets the context passed to remote calls scheduled by the
// advance rule. Its values are inherited; cancellation is not.
func WithBaseContext(ctx context.Context) Option {
	return func(o *coordinatorOptions) {
		if ctx != nil {
			o.baseCtx = context.WithoutCancel(ctx)
		}
	}
}

// WithArtifactName sets the file name reported by DownloadArtifact.
func WithArtifactName(name string) Option {
	return func(o *coordinatorOptions) {
		if name != "" {
			o.artifact = name
		}
	}
}
