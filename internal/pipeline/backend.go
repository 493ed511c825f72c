package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ik5/mp32cdda/formats"
	"github.com/ik5/mp32cdda/internal/config"
)

// Backend starts conversions. Implementations must allow concurrent Open
// calls; the returned jobs are driven by a single goroutine each.
type Backend interface {
	Name() string
	// Open prepares the conversion of c. On error nothing is left at
	// c.Output and no resources stay open.
	Open(ctx context.Context, c Candidate, opts JobOptions) (Job, error)
}

// Job is one file in flight.
type Job interface {
	// Step does a bounded amount of work and reports whether the input is
	// exhausted. It must return promptly once ctx is done.
	Step(ctx context.Context) (done bool, err error)
	// Finish completes the output after Step reported done.
	Finish() error
	// Stop ends the job early, or cleans up after a failed Finish. Output
	// holding at least one valid frame is kept, anything else is removed.
	// Stop releases every resource and may be called more than once.
	Stop() (kept bool, err error)
	// Frames is the number of CD-DA frames written so far.
	Frames() int64
}

// JobOptions are passed from the runner to the backend.
type JobOptions struct {
	Log        *slog.Logger
	OnProgress func(Progress)
}

// Progress is an opportunistic report for a file in flight.
type Progress struct {
	Input    string
	Frames   int64
	Position time.Duration // output audio time
}

func (o JobOptions) progress(p Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

// NewBackend returns the backend selected by cfg.
func NewBackend(cfg *config.Config) Backend {
	if cfg.Backend == config.BackendFFmpeg {
		return &FFmpegBackend{Path: cfg.FFmpegPath, PollInterval: cfg.PollInterval}
	}
	return &NativeBackend{Registry: formats.NewRegistry(cfg.BlockFrames)}
}
