package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ik5/mp32cdda/internal/logging"
)

// State is a step of the per-file state machine.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateStreaming
	StateFinalizing
	StateDone
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result classifies an Outcome.
type Result int

const (
	Success Result = iota
	Cancelled
	Failed
)

func (r Result) String() string {
	switch r {
	case Success:
		return "ok"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the final report for one input file.
type Outcome struct {
	Input string
	// Output is the file left on disk, empty when none was kept.
	Output  string
	Result  Result
	Err     error
	Frames  int64 // CD-DA frames in Output
	Elapsed time.Duration
}

// Reason renders the outcome for display.
func (o Outcome) Reason() string {
	switch {
	case o.Result == Success:
		return "ok"
	case o.Result == Cancelled:
		return "cancelled"
	case o.Err != nil:
		return o.Err.Error()
	default:
		return o.Result.String()
	}
}

// RunJob converts one candidate. The context is polled before every step;
// once it is done the job is stopped and the partial output, if any, is
// kept. RunJob never panics on a per-file problem and always returns
// exactly one Outcome.
func RunJob(ctx context.Context, b Backend, c Candidate, opts JobOptions) Outcome {
	start := time.Now()
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	log := opts.Log.With("input", c.Input)
	opts.Log = log

	state := StateIdle
	to := func(s State) {
		log.Debug("job state", "from", state, "to", s)
		state = s
	}

	out := Outcome{Input: c.Input}
	finish := func(r Result, err error) Outcome {
		out.Result, out.Err = r, err
		out.Elapsed = time.Since(start)
		switch r {
		case Success:
			to(StateDone)
			log.Info("converted", "output", out.Output, "frames", out.Frames, "elapsed", out.Elapsed.Round(time.Millisecond))
		case Cancelled:
			to(StateCancelled)
			log.Info("cancelled", "kept", out.Output, "frames", out.Frames)
		default:
			to(StateFailed)
			log.Error("conversion failed", "err", err, "kept", out.Output)
		}
		return out
	}

	if err := ctx.Err(); err != nil {
		return finish(Cancelled, err)
	}

	to(StateOpening)
	job, err := b.Open(ctx, c, opts)
	if err != nil {
		return finish(Failed, err)
	}

	stop := func() error {
		kept, err := job.Stop()
		if kept {
			out.Output = c.Output
			out.Frames = job.Frames()
		}
		return err
	}

	to(StateStreaming)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err := stop(); err != nil {
				return finish(Failed, errors.Join(ctxErr, err))
			}
			return finish(Cancelled, ctxErr)
		}

		done, err := job.Step(ctx)
		if err != nil {
			if stopErr := stop(); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
			return finish(Failed, err)
		}
		if done {
			break
		}
	}

	to(StateFinalizing)
	if err := job.Finish(); err != nil {
		if stopErr := stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return finish(Failed, err)
	}
	out.Output = c.Output
	out.Frames = job.Frames()

	return finish(Success, nil)
}
