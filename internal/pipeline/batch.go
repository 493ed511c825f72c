package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/internal/config"
	"github.com/ik5/mp32cdda/internal/logging"
)

// Options tune a batch run. The zero value selects the backend from the
// configuration and reports nothing.
type Options struct {
	Backend Backend
	// OnOutcome is called once per started file, in input order, from the
	// goroutine running the batch.
	OnOutcome func(Outcome)
	// OnProgress may be called from any worker goroutine.
	OnProgress func(Progress)
}

// Run enumerates paths and converts every candidate. Per-file failures are
// reported in the summary and never stop the batch; cancellation of ctx does,
// after the file in flight has been stopped.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, paths []string, opts Options) Summary {
	if log == nil {
		log = logging.Discard()
	}
	cands, warns := enumerate(cfg, log, paths)
	return Execute(ctx, cfg, log, cands, warns, opts)
}

func enumerate(cfg *config.Config, log *slog.Logger, paths []string) ([]Candidate, []Warning) {
	cands, warns := Enumerate(cfg, paths)
	for _, w := range warns {
		log.Warn("skipping", "path", w.Path, "reason", w.Err)
	}
	return cands, warns
}

// Execute converts already enumerated candidates. With cfg.Jobs above one,
// files run on a worker pool. Outcomes are still reported in input order and
// no output path is ever written by two jobs at once.
func Execute(ctx context.Context, cfg *config.Config, log *slog.Logger, cands []Candidate, warns []Warning, opts Options) Summary {
	if log == nil {
		log = logging.Discard()
	}
	backend := opts.Backend
	if backend == nil {
		backend = NewBackend(cfg)
	}

	sum := Summary{Warnings: warns}
	if len(cands) == 0 {
		log.Info("nothing to convert")
		return sum
	}

	jobs := max(cfg.Jobs, 1)
	log.Info("batch started", "files", len(cands), "backend", backend.Name(), "jobs", jobs)

	r := &batchRunner{
		backend: backend,
		log:     log,
		jobOpts: JobOptions{Log: log, OnProgress: opts.OnProgress},
		dirs:    make(map[string]*dirState),
		paths:   make(map[string]*sync.Mutex),
	}
	for _, c := range cands {
		if _, ok := r.paths[c.Output]; !ok {
			r.paths[c.Output] = &sync.Mutex{}
		}
	}

	emit := func(o Outcome) {
		sum.Outcomes = append(sum.Outcomes, o)
		if opts.OnOutcome != nil {
			opts.OnOutcome(o)
		}
	}

	if jobs == 1 {
		for i, c := range cands {
			if ctx.Err() != nil {
				sum.NotStarted = len(cands) - i
				break
			}
			emit(r.process(ctx, c))
		}
	} else {
		r.parallel(ctx, cands, jobs, func(o *Outcome) {
			if o == nil {
				sum.NotStarted++
				return
			}
			emit(*o)
		})
	}

	if sum.NotStarted > 0 {
		log.Warn("batch cancelled", "not_started", sum.NotStarted)
	}
	c := sum.Counts()
	log.Info("batch finished",
		"succeeded", c.Succeeded, "cancelled", c.Cancelled, "failed", c.Failed,
		"not_started", c.NotStarted, "warnings", c.Warnings)

	return sum
}

type dirState struct {
	once sync.Once
	err  error
}

type batchRunner struct {
	backend Backend
	log     *slog.Logger
	jobOpts JobOptions

	mu    sync.Mutex
	dirs  map[string]*dirState
	paths map[string]*sync.Mutex // read only once running
}

// ensureDir creates dir the first time it is needed and remembers the result
// for every later file in it.
func (r *batchRunner) ensureDir(dir string) error {
	r.mu.Lock()
	d, ok := r.dirs[dir]
	if !ok {
		d = &dirState{}
		r.dirs[dir] = d
	}
	r.mu.Unlock()

	d.once.Do(func() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			d.err = fmt.Errorf("%w: create output directory: %w", audio.ErrIO, err)
			r.log.Error("cannot create output directory", "dir", dir, "err", err)
		}
	})
	return d.err
}

func (r *batchRunner) process(ctx context.Context, c Candidate) Outcome {
	if err := r.ensureDir(c.OutputDir); err != nil {
		return Outcome{Input: c.Input, Result: Failed, Err: err}
	}

	lock := r.paths[c.Output]
	lock.Lock()
	defer lock.Unlock()

	return RunJob(ctx, r.backend, c, r.jobOpts)
}

// parallel runs cands on n workers and hands results to emit in input order.
// A nil result marks a file that was never started.
func (r *batchRunner) parallel(ctx context.Context, cands []Candidate, n int, emit func(*Outcome)) {
	results := make([]*Outcome, len(cands))
	done := make([]chan struct{}, len(cands))
	for i := range done {
		done[i] = make(chan struct{})
	}

	work := make(chan int)
	var wg sync.WaitGroup
	for range min(n, len(cands)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() == nil {
					o := r.process(ctx, cands[i])
					results[i] = &o
				}
				close(done[i])
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range cands {
			work <- i
		}
	}()

	for i := range cands {
		<-done[i]
		emit(results[i])
	}
	wg.Wait()
}

// Batch is a run in progress on its own goroutine.
type Batch struct {
	// Total is the number of candidates found.
	Total int

	outcomes chan Outcome
	done     chan struct{}
	cancel   context.CancelFunc
	summary  Summary
}

// Start enumerates paths synchronously and runs the batch in the background.
// Enumeration warnings are logged before Start returns.
func Start(ctx context.Context, cfg *config.Config, log *slog.Logger, paths []string, opts Options) *Batch {
	if log == nil {
		log = logging.Discard()
	}
	ctx, cancel := context.WithCancel(ctx)
	cands, warns := enumerate(cfg, log, paths)

	b := &Batch{
		Total:    len(cands),
		outcomes: make(chan Outcome, len(cands)),
		done:     make(chan struct{}),
		cancel:   cancel,
	}

	user := opts.OnOutcome
	opts.OnOutcome = func(o Outcome) {
		if user != nil {
			user(o)
		}
		b.outcomes <- o
	}

	go func() {
		defer close(b.done)
		defer cancel()
		b.summary = Execute(ctx, cfg, log, cands, warns, opts)
		close(b.outcomes)
	}()

	return b
}

// Outcomes delivers every outcome as its file completes. It is buffered for
// the whole batch and closed when the batch ends.
func (b *Batch) Outcomes() <-chan Outcome { return b.outcomes }

// Done is closed once the batch has finished.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Cancel stops the batch. The file in flight is stopped and no further files
// start. It is safe to call at any time and more than once.
func (b *Batch) Cancel() { b.cancel() }

// Wait blocks until the batch has finished and returns its summary.
func (b *Batch) Wait() Summary {
	<-b.done
	return b.summary
}
