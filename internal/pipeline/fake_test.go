package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ik5/mp32cdda/internal/config"
)

func testConfig(exts ...string) *config.Config {
	cfg := config.DefaultConfig()
	if len(exts) > 0 {
		cfg.Extensions = exts
	}
	return &cfg
}

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// fakeJob steps a fixed number of times, adding 100 frames per step.
type fakeJob struct {
	steps      int
	delay      time.Duration
	stepErr    error // returned by the last step instead of done
	finishErr  error
	keepOnStop bool
	onStep     func(n int)

	frames   int64
	stepped  int
	finished int
	stopped  int
	release  func()
}

func (j *fakeJob) Step(ctx context.Context) (bool, error) {
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return false, nil
		}
	}
	j.stepped++
	j.frames += 100
	if j.onStep != nil {
		j.onStep(j.stepped)
	}
	if j.stepped >= j.steps {
		if j.stepErr != nil {
			return false, j.stepErr
		}
		return true, nil
	}
	return false, nil
}

func (j *fakeJob) Finish() error {
	j.finished++
	j.done()
	return j.finishErr
}

func (j *fakeJob) Stop() (bool, error) {
	j.stopped++
	j.done()
	return j.keepOnStop && j.frames > 0, nil
}

func (j *fakeJob) Frames() int64 { return j.frames }

func (j *fakeJob) done() {
	if j.release != nil {
		j.release()
		j.release = nil
	}
}

// fakeBackend records every Open and flags two jobs on one output path.
type fakeBackend struct {
	newJob  func(c Candidate) (*fakeJob, error)
	openErr error

	mu      sync.Mutex
	opened  []string
	jobs    []*fakeJob
	active  map[string]int
	overlap bool
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open(_ context.Context, c Candidate, _ JobOptions) (Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.opened = append(b.opened, c.Input)
	if b.openErr != nil {
		return nil, b.openErr
	}

	j := &fakeJob{steps: 1}
	if b.newJob != nil {
		var err error
		if j, err = b.newJob(c); err != nil {
			return nil, err
		}
	}

	if b.active == nil {
		b.active = make(map[string]int)
	}
	b.active[c.Output]++
	if b.active[c.Output] > 1 {
		b.overlap = true
	}
	j.release = func() {
		b.mu.Lock()
		b.active[c.Output]--
		b.mu.Unlock()
	}
	b.jobs = append(b.jobs, j)

	return j, nil
}

func (b *fakeBackend) openedInputs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.opened)
}
