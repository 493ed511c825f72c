package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/formats/wav"
	"github.com/ik5/mp32cdda/internal/logging"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultKillAfter    = 5 * time.Second
	stderrTailLines     = 8
)

// FFmpegAvailable reports whether the ffmpeg binary at path (or in PATH) can
// be run.
func FFmpegAvailable(path string) error {
	if path == "" {
		path = "ffmpeg"
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// FFmpegBackend delegates decoding, resampling and encoding to one ffmpeg
// process per file.
//
// Stopping a job interrupts ffmpeg so it can complete the WAV header, and
// kills it after KillAfter. The temporary output is then moved into place
// only if its header accounts for every byte written.
type FFmpegBackend struct {
	Path         string        // default "ffmpeg"
	PollInterval time.Duration // how long one Step waits, default 100ms
	KillAfter    time.Duration // grace period after interrupt, default 5s
}

func (b *FFmpegBackend) Name() string { return "ffmpeg" }

func (b *FFmpegBackend) path() string {
	if b.Path == "" {
		return "ffmpeg"
	}
	return b.Path
}

// Args returns the ffmpeg arguments converting in to CD-DA WAV at out.
func (b *FFmpegBackend) Args(in, out string) []string {
	return []string{
		"-nostdin", "-hide_banner", "-y",
		"-i", in,
		"-map_metadata", "-1", "-vn",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(audio.CDDAChannels),
		"-ar", strconv.Itoa(audio.CDDASampleRate),
		"-bitexact",
		"-f", "wav",
		out,
	}
}

func (b *FFmpegBackend) Open(_ context.Context, c Candidate, opts JobOptions) (Job, error) {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	if fi, err := os.Stat(c.Output); err == nil && !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", audio.ErrIO, c.Output)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.Output), "."+filepath.Base(c.Output)+".*.partial")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	// The job context only ends when the job is stopped, so the process
	// outlives a Step that returns on the caller's context.
	jobCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(jobCtx, b.path(), b.Args(c.Input, tmpPath)...)
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = b.KillAfter
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaultKillAfter
	}

	j := &ffmpegJob{
		input:  c.Input,
		output: c.Output,
		tmp:    tmpPath,
		log:    log,
		opts:   opts,
		poll:   b.PollInterval,
		cancel: cancel,
		exited: make(chan struct{}),
	}
	if j.poll <= 0 {
		j.poll = defaultPollInterval
	}
	j.stderr = &stderrScanner{onTime: j.progress}
	cmd.Stderr = j.stderr

	if err := cmd.Start(); err != nil {
		cancel()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: start %s: %w", ErrEncoder, b.path(), err)
	}
	log.Debug("ffmpeg started", "pid", cmd.Process.Pid)

	go func() {
		j.waitErr = cmd.Wait()
		cancel()
		close(j.exited)
	}()

	return j, nil
}

type ffmpegJob struct {
	input  string
	output string
	tmp    string
	log    *slog.Logger
	opts   JobOptions
	poll   time.Duration
	stderr *stderrScanner

	cancel  context.CancelFunc
	exited  chan struct{}
	waitErr error // valid once exited is closed

	frames   atomic.Int64
	reported atomic.Bool

	settled bool
	kept    bool
}

func (j *ffmpegJob) Frames() int64 { return j.frames.Load() }

func (j *ffmpegJob) progress(pos time.Duration) {
	frames := int64(pos * audio.CDDASampleRate / time.Second)
	j.frames.Store(frames)
	if j.reported.CompareAndSwap(false, true) {
		j.log.Info("converting", "position", pos)
	} else {
		j.log.Debug("converting", "position", pos)
	}
	j.opts.progress(Progress{Input: j.input, Frames: frames, Position: pos})
}

func (j *ffmpegJob) Step(ctx context.Context) (bool, error) {
	t := time.NewTimer(j.poll)
	defer t.Stop()

	select {
	case <-j.exited:
		if j.waitErr != nil {
			return false, j.exitError()
		}
		return true, nil
	case <-ctx.Done():
		return false, nil
	case <-t.C:
		return false, nil
	}
}

func (j *ffmpegJob) exitError() error {
	tail := j.stderr.Tail()
	if tail == "" {
		return fmt.Errorf("%w: %w", ErrEncoder, j.waitErr)
	}
	return fmt.Errorf("%w: %w: %s", ErrEncoder, j.waitErr, tail)
}

func (j *ffmpegJob) Finish() error {
	<-j.exited
	j.settled = true
	if err := j.keep(); err != nil {
		os.Remove(j.tmp)
		return err
	}
	j.kept = true
	return nil
}

func (j *ffmpegJob) Stop() (bool, error) {
	j.cancel()
	<-j.exited
	if j.settled {
		return j.kept, nil
	}
	j.settled = true

	if err := j.keep(); err != nil {
		j.log.Debug("dropping ffmpeg output", "err", err)
		if err := os.Remove(j.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("%w: %w", audio.ErrIO, err)
		}
		return false, nil
	}
	j.kept = true
	return true, nil
}

// keep moves the temporary output into place if it is a complete CD-DA WAV
// with audio in it.
func (j *ffmpegJob) keep() error {
	info, err := wav.Inspect(j.tmp)
	if err != nil {
		return err
	}
	switch {
	case !info.IsCDDA():
		return fmt.Errorf("%w: ffmpeg output is %s, %d bit", audio.ErrIO, info.Format, info.BitDepth)
	case !info.Complete:
		return fmt.Errorf("%w: ffmpeg output header does not match its size", audio.ErrIO)
	case info.Frames() == 0:
		return fmt.Errorf("%w: ffmpeg output holds no audio", audio.ErrIO)
	}

	if err := os.Chmod(j.tmp, 0o644); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := os.Rename(j.tmp, j.output); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	j.frames.Store(info.Frames())
	return nil
}

// stderrScanner splits ffmpeg's stderr into lines, on '\r' as well since
// ffmpeg rewrites its status line in place. It reports every "time=" value
// and keeps the last few lines for error messages.
type stderrScanner struct {
	onTime func(time.Duration)

	mu   sync.Mutex
	part []byte
	tail []string
}

func (s *stderrScanner) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.part = append(s.part, p...)
	for {
		i := bytes.IndexAny(s.part, "\r\n")
		if i < 0 {
			break
		}
		s.line(string(s.part[:i]))
		s.part = s.part[i+1:]
	}
	return len(p), nil
}

func (s *stderrScanner) line(l string) {
	l = strings.TrimSpace(l)
	if l == "" {
		return
	}
	if d, ok := parseTime(l); ok {
		if s.onTime != nil {
			s.onTime(d)
		}
		return
	}

	s.tail = append(s.tail, l)
	if len(s.tail) > stderrTailLines {
		s.tail = s.tail[len(s.tail)-stderrTailLines:]
	}
}

// Tail returns the last non-progress lines joined with "; ".
func (s *stderrScanner) Tail() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := s.tail
	if len(s.part) > 0 {
		tail = append(tail[:len(tail):len(tail)], strings.TrimSpace(string(s.part)))
	}
	return strings.Join(tail, "; ")
}

// parseTime extracts the HH:MM:SS.xx value of "time=" from an ffmpeg status
// line.
func parseTime(line string) (time.Duration, bool) {
	_, rest, ok := strings.Cut(line, "time=")
	if !ok {
		return 0, false
	}
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 3 || strings.HasPrefix(rest, "-") {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || h < 0 || m < 0 || sec < 0 {
		return 0, false
	}

	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	return d, true
}
