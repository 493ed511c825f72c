package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/formats"
	"github.com/ik5/mp32cdda/formats/mp3"
	"github.com/ik5/mp32cdda/formats/wav"
	"github.com/ik5/mp32cdda/internal/logging"
)

// progressEvery is the output length between progress reports, 10 s.
const progressEvery = 10 * audio.CDDASampleRate

// NativeBackend decodes, mixes and resamples in process and writes the WAV
// itself.
type NativeBackend struct {
	// Registry supplies the decoders, nil means formats.DefaultRegistry.
	Registry *audio.Registry

	openSource func(path string) (audio.Source, error)
}

func (b *NativeBackend) Name() string { return "native" }

func (b *NativeBackend) open(path string) (audio.Source, error) {
	if b.openSource != nil {
		return b.openSource(path)
	}
	reg := b.Registry
	if reg == nil {
		reg = formats.DefaultRegistry()
	}
	return formats.Open(path, reg)
}

func (b *NativeBackend) Open(_ context.Context, c Candidate, opts JobOptions) (Job, error) {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	src, err := b.open(c.Input)
	if err != nil {
		return nil, err
	}

	f := src.Format()
	conv, err := audio.NewConverter(f)
	if err != nil {
		src.Close()
		return nil, err
	}

	sink, err := wav.Create(c.Output)
	if err != nil {
		src.Close()
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(c.Input), ".mp3") {
		if title, err := mp3.ReadTitle(c.Input); err == nil && title != "" {
			log = log.With("title", title)
		}
	}
	if f.Downmixed() {
		log.Info("keeping the first two channels", "channels", f.Channels)
	}
	log.Debug("opened", "format", f, "passthrough", conv.Resampler().Identity())

	return &nativeJob{
		input:      c.Input,
		src:        src,
		conv:       conv,
		sink:       sink,
		log:        log,
		opts:       opts,
		nextReport: progressEvery,
	}, nil
}

type nativeJob struct {
	input string
	src   audio.Source
	conv  *audio.Converter
	sink  *wav.Sink
	log   *slog.Logger
	opts  JobOptions

	blocks     int
	nextReport int64
	reported   bool

	srcClosed bool
	settled   bool // sink finalized or discarded
	kept      bool
}

func (j *nativeJob) Frames() int64 { return j.sink.Frames() }

func (j *nativeJob) Step(context.Context) (bool, error) {
	b, err := j.src.NextBlock()
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return true, nil
	case errors.Is(err, audio.ErrDecode) && j.blocks > 0:
		j.log.Warn("corrupt data, ending stream early", "err", err, "frames", j.sink.Frames())
		return true, nil
	default:
		return false, err
	}
	j.blocks++

	out, err := j.conv.Convert(b)
	if err != nil {
		return false, err
	}
	if err := j.sink.Write(out); err != nil {
		return false, err
	}

	if n := j.sink.Frames(); n >= j.nextReport {
		j.nextReport = n + progressEvery
		j.report(n)
	}
	return false, nil
}

func (j *nativeJob) report(frames int64) {
	pos := time.Duration(frames) * time.Second / audio.CDDASampleRate
	if !j.reported {
		j.reported = true
		j.log.Info("converting", "position", pos)
	} else {
		j.log.Debug("converting", "position", pos)
	}
	j.opts.progress(Progress{Input: j.input, Frames: frames, Position: pos})
}

func (j *nativeJob) Finish() error {
	tail, err := j.conv.Flush()
	if err != nil {
		return err
	}
	if err := j.sink.Write(tail); err != nil {
		return err
	}
	j.closeSource()

	j.settled = true
	if err := j.sink.Finalize(); err != nil {
		return err
	}
	j.kept = true
	return nil
}

func (j *nativeJob) Stop() (bool, error) {
	j.closeSource()
	if j.settled {
		return j.kept, nil
	}
	j.settled = true

	if j.sink.Frames() == 0 {
		return false, j.sink.Discard()
	}
	if err := j.sink.Finalize(); err != nil {
		return false, err
	}
	j.kept = true
	return true, nil
}

func (j *nativeJob) closeSource() {
	if j.srcClosed {
		return
	}
	j.srcClosed = true
	if err := j.src.Close(); err != nil {
		j.log.Warn("closing input", "err", err)
	}
}
