// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/mp32cdda/audio"
)

// Sink writes CD-DA WAV output (44.1 kHz, 16-bit, stereo) incrementally.
//
// Samples go to a hidden temporary file next to the destination. Finalize
// patches the RIFF and data sizes and renames the file into place, Discard
// removes it, so the destination path only ever holds a complete file.
// Exactly one of Finalize or Discard takes effect; later calls are no-ops.
type Sink struct {
	path    string
	tmpPath string
	f       *os.File
	enc     *gowav.Encoder
	buf     *goaudio.IntBuffer
	frames  int64
	done    bool

	// werr is the first failed Write. The encoder's own frame count is
	// unreliable after it, so Finalize rebuilds the header from frames.
	werr error
}

// headerBytes is the size of the canonical header go-audio/wav writes
// before the first sample.
const headerBytes = 44

// Create opens a sink for path. The directory must already exist.
func Create(path string) (*Sink, error) {
	return create(path, nil)
}

// create is Create with an optional wrapper around the temporary file, so
// tests can inject short writes.
func create(path string, wrap func(*os.File) io.WriteSeeker) (*Sink, error) {
	if fi, err := os.Stat(path); err == nil && !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", audio.ErrIO, path)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.partial")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	var w io.WriteSeeker = f
	if wrap != nil {
		w = wrap(f)
	}

	s := &Sink{
		path:    path,
		tmpPath: f.Name(),
		f:       f,
		enc:     gowav.NewEncoder(w, audio.CDDASampleRate, audio.CDDABitsPerSample, audio.CDDAChannels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: audio.CDDAChannels, SampleRate: audio.CDDASampleRate},
			SourceBitDepth: audio.CDDABitsPerSample,
		},
	}

	// Emit the header right away so even a zero-frame file is well formed.
	if err := s.enc.Write(s.buf); err != nil {
		s.Discard()
		return nil, fmt.Errorf("%w: write header: %w", audio.ErrIO, err)
	}

	return s, nil
}

// Path returns the destination path.
func (s *Sink) Path() string { return s.path }

// Frames returns the number of stereo frames written so far.
func (s *Sink) Frames() int64 { return s.frames }

// Write appends interleaved left/right samples.
func (s *Sink) Write(stereo []int16) error {
	if s.done {
		return ErrSinkClosed
	}
	if s.werr != nil {
		return s.werr
	}
	if len(stereo)%audio.CDDAChannels != 0 {
		return fmt.Errorf("%w: %d samples is not whole frames", audio.ErrInvalidBlock, len(stereo))
	}
	if len(stereo) == 0 {
		return nil
	}

	if cap(s.buf.Data) < len(stereo) {
		s.buf.Data = make([]int, len(stereo))
	}
	s.buf.Data = s.buf.Data[:len(stereo)]
	for i, v := range stereo {
		s.buf.Data[i] = int(v)
	}

	if err := s.enc.Write(s.buf); err != nil {
		s.werr = fmt.Errorf("%w: %w", audio.ErrIO, err)
		return s.werr
	}
	s.frames += int64(len(stereo) / audio.CDDAChannels)

	return nil
}

// Finalize completes the header and moves the file to its destination,
// replacing any existing file there. After a failed Write the file is cut
// back to the frames that were written in full.
func (s *Sink) Finalize() error {
	if s.done {
		return nil
	}
	s.done = true

	if s.werr != nil {
		return s.salvage()
	}

	if err := s.enc.Close(); err != nil {
		s.f.Close()
		os.Remove(s.tmpPath)
		return fmt.Errorf("%w: finalize: %w", audio.ErrIO, err)
	}
	if err := s.f.Chmod(0o644); err != nil {
		s.f.Close()
		os.Remove(s.tmpPath)
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := s.f.Close(); err != nil {
		os.Remove(s.tmpPath)
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		os.Remove(s.tmpPath)
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	return nil
}

// Discard drops everything written and leaves the destination untouched.
func (s *Sink) Discard() error {
	if s.done {
		return nil
	}
	s.done = true

	closeErr := s.f.Close()
	removeErr := os.Remove(s.tmpPath)
	if err := errors.Join(closeErr, removeErr); err != nil {
		return fmt.Errorf("%w: discard: %w", audio.ErrIO, err)
	}

	return nil
}

// salvage truncates the temporary file to the last whole frame reported
// written, patches both size fields and verifies the result before the
// rename.
func (s *Sink) salvage() error {
	s.f.Close()

	fail := func(err error) error {
		os.Remove(s.tmpPath)
		return fmt.Errorf("%w: finalize after write error: %w", audio.ErrIO, err)
	}

	dataBytes := s.frames * audio.CDDAChannels * audio.CDDABitsPerSample / 8
	if err := os.Truncate(s.tmpPath, headerBytes+dataBytes); err != nil {
		return fail(err)
	}

	f, err := os.OpenFile(s.tmpPath, os.O_RDWR, 0)
	if err != nil {
		return fail(err)
	}
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(headerBytes-8+dataBytes))
	_, err = f.WriteAt(size[:], 4)
	if err == nil {
		binary.LittleEndian.PutUint32(size[:], uint32(dataBytes))
		_, err = f.WriteAt(size[:], headerBytes-4)
	}
	if err == nil {
		err = f.Chmod(0o644)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(err)
	}

	info, err := Inspect(s.tmpPath)
	if err != nil {
		return fail(err)
	}
	if !info.Complete || !info.IsCDDA() || info.Frames() != s.frames {
		return fail(fmt.Errorf("header does not match %d frames", s.frames))
	}

	if err := os.Rename(s.tmpPath, s.path); err != nil {
		return fail(err)
	}
	return nil
}
