// SPDX-License-Identifier: EPL-2.0

// Package formats wires the individual decoders together: it registers them
// under their format keys and opens files by content, falling back to the
// file extension.
package formats

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/formats/aiff"
	"github.com/ik5/mp32cdda/formats/mp3"
	"github.com/ik5/mp32cdda/formats/vorbis"
	"github.com/ik5/mp32cdda/formats/wav"
)

// Format keys used by DefaultRegistry.
const (
	KeyMP3  = "mp3"
	KeyWAV  = "wav"
	KeyOGG  = "ogg"
	KeyAIFF = "aiff"
)

// sniffLen is enough for every magic number below.
const sniffLen = 12

// DefaultRegistry returns a registry holding every decoder this module ships,
// using each decoder's own block size.
func DefaultRegistry() *audio.Registry { return NewRegistry(0) }

// NewRegistry is like DefaultRegistry but sets the block size, in frames, of
// the PCM decoders. MP3 always decodes one frame of 1152 samples at a time.
// Extensions that share a decoder are registered as aliases.
func NewRegistry(blockFrames int) *audio.Registry {
	w := wav.Decoder{BlockFrames: blockFrames}
	v := vorbis.Decoder{BlockFrames: blockFrames}
	a := aiff.Decoder{BlockFrames: blockFrames}

	reg := audio.NewRegistry()
	reg.Register(KeyMP3, mp3.Decoder{})
	reg.Register(KeyWAV, w)
	reg.Register("wave", w)
	reg.Register(KeyOGG, v)
	reg.Register("oga", v)
	reg.Register(KeyAIFF, a)
	reg.Register("aif", a)
	reg.Register("aifc", a)

	return reg
}

// Sniff returns the format key for the header bytes, or "" when none match.
func Sniff(head []byte) string {
	switch {
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return KeyWAV
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("FORM")) &&
		(bytes.Equal(head[8:12], []byte("AIFF")) || bytes.Equal(head[8:12], []byte("AIFC"))):
		return KeyAIFF
	case len(head) >= 4 && bytes.Equal(head[0:4], []byte("OggS")):
		return KeyOGG
	case len(head) >= 3 && bytes.Equal(head[0:3], []byte("ID3")):
		return KeyMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return KeyMP3
	}

	return ""
}

// Open opens path and returns a source from the matching decoder in reg.
// Closing the returned source closes the file.
func Open(path string, reg *audio.Registry) (audio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.Close()
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	dec, key := pick(reg, Sniff(head[:n]), strings.TrimPrefix(filepath.Ext(path), "."))
	if dec == nil {
		f.Close()
		return nil, fmt.Errorf("%w: no decoder for %s", audio.ErrFormat, filepath.Base(path))
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

func pick(reg *audio.Registry, keys ...string) (audio.Decoder, string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if d, ok := reg.Get(k); ok {
			return d, k
		}
	}

	return nil, ""
}

// fileSource closes the underlying file along with the decoder.
type fileSource struct {
	audio.Source

	f    *os.File
	once sync.Once
	err  error
}

func (s *fileSource) Close() error {
	s.once.Do(func() {
		srcErr := s.Source.Close()
		fErr := s.f.Close()
		if srcErr != nil {
			s.err = srcErr
			return
		}
		if fErr != nil {
			s.err = fmt.Errorf("%w: %w", audio.ErrIO, fErr)
		}
	})

	return s.err
}
