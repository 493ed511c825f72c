// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/mp32cdda/audio"
)

// blockBytes is one decoded block: 1152 stereo frames, the MPEG-1 layer III
// frame size, at 4 bytes per frame.
const blockBytes = 1152 * 4

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec    mp3Reader
	format audio.Format
	buf    []byte
	err    error // sticky error, returned once buffered data is drained
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Close() error         { return nil }

func (s *source) NextBlock() (audio.Block, error) {
	if s.err != nil {
		return audio.Block{}, s.err
	}

	// go-mp3 returns 16-bit little-endian PCM bytes (stereo interleaved).
	// ReadFull keeps blocks frame aligned.
	n, err := io.ReadFull(s.dec, s.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.err = io.EOF
	default:
		s.err = fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	frames := n / 4
	if frames == 0 {
		return audio.Block{}, s.err
	}

	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
	}

	return audio.Block{Format: s.format, Samples: samples}, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %w", audio.ErrFormat, err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	// go-mp3 outputs stereo (2 channels) for every MP3 file, mono streams
	// are duplicated by the library.
	return &source{
		dec:    dec,
		format: audio.Format{SampleRate: dec.SampleRate(), Channels: 2},
		buf:    make([]byte, blockBytes),
	}
}
