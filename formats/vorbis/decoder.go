package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/utils"
	"github.com/jfreymuth/oggvorbis"
)

const blockFrames = 4096

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec    oggReader
	format audio.Format
	buf    []float32 // interleaved, whole frames
	err    error
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Close() error         { return nil }

func (s *source) NextBlock() (audio.Block, error) {
	if s.err != nil {
		return audio.Block{}, s.err
	}

	// oggvorbis.Reader.Read counts individual values, not frames
	n, err := s.dec.Read(s.buf)
	for err == nil && n%s.format.Channels != 0 {
		var m int
		m, err = s.dec.Read(s.buf[n:])
		if m == 0 && err == nil {
			break
		}
		n += m
	}

	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.err = io.EOF
	default:
		s.err = fmt.Errorf("%w: vorbis: %w", audio.ErrDecode, err)
	}

	n -= n % s.format.Channels
	if n <= 0 {
		if s.err == nil {
			s.err = io.EOF
		}
		return audio.Block{}, s.err
	}

	samples := make([]int16, n)
	for i, v := range s.buf[:n] {
		samples[i] = utils.Float32ToInt16(v)
	}

	return audio.Block{Format: s.format, Samples: samples}, nil
}

// Decoder reads Ogg Vorbis files. BlockFrames sets the block size, zero
// means 4096 frames.
type Decoder struct {
	BlockFrames int
}

func (d Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: vorbis: %w", audio.ErrFormat, err)
	}

	return newSource(dec, d.BlockFrames)
}

func newSource(dec oggReader, frames int) (*source, error) {
	if frames <= 0 {
		frames = blockFrames
	}
	format := audio.Format{SampleRate: dec.SampleRate(), Channels: dec.Channels()}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &source{
		dec:    dec,
		format: format,
		buf:    make([]float32, frames*format.Channels),
	}, nil
}
