package aiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/utils"
)

const blockFrames = 4096

func frameCount(n int) int {
	if n <= 0 {
		return blockFrames
	}
	return n
}

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec      aiffReader
	format   audio.Format
	bitDepth int
	intBuf   *goaudio.IntBuffer
	err      error
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Close() error         { return nil }

func (s *source) NextBlock() (audio.Block, error) {
	if s.err != nil {
		return audio.Block{}, s.err
	}

	s.intBuf.Data = s.intBuf.Data[:cap(s.intBuf.Data)]
	n, err := s.dec.PCMBuffer(s.intBuf)
	switch {
	case err == nil:
		if n < len(s.intBuf.Data) {
			// short read, nothing more to come
			s.err = io.EOF
		}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.err = io.EOF
	default:
		s.err = fmt.Errorf("%w: aiff: %w", audio.ErrDecode, err)
	}

	n -= n % s.format.Channels
	if n <= 0 {
		return audio.Block{}, s.err
	}

	// AIFF samples are signed at every depth
	samples := make([]int16, n)
	for i, v := range s.intBuf.Data[:n] {
		samples[i] = utils.ScaleToInt16(v, s.bitDepth)
	}

	return audio.Block{Format: s.format, Samples: samples}, nil
}

// Decoder reads AIFF files. BlockFrames sets the block size, zero means
// 4096 frames.
type Decoder struct {
	BlockFrames int
}

func (d Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bit", ErrUnsupportedBitDepth, bitDepth)
	}

	gf := dec.Format()
	if gf == nil {
		return nil, ErrUnsupportedAiffLayout
	}
	format := audio.Format{SampleRate: gf.SampleRate, Channels: gf.NumChannels}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &source{
		dec:      dec,
		format:   format,
		bitDepth: bitDepth,
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, frameCount(d.BlockFrames)*format.Channels),
			Format:         gf,
			SourceBitDepth: bitDepth,
		},
	}, nil
}
