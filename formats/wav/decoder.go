// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
	blockFrames      = 4096
)

// wavReader is an interface for gowav.Decoder to allow testing
type wavReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

func frameCount(n int) int {
	if n <= 0 {
		return blockFrames
	}
	return n
}

type wavSource struct {
	dec      wavReader
	format   audio.Format
	bitDepth int
	intBuf   *goaudio.IntBuffer
	err      error
}

func (s *wavSource) Format() audio.Format { return s.format }
func (s *wavSource) Close() error         { return nil }

func (s *wavSource) NextBlock() (audio.Block, error) {
	if s.err != nil {
		return audio.Block{}, s.err
	}

	s.intBuf.Data = s.intBuf.Data[:cap(s.intBuf.Data)]
	n, err := s.dec.PCMBuffer(s.intBuf)
	switch {
	case err == nil:
		if n == 0 {
			s.err = io.EOF
		}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.err = io.EOF
	default:
		s.err = fmt.Errorf("%w: wav: %w", audio.ErrDecode, err)
	}

	// A truncated file can end mid frame.
	n -= n % s.format.Channels
	if n <= 0 {
		if s.err == nil {
			s.err = io.EOF
		}
		return audio.Block{}, s.err
	}

	samples := make([]int16, n)
	for i, v := range s.intBuf.Data[:n] {
		if s.bitDepth == 8 {
			v -= 128 // 8-bit WAV is unsigned
		}
		samples[i] = utils.ScaleToInt16(v, s.bitDepth)
	}

	return audio.Block{Format: s.format, Samples: samples}, nil
}

// Decoder reads integer PCM WAV files. BlockFrames sets the block size,
// zero means 4096 frames.
type Decoder struct {
	BlockFrames int
}

func (d Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if f := dec.WavAudioFormat; f != formatPCM && f != formatExtensible {
		return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedWavLayout, f)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bit", ErrUnsupportedBitDepth, bitDepth)
	}

	format := audio.Format{SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &wavSource{
		dec:      dec,
		format:   format,
		bitDepth: bitDepth,
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, frameCount(d.BlockFrames)*format.Channels),
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}
