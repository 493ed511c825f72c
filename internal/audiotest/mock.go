// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"

	"github.com/ik5/mp32cdda/audio"
)

// MockSource is a test helper that generates audio blocks.
// It implements audio.Source.
type MockSource struct {
	format      audio.Format
	totalFrames int // Total frames to generate
	generated   int // Frames generated so far
	blockFrames int
	waveform    func(frame int, channel int) int16

	failAfter int // Blocks to emit before failing, < 0 never fails
	failErr   error
	emitted   int

	closed int
}

// NewMockSource creates a new mock audio source.
// waveform is a function that generates sample values given frame index and channel.
func NewMockSource(format audio.Format, totalFrames, blockFrames int, waveform func(frame int, channel int) int16) *MockSource {
	return &MockSource{
		format:      format,
		totalFrames: totalFrames,
		blockFrames: blockFrames,
		waveform:    waveform,
		failAfter:   -1,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave at the given
// amplitude (full scale is 1).
func NewSineSource(sampleRate, channels, totalFrames int, frequency, amplitude float64) *MockSource {
	return NewMockSource(audio.Format{SampleRate: sampleRate, Channels: channels}, totalFrames, 1024,
		func(frame int, channel int) int16 {
			t := float64(frame) / float64(sampleRate)
			return int16(math.Round(amplitude * 32767 * math.Sin(2*math.Pi*frequency*t)))
		})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value int16) *MockSource {
	return NewMockSource(audio.Format{SampleRate: sampleRate, Channels: channels}, totalFrames, 1024,
		func(frame int, channel int) int16 {
			return value
		})
}

// NewCountingSource creates a source whose samples encode the frame index
// and channel, handy for checking ordering.
func NewCountingSource(sampleRate, channels, totalFrames, blockFrames int) *MockSource {
	return NewMockSource(audio.Format{SampleRate: sampleRate, Channels: channels}, totalFrames, blockFrames,
		func(frame int, channel int) int16 {
			return int16((frame*channels + channel) % math.MaxInt16)
		})
}

// FailAfter makes NextBlock return err once n blocks have been produced.
func (m *MockSource) FailAfter(n int, err error) *MockSource {
	m.failAfter = n
	m.failErr = err
	return m
}

// Closed reports how many times Close was called.
func (m *MockSource) Closed() int { return m.closed }

// Generated is the number of frames produced so far.
func (m *MockSource) Generated() int { return m.generated }

func (m *MockSource) Format() audio.Format { return m.format }

func (m *MockSource) Close() error {
	m.closed++
	return nil
}

// Reset resets the generated frame counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
	m.emitted = 0
}

func (m *MockSource) NextBlock() (audio.Block, error) {
	if m.failAfter >= 0 && m.emitted >= m.failAfter {
		return audio.Block{}, m.failErr
	}
	if m.generated >= m.totalFrames {
		return audio.Block{}, io.EOF
	}

	framesToWrite := min(m.blockFrames, m.totalFrames-m.generated)
	channels := m.format.Channels
	samples := make([]int16, framesToWrite*channels)

	for frame := range framesToWrite {
		idx := m.generated + frame
		for ch := range channels {
			samples[frame*channels+ch] = m.waveform(idx, ch)
		}
	}

	m.generated += framesToWrite
	m.emitted++

	return audio.Block{Format: m.format, Samples: samples}, nil
}

// Samples returns all samples the source would produce, interleaved.
func (m *MockSource) Samples() []int16 {
	out := make([]int16, 0, m.totalFrames*m.format.Channels)
	for frame := range m.totalFrames {
		for ch := range m.format.Channels {
			out = append(out, m.waveform(frame, ch))
		}
	}
	return out
}
