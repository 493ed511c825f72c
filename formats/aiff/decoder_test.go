// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/mp32cdda/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	samples []int
	offset  int
	err     error
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	return n, nil
}

func newMockSource(channels, bitDepth int, samples []int) *source {
	return &source{
		dec:      &mockAiffReader{samples: samples},
		format:   audio.Format{SampleRate: 44100, Channels: channels},
		bitDepth: bitDepth,
		intBuf:   &goaudio.IntBuffer{Data: make([]int, 8*channels)},
	}
}

func drain(t *testing.T, src audio.Source) ([]int16, int) {
	t.Helper()

	var out []int16
	blocks := 0
	for {
		b, err := src.NextBlock()
		if errors.Is(err, io.EOF) {
			return out, blocks
		}
		if err != nil {
			t.Fatalf("NextBlock() error = %v", err)
		}
		if b.Frames() == 0 {
			t.Fatal("NextBlock() returned an empty block")
		}
		blocks++
		out = append(out, b.Samples...)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not AIFF data")))
	if !errors.Is(err, audio.ErrFormat) {
		t.Errorf("Decode() error = %v, want ErrFormat", err)
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte{}))
	if !errors.Is(err, audio.ErrFormat) {
		t.Errorf("Decode() error = %v, want ErrFormat", err)
	}
}

func TestSource_Format(t *testing.T) {
	t.Parallel()

	src := newMockSource(2, 16, nil)
	want := audio.Format{SampleRate: 44100, Channels: 2}
	if src.Format() != want {
		t.Errorf("Format() = %v, want %v", src.Format(), want)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestSource_NextBlock(t *testing.T) {
	t.Parallel()

	in := []int{0, 16384, -16384, 32767, -32768}
	got, _ := drain(t, newMockSource(1, 16, in))

	if len(got) != len(in) {
		t.Fatalf("got %d samples, want %d", len(got), len(in))
	}
	for i := range in {
		if int(got[i]) != in[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], in[i])
		}
	}
}

func TestSource_MultipleBlocks(t *testing.T) {
	t.Parallel()

	// 8 frame buffer, 20 frames of stereo
	in := make([]int, 40)
	for i := range in {
		in[i] = i
	}

	got, blocks := drain(t, newMockSource(2, 16, in))
	if blocks != 3 {
		t.Errorf("got %d blocks, want 3", blocks)
	}
	for i := range in {
		if int(got[i]) != i {
			t.Fatalf("sample[%d] = %d, want %d", i, got[i], i)
		}
	}
}

func TestSource_BitDepths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		in       int
		want     int16
	}{
		{"8 bit max", 8, 127, 32512},
		{"8 bit min", 8, -128, -32768},
		{"16 bit", 16, -1234, -1234},
		{"24 bit max", 24, 8388607, 32767},
		{"24 bit min", 24, -8388608, -32768},
		{"32 bit", 32, 1 << 20, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := drain(t, newMockSource(1, tt.bitDepth, []int{tt.in}))
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("got %v, want [%d]", got, tt.want)
			}
		})
	}
}

func TestSource_DecodeError(t *testing.T) {
	t.Parallel()

	src := newMockSource(1, 16, nil)
	src.dec = &mockAiffReader{err: errors.New("bad chunk")}

	_, err := src.NextBlock()
	if !errors.Is(err, audio.ErrDecode) {
		t.Errorf("NextBlock() error = %v, want ErrDecode", err)
	}

	// sticky
	if _, err2 := src.NextBlock(); !errors.Is(err2, audio.ErrDecode) {
		t.Errorf("second NextBlock() error = %v, want ErrDecode", err2)
	}
}

func TestSource_TruncatedIsEOF(t *testing.T) {
	t.Parallel()

	src := newMockSource(2, 16, []int{1, 2, 3})
	got, _ := drain(t, src)
	if len(got) != 2 {
		t.Errorf("got %d samples, want 2 (whole frames only)", len(got))
	}

	src.dec = &mockAiffReader{err: io.ErrUnexpectedEOF}
	src.err = nil
	if _, err := src.NextBlock(); !errors.Is(err, io.EOF) {
		t.Errorf("NextBlock() error = %v, want io.EOF", err)
	}
}

func TestErrors_WrapFormat(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout} {
		if !errors.Is(err, audio.ErrFormat) {
			t.Errorf("%v does not wrap audio.ErrFormat", err)
		}
	}
}

func BenchmarkSource_NextBlock(b *testing.B) {
	in := make([]int, 4096*2)

	b.ReportAllocs()
	for range b.N {
		src := &source{
			dec:      &mockAiffReader{samples: in},
			format:   audio.Format{SampleRate: 44100, Channels: 2},
			bitDepth: 16,
			intBuf:   &goaudio.IntBuffer{Data: make([]int, 4096*2)},
		}
		if _, err := src.NextBlock(); err != nil {
			b.Fatal(err)
		}
	}
}
