// SPDX-License-Identifier: EPL-2.0

package mp32cdda

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/internal/audiotest"
)

func TestResampleToCDDA_Identity(t *testing.T) {
	t.Parallel()

	src := audiotest.NewCountingSource(44100, 2, 5000, 333)
	got, err := ResampleToCDDA(src)
	if err != nil {
		t.Fatalf("ResampleToCDDA() error = %v", err)
	}
	if !slices.Equal(got, src.Samples()) {
		t.Error("44100 Hz stereo input was not copied unchanged")
	}
}

func TestResampleToCDDA_Mono(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(22050, 1, 22050, 1000)
	got, err := ResampleToCDDA(src)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2*44100 {
		t.Fatalf("got %d samples, want %d", len(got), 2*44100)
	}
	for i := 0; i < len(got); i += 2 {
		if got[i] != got[i+1] {
			t.Fatalf("frame %d: left %d != right %d", i/2, got[i], got[i+1])
		}
	}
	// away from the edges the level is unchanged
	if mid := got[44100]; mid < 990 || mid > 1010 {
		t.Errorf("mid sample = %d, want about 1000", mid)
	}
}

func TestResampleToCDDA_VariousRates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate       int
		channels   int
		frames     int
		wantFrames int
	}{
		{"8kHz mono", 8000, 1, 8000, 44100},
		{"11025Hz stereo", 11025, 2, 11025, 44100},
		{"48kHz stereo", 48000, 2, 4800, 4410},
		{"96kHz 6ch", 96000, 6, 9600, 4410},
		{"empty", 32000, 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSilentSource(tt.rate, tt.channels, tt.frames)
			got, err := ResampleToCDDA(src)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2*tt.wantFrames {
				t.Errorf("got %d frames, want %d", len(got)/2, tt.wantFrames)
			}
		})
	}
}

func TestResampleToCDDA_Errors(t *testing.T) {
	t.Parallel()

	// corrupt tail keeps what was decoded
	src := audiotest.NewCountingSource(44100, 2, 1000, 100).FailAfter(3, fmt.Errorf("%w: crc", audio.ErrDecode))
	got, err := ResampleToCDDA(src)
	if err != nil || len(got) != 600 {
		t.Errorf("corrupt tail: %d samples, %v", len(got), err)
	}

	// nothing decoded
	src = audiotest.NewCountingSource(44100, 2, 1000, 100).FailAfter(0, fmt.Errorf("%w: crc", audio.ErrDecode))
	if _, err := ResampleToCDDA(src); !errors.Is(err, audio.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}

	// bad format
	src = audiotest.NewSilentSource(0, 2, 10)
	if _, err := ResampleToCDDA(src); !errors.Is(err, audio.ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

func TestStartBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "take.wav")
	if err := audiotest.WriteWAV16(in, 32000, 1, make([]int16, 3200)); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Extensions = []string{"wav"}
	sum := StartBatch(context.Background(), &cfg, nil, []string{dir}).Wait()

	if len(sum.Outcomes) != 1 || sum.Outcomes[0].Result != Success {
		t.Fatalf("Outcomes = %+v", sum.Outcomes)
	}
	if _, err := os.Stat(filepath.Join(dir, "CDDA_Converted", "take.wav")); err != nil {
		t.Error(err)
	}
	if sum.Outcomes[0].Frames != 4410 {
		t.Errorf("Frames = %d, want 4410", sum.Outcomes[0].Frames)
	}
}

func BenchmarkResampleToCDDA(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		src := audiotest.NewSineSource(48000, 2, 48000, 440, 0.5)
		if _, err := ResampleToCDDA(src); err != nil {
			b.Fatal(err)
		}
	}
}
