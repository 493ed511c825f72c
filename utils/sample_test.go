// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{
			name:  "zero",
			input: 0.0,
			want:  0,
		},
		{
			name:  "max positive",
			input: 1.0,
			want:  math.MaxInt16,
		},
		{
			name:  "max negative",
			input: -1.0,
			want:  math.MinInt16,
		},
		{
			name:  "half positive",
			input: 0.5,
			want:  16384,
		},
		{
			name:  "half negative",
			input: -0.5,
			want:  -16384,
		},
		{
			name:  "small positive",
			input: 0.001,
			want:  33, // 32.768 rounds up
		},
		{
			name:  "small negative",
			input: -0.001,
			want:  -33,
		},
		{
			name:  "clamp over max",
			input: 1.5,
			want:  math.MaxInt16,
		},
		{
			name:  "clamp under min",
			input: -1.5,
			want:  math.MinInt16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestInt16RoundTrip(t *testing.T) {
	t.Parallel()

	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		s := int16(v)
		if got := Float64ToInt16(Int16ToFloat64(s)); got != s {
			t.Fatalf("round trip of %d = %d", s, got)
		}
	}
}

func TestInt16ToFloat64_Range(t *testing.T) {
	t.Parallel()

	if got := Int16ToFloat64(math.MinInt16); got != -1 {
		t.Errorf("Int16ToFloat64(min) = %v, want -1", got)
	}
	if got := Int16ToFloat64(math.MaxInt16); got >= 1 {
		t.Errorf("Int16ToFloat64(max) = %v, want < 1", got)
	}
}

func TestFloat64ToInt16_Rounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    float64
		want int16
	}{
		{0.4 / 32768, 0},
		{0.6 / 32768, 1},
		{-0.6 / 32768, -1},
		{1.5 / 32768, 2},
		{math.Inf(1), math.MaxInt16},
		{math.Inf(-1), math.MinInt16},
	}

	for _, tt := range tests {
		if got := Float64ToInt16(tt.x); got != tt.want {
			t.Errorf("Float64ToInt16(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestScaleToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        int
		bitDepth int
		want     int16
	}{
		{"16 bit passthrough", -12345, 16, -12345},
		{"8 bit max", 127, 8, 32512},
		{"8 bit min", -128, 8, -32768},
		{"24 bit max", 1<<23 - 1, 24, 32767},
		{"24 bit min", -1 << 23, 24, -32768},
		{"24 bit truncates", 255, 24, 0},
		{"24 bit negative truncates down", -1, 24, -1},
		{"32 bit max", 1<<31 - 1, 32, 32767},
		{"32 bit min", -1 << 31, 32, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ScaleToInt16(tt.v, tt.bitDepth); got != tt.want {
				t.Errorf("ScaleToInt16(%d, %d) = %d, want %d", tt.v, tt.bitDepth, got, tt.want)
			}
		})
	}
}

// TestConversions_ZeroAllocs verifies that sample conversion doesn't allocate
func TestConversions_ZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(1000, func() {
		_ = Float64ToInt16(Int16ToFloat64(1234))
		_ = Float32ToInt16(0.25)
		_ = ScaleToInt16(1<<20, 24)
	})

	if allocs != 0 {
		t.Errorf("conversions allocated %v times, want 0", allocs)
	}
}

func BenchmarkFloat64ToInt16(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		_ = Float64ToInt16(0.123456)
	}
}
