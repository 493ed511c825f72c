// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Sinc is the normalized sinc function sin(pi*x) / (pi*x).
func Sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// BesselI0 is the zeroth order modified Bessel function of the first kind,
// evaluated by its power series.
func BesselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	q := x * x / 4
	for k := 1; k < 64; k++ {
		term *= q / float64(k*k)
		sum += term
		if term < sum*1e-17 {
			break
		}
	}
	return sum
}

// Kaiser returns the Kaiser window value at position t in [-1, 1].
// Outside that range the window is zero.
func Kaiser(t, beta float64) float64 {
	if t < -1 || t > 1 {
		return 0
	}
	return BesselI0(beta*math.Sqrt(1-t*t)) / BesselI0(beta)
}

// SincTable samples a Kaiser windowed low-pass kernel with the given cutoff
// (fraction of the input Nyquist frequency). The kernel spans zeroCrossings
// zero crossings of the cutoff-scaled sinc on each side of the center and is
// sampled oversample times per input sample, so table[i] is the kernel value
// at distance i/oversample input samples. The final entry is always zero.
func SincTable(cutoff float64, zeroCrossings, oversample int, beta float64) []float64 {
	radius := float64(zeroCrossings) / cutoff
	n := int(math.Ceil(radius*float64(oversample))) + 1
	table := make([]float64, n+1)
	for i := range n {
		x := float64(i) / float64(oversample)
		table[i] = cutoff * Sinc(cutoff*x) * Kaiser(x/radius, beta)
	}
	return table
}
