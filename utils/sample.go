// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Int16ToFloat64 scales a 16-bit sample into [-1, 1).
func Int16ToFloat64(s int16) float64 {
	return float64(s) / 32768.0
}

// Float64ToInt16 rounds x back to the 16-bit range, clamping anything
// outside [-1, 1). Int16ToFloat64 followed by Float64ToInt16 is lossless.
func Float64ToInt16(x float64) int16 {
	v := math.Round(x * 32768.0)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}

	return int16(v)
}

// Float32ToInt16 is Float64ToInt16 for decoders that emit float32.
func Float32ToInt16(x float32) int16 {
	return Float64ToInt16(float64(x))
}

// ScaleToInt16 converts an integer sample of the given bit depth to 16 bits.
// Depths above 16 are truncated, depths below are shifted up.
func ScaleToInt16(v int, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(v)
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	default:
		return int16(v << (16 - bitDepth))
	}
}
