// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MixToStereo returns the block as interleaved left/right samples.
//
// Mono is copied to both channels at full scale, stereo passes through, and
// for more than two channels only the first two are kept.
// The returned slice never aliases b.Samples.
func MixToStereo(b Block) ([]int16, error) {
	channels := b.Format.Channels
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidBlock, channels)
	}
	if len(b.Samples)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples for %d channels", ErrInvalidBlock, len(b.Samples), channels)
	}

	frames := len(b.Samples) / channels
	dst := make([]int16, frames*2)

	switch channels {
	case 1:
		for f, s := range b.Samples {
			dst[f<<1] = s
			dst[f<<1+1] = s
		}
	case 2:
		copy(dst, b.Samples)
	default:
		for f := range frames {
			idx := f * channels
			dst[f<<1] = b.Samples[idx]
			dst[f<<1+1] = b.Samples[idx+1]
		}
	}

	return dst, nil
}
