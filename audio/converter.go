// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Converter turns blocks of one stream into CD-DA stereo samples: channel
// mixing followed by resampling to 44.1 kHz. It holds the resampler state of
// exactly one stream and is dropped with it.
type Converter struct {
	format Format
	res    *Resampler
}

func NewConverter(f Format) (*Converter, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	res, err := NewResampler(f.SampleRate, CDDASampleRate)
	if err != nil {
		return nil, err
	}

	return &Converter{format: f, res: res}, nil
}

// Format returns the input format the converter was built for.
func (c *Converter) Format() Format { return c.format }

// Resampler exposes the underlying resampler, mostly for inspection.
func (c *Converter) Resampler() *Resampler { return c.res }

// Convert mixes b to stereo and resamples it.
func (c *Converter) Convert(b Block) ([]int16, error) {
	if b.Format != c.format {
		return nil, fmt.Errorf("%w: block format %s, stream format %s", ErrInvalidBlock, b.Format, c.format)
	}

	stereo, err := MixToStereo(b)
	if err != nil {
		return nil, err
	}

	return c.res.Process(stereo)
}

// Flush returns the samples still held by the resampler.
func (c *Converter) Flush() ([]int16, error) {
	return c.res.Flush()
}
