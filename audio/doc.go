// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample level building blocks of the converter.
//
// This package contains:
//   - Source, a pull based stream of decoded int16 blocks
//   - MixToStereo for channel mapping
//   - Resampler, a streaming windowed sinc sample rate converter
//   - Converter, which chains the two for one stream
//   - Registry for decoder registration
//
// # Source Interface
//
//	type Source interface {
//	    Format() Format
//	    NextBlock() (Block, error)
//	    Close() error
//	}
//
// NextBlock returns io.EOF after the last block. A block is never empty and
// always holds whole frames of the source format.
//
// # Channel Mixing
//
// MixToStereo copies mono to both channels at full scale. Stereo passes
// through unchanged. Streams with more channels keep the first two and drop
// the rest; Format.Downmixed reports when that happens.
//
// # Resampling
//
// The Resampler converts between any two positive rates with a Kaiser
// windowed sinc (32 zero crossings, beta 9). Feeding a stream in blocks of
// any size produces exactly the same samples as feeding it whole, and after
// Flush the output length is ceil(inputFrames * dst / src). Equal rates are
// passed through without touching the samples.
//
//	r, _ := audio.NewResampler(22050, audio.CDDASampleRate)
//	out, err := r.Process(stereo)
//	...
//	tail, err := r.Flush()
//
// # Errors
//
//   - ErrFormat: unsupported or invalid input format
//   - ErrDecode: corrupt stream data
//   - ErrResampler, ErrInvalidBlock: bad ratio, block, or call order
//   - ErrIO: output failures
//
// All errors are wrapped with %w, test them with errors.Is.
package audio
