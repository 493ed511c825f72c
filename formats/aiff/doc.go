// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
//   - AIFF and uncompressed AIFF-C
//   - 8, 16, 24 and 32 bit signed PCM
//   - Any channel count and sample rate
//
// # Decoding AIFF Files
//
//	f, _ := os.Open("audio.aif")
//	src, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//	    // errors.Is(err, audio.ErrFormat)
//	}
//	b, err := src.NextBlock()
//
// Samples are scaled to int16: deeper samples are truncated, 8 bit samples
// are shifted up.
package aiff
