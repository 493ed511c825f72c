// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files.
// Vorbis is a free, open-source lossy audio compression format.
//
// # Decoding Vorbis Files
//
//	f, _ := os.Open("audio.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    // errors.Is(err, audio.ErrFormat)
//	}
//	b, err := src.NextBlock()
//
// # Output Format
//
//   - int16 samples, interleaved, rounded and clamped from the decoder's float32
//   - Channels and sample rate as stored in the identification header
//   - Blocks of up to 4096 frames, always whole frames
package vorbis
