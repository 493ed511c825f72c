// SPDX-License-Identifier: EPL-2.0

// Package wav reads PCM WAV input and writes CD-DA WAV output.
//
// Both directions use github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts integer PCM (format tag 1 or WAVE_FORMAT_EXTENSIBLE) at
// 8, 16, 24 or 32 bits per sample, any rate and any channel count. Samples
// are scaled to int16 and delivered in blocks of up to 4096 frames:
//
//	f, _ := os.Open("in.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // errors.Is(err, audio.ErrFormat)
//	}
//	for {
//	    b, err := src.NextBlock()
//	    if err == io.EOF {
//	        break
//	    }
//	    // ...
//	}
//
// # Writing CD-DA
//
// Sink always writes 44.1 kHz, 16-bit, stereo little-endian PCM with a
// canonical 44 byte header:
//
//	s, err := wav.Create("out.wav")
//	if err != nil {
//	    // errors.Is(err, audio.ErrIO)
//	}
//	s.Write(stereo)  // interleaved L, R
//	s.Finalize()     // or s.Discard()
//
// Data is written to a hidden ".out.wav.*.partial" file in the same
// directory. Finalize fixes up the RIFF and data chunk sizes and renames it
// over the destination; Discard removes it. A reader of the destination path
// never sees a half written file.
//
// # Errors
//
//   - ErrNotWavFile, ErrUnsupportedWavLayout, ErrUnsupportedBitDepth wrap audio.ErrFormat
//   - ErrSinkClosed and every sink I/O failure wrap audio.ErrIO
package wav
