// SPDX-License-Identifier: EPL-2.0

// Package mp32cdda converts compressed audio files into CD-DA PCM: 44.1 kHz,
// 16-bit signed, two interleaved channels, inside a RIFF/WAVE container.
//
// # Supported Formats
//
// Input is probed by content first and by file extension second:
//   - MP3 via formats/mp3
//   - WAV (8/16/24/32-bit integer PCM) via formats/wav
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (8/16/24/32-bit) via formats/aiff
//
// # Quick Start
//
// Convert every MP3 in a directory, writing into a CDDA_Converted directory
// next to the inputs:
//
//	cfg := mp32cdda.DefaultConfig()
//	batch := mp32cdda.StartBatch(ctx, &cfg, nil, []string{"/music/album"})
//	for o := range batch.Outcomes() {
//		fmt.Println(o.Result, o.Input, o.Reason())
//	}
//	sum := batch.Wait()
//
// Call batch.Cancel (or cancel ctx) to stop. The file in flight is finalized
// as a valid shorter WAV if any audio was written, and no further files
// start.
//
// # In-memory Conversion
//
// ResampleToCDDA runs a single audio.Source through the channel mixer and the
// resampler and collects the result:
//
//	src, _ := formats.Open("track.ogg", formats.DefaultRegistry())
//	defer src.Close()
//	stereo, err := mp32cdda.ResampleToCDDA(src)
//
// # Processing
//
// Mono input is duplicated to both channels, stereo passes through, and
// channels beyond the second are dropped. Rates other than 44100 Hz go
// through a Kaiser-windowed sinc resampler whose state carries across blocks,
// so block size never changes the output. 44100 Hz input is copied bit
// for bit.
//
// See the individual subpackages for more detailed documentation.
package mp32cdda
