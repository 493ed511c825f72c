// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files and
// github.com/bogem/id3v2 to read their tags.
//
// # Decoding MP3 Files
//
//	f, _ := os.Open("track.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    // errors.Is(err, audio.ErrFormat)
//	}
//	defer src.Close()
//
//	for {
//	    b, err := src.NextBlock()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // errors.Is(err, audio.ErrDecode)
//	    }
//	    // b.Samples holds interleaved int16 stereo
//	}
//
// # Output Format
//
//   - int16 samples, interleaved
//   - Channels: always 2 (go-mp3 duplicates mono streams)
//   - Sample rate: that of the first frame (32, 44.1 or 48 kHz for MPEG-1,
//     lower for MPEG-2/2.5)
//   - Blocks of 1152 frames, the length of one MPEG-1 frame
//
// A stream that ends mid frame is reported as io.EOF after the last
// complete data. Other decoder failures wrap audio.ErrDecode.
//
// # Tags
//
// ReadTitle returns "Artist - Title" from the ID3v2 tag, for log lines.
// Tags never influence decoding.
package mp3
