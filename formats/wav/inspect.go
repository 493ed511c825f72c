// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ik5/mp32cdda/audio"
)

// Info describes the PCM layout of a WAV file on disk.
type Info struct {
	Format     audio.Format
	BitDepth   int
	AudioFmt   int
	DataOffset int64
	DataBytes  int64 // as declared by the data chunk header
	FileBytes  int64

	// Complete is true when the RIFF and data chunk sizes account for
	// exactly the bytes present in the file.
	Complete bool
}

// Frames returns the number of whole frames declared by the data chunk.
func (i Info) Frames() int64 {
	frameBytes := int64(i.Format.Channels * i.BitDepth / 8)
	if frameBytes <= 0 {
		return 0
	}
	return i.DataBytes / frameBytes
}

// IsCDDA reports whether the file is 44.1 kHz, 16-bit, stereo PCM.
func (i Info) IsCDDA() bool {
	return i.AudioFmt == formatPCM && i.Format == audio.CDDA && i.BitDepth == audio.CDDABitsPerSample
}

// Inspect walks the RIFF chunks of path up to the data chunk and checks the
// declared sizes against the file size. It does not read sample data.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	info := Info{FileBytes: fi.Size()}

	var hdr [12]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return info, ErrNotWavFile
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return info, ErrNotWavFile
	}
	riffSize := int64(binary.LittleEndian.Uint32(hdr[4:8]))

	pos := int64(12)
	haveFmt := false
	for {
		var ch [8]byte
		if _, err := io.ReadFull(f, ch[:]); err != nil {
			return info, fmt.Errorf("%w: no data chunk", ErrUnsupportedWavLayout)
		}
		id := string(ch[0:4])
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))
		pos += 8

		switch id {
		case "fmt ":
			if size < 16 {
				return info, fmt.Errorf("%w: fmt chunk of %d bytes", ErrUnsupportedWavLayout, size)
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return info, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedWavLayout)
			}
			info.AudioFmt = int(binary.LittleEndian.Uint16(fmtChunk[0:2]))
			info.Format.Channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			info.Format.SampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			info.BitDepth = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return info, fmt.Errorf("%w: data before fmt", ErrUnsupportedWavLayout)
			}
			info.DataOffset = pos
			info.DataBytes = size
			end := pos + size + size%2
			info.Complete = riffSize == info.FileBytes-8 &&
				(end == info.FileBytes || pos+size == info.FileBytes)
			return info, nil
		}

		// chunks are word aligned
		skip := size + size%2
		if _, err := f.Seek(pos+skip, io.SeekStart); err != nil {
			return info, fmt.Errorf("%w: %w", audio.ErrIO, err)
		}
		pos += skip
	}
}
