// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// WriteWAV writes integer PCM samples (interleaved, already at bitDepth) to a
// WAV file at path.
func WriteWAV(path string, sampleRate, channels, bitDepth int, samples []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := gowav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close encoder: %w", err)
	}

	return f.Close()
}

// WriteWAV16 writes 16-bit samples to a WAV file at path.
func WriteWAV16(path string, sampleRate, channels int, samples []int16) error {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	return WriteWAV(path, sampleRate, channels, 16, data)
}

// WAVInfo is what ReadWAV found in a file.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	DataBytes  int64
	Samples    []int
}

// ReadWAV decodes a whole WAV file with go-audio/wav.
func ReadWAV(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return WAVInfo{}, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return WAVInfo{}, fmt.Errorf("read pcm: %w", err)
	}

	return WAVInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		DataBytes:  dec.PCMLen(),
		Samples:    buf.Data,
	}, nil
}
