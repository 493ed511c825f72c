// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Format describes a PCM stream. It is fixed for the lifetime of a Source.
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports whether the format can be processed.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrFormat, f.SampleRate)
	}
	if f.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrFormat, f.Channels)
	}
	return nil
}

// Downmixed reports whether channels beyond the first two are dropped when
// the stream is converted to stereo.
func (f Format) Downmixed() bool { return f.Channels > 2 }

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch", f.SampleRate, f.Channels)
}

// Block is a run of interleaved 16-bit samples decoded together.
// A Block is never modified after it is returned by a Source; the consumer
// owns it and may drop it once processed.
type Block struct {
	Format  Format
	Samples []int16
}

// Frames returns the number of complete frames in the block.
func (b Block) Frames() int {
	if b.Format.Channels < 1 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

type Source interface {
	// Format of the stream, known once the source is opened.
	Format() Format
	// NextBlock returns the next decoded block. It returns io.EOF once the
	// stream is exhausted. A returned block always holds at least one frame.
	NextBlock() (Block, error)

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input stream.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
// Keys are case-insensitive.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}
