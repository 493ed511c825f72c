package wav

import (
	"fmt"

	"github.com/ik5/mp32cdda/audio"
)

var (
	// ErrNotWavFile indicates the input is not a RIFF/WAVE file
	ErrNotWavFile = fmt.Errorf("%w: not a WAV file", audio.ErrFormat)

	// ErrUnsupportedWavLayout indicates a non PCM encoding
	ErrUnsupportedWavLayout = fmt.Errorf("%w: unsupported WAV layout", audio.ErrFormat)

	// ErrUnsupportedBitDepth indicates a sample size other than 8, 16, 24 or 32 bit
	ErrUnsupportedBitDepth = fmt.Errorf("%w: only 8, 16, 24 and 32 bit integer PCM supported", audio.ErrFormat)

	// ErrSinkClosed indicates a write after Finalize or Discard
	ErrSinkClosed = fmt.Errorf("%w: sink already closed", audio.ErrIO)
)
