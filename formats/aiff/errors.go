package aiff

import (
	"fmt"

	"github.com/ik5/mp32cdda/audio"
)

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = fmt.Errorf("%w: not an AIFF file", audio.ErrFormat)

	// ErrUnsupportedBitDepth indicates a sample size other than 8, 16, 24 or 32 bit
	ErrUnsupportedBitDepth = fmt.Errorf("%w: only 8, 16, 24 and 32 bit AIFF supported", audio.ErrFormat)

	// ErrUnsupportedAiffLayout indicates an unsupported AIFF layout
	ErrUnsupportedAiffLayout = fmt.Errorf("%w: unsupported AIFF layout", audio.ErrFormat)
)
