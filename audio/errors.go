// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks an input whose container or codec is not supported.
	ErrFormat = errors.New("unsupported audio format")
	// ErrDecode marks a corrupt packet in an otherwise readable stream.
	ErrDecode = errors.New("decode error")
	// ErrResampler marks an invalid resampler configuration or input.
	ErrResampler = errors.New("resampler error")
	// ErrIO marks failures creating or writing output.
	ErrIO = errors.New("output i/o error")

	ErrInvalidBlock = fmt.Errorf("%w: invalid block", ErrResampler)
)
