// SPDX-License-Identifier: EPL-2.0

package mp32cdda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/mp32cdda/audio"
	"github.com/ik5/mp32cdda/internal/config"
	"github.com/ik5/mp32cdda/internal/pipeline"
)

type (
	// Config holds the batch settings, see DefaultConfig.
	Config = config.Config
	// Batch is a conversion running in the background.
	Batch = pipeline.Batch
	// Outcome reports one converted, cancelled or failed file.
	Outcome = pipeline.Outcome
	// Summary aggregates a finished batch.
	Summary = pipeline.Summary
)

// Outcome results.
const (
	Success   = pipeline.Success
	Cancelled = pipeline.Cancelled
	Failed    = pipeline.Failed
)

// DefaultConfig returns the default settings: mp3 input, top-level directory
// scan, output into CDDA_Converted, native backend, one file at a time.
func DefaultConfig() Config { return config.DefaultConfig() }

// StartBatch converts paths (files or directories) in the background.
// Enumeration happens before StartBatch returns; skipped paths are logged at
// WARN and listed in the summary. A nil log discards all records.
func StartBatch(ctx context.Context, cfg *Config, log *slog.Logger, paths []string) *Batch {
	return pipeline.Start(ctx, cfg, log, paths, pipeline.Options{})
}

// ResampleToCDDA is a high-level convenience function that reads src to the
// end and returns its audio as interleaved CD-DA stereo samples at 44.1 kHz.
//
// A decode error after some audio has been read ends the stream; what was
// decoded so far is returned without error. src is not closed.
func ResampleToCDDA(src audio.Source) ([]int16, error) {
	conv, err := audio.NewConverter(src.Format())
	if err != nil {
		return nil, err
	}

	var out []int16
	blocks := 0
	for {
		b, err := src.NextBlock()
		if errors.Is(err, io.EOF) || (errors.Is(err, audio.ErrDecode) && blocks > 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read block %d: %w", blocks, err)
		}
		blocks++

		stereo, err := conv.Convert(b)
		if err != nil {
			return nil, err
		}
		out = append(out, stereo...)
	}

	tail, err := conv.Flush()
	if err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}
