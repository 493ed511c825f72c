// SPDX-License-Identifier: EPL-2.0

// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend selects how a file is transcoded.
type Backend string

const (
	BackendNative Backend = "native" // In-process decode, resample and WAV write (default).
	BackendFFmpeg Backend = "ffmpeg" // External ffmpeg process per file.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths (set from positional args). Files or directories.
	Inputs []string

	// Discovery.
	Extensions    []string // Default: ["mp3"]. Matched case-insensitively, no dot.
	Recursive     bool     // Default: false, only the top level of a directory is scanned.
	OutputDirName string   // Default: "CDDA_Converted", created next to the inputs.
	OutputExt     string   // Default: ".wav".

	// Transcoding.
	Backend      Backend       // Default: "native".
	FFmpegPath   string        // Default: "ffmpeg", looked up in PATH.
	PollInterval time.Duration // Default: 100ms. How often a running ffmpeg is checked.
	Jobs         int           // Default: 1. Files converted concurrently.
	BlockFrames  int           // Default: 4096. Frames per decoded block where the decoder allows it.

	// Display and logging.
	Verbose bool
	LogFile string // Optional log file path, appended to.
}

// DefaultConfig returns a Config with every default set. Used as the base
// before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		Extensions:    []string{"mp3"},
		Recursive:     false,
		OutputDirName: "CDDA_Converted",
		OutputExt:     ".wav",
		Backend:       BackendNative,
		FFmpegPath:    "ffmpeg",
		PollInterval:  100 * time.Millisecond,
		Jobs:          1,
		BlockFrames:   4096,
	}
}

// Validate checks enum fields and numeric ranges, and normalizes the
// extension list (lower case, leading dots removed, duplicates dropped).
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNative, BackendFFmpeg:
		// valid
	default:
		return fmt.Errorf("invalid backend %q (use 'native' or 'ffmpeg')", c.Backend)
	}

	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1 (got %d)", c.Jobs)
	}
	if c.BlockFrames < 1 {
		return fmt.Errorf("block size must be at least 1 frame (got %d)", c.BlockFrames)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive (got %s)", c.PollInterval)
	}

	exts, err := normalizeExtensions(c.Extensions)
	if err != nil {
		return err
	}
	c.Extensions = exts

	if c.OutputDirName == "" || c.OutputDirName == "." || c.OutputDirName == ".." ||
		strings.ContainsAny(c.OutputDirName, `/\`) {
		return fmt.Errorf("invalid output directory name %q", c.OutputDirName)
	}
	if !strings.HasPrefix(c.OutputExt, ".") || len(c.OutputExt) < 2 {
		return fmt.Errorf("output extension must start with a dot (got %q)", c.OutputExt)
	}
	if c.Backend == BackendFFmpeg && c.FFmpegPath == "" {
		return errors.New("ffmpeg path must not be empty")
	}

	if len(c.Inputs) == 0 {
		return errors.New("need at least one input file or directory")
	}
	return nil
}

// normalizeExtensions lower-cases and de-duplicates extensions, dropping the
// leading dot so "MP3", ".mp3" and "mp3" are the same entry.
func normalizeExtensions(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" || seen[e] {
			continue
		}
		if strings.ContainsAny(e, `/\.`) {
			return nil, fmt.Errorf("invalid extension %q", e)
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, errors.New("extension list must not be empty")
	}
	return out, nil
}
