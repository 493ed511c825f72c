package config

// This file implements CLI flag parsing and help text.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Version is shown by -version; override at build time with
// -ldflags "-X github.com/ik5/mp32cdda/internal/config.Version=...".
var Version = "0.1.0-dev"

// ErrVersion is returned by ParseFlags when -version was given.
var ErrVersion = errors.New("version requested")

// ParseFlags parses args (without the program name) into cfg. It returns
// flag.ErrHelp for -h and ErrVersion for -version after printing to the
// usage writer; the caller decides the exit code.
func ParseFlags(cfg *Config, args []string) error {
	return parseFlags(cfg, args, os.Stderr)
}

func parseFlags(cfg *Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mp32cdda", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { printUsage(out) }

	var showVersion bool

	fs.Var(&listValue{p: &cfg.Extensions}, "ext", "Comma separated input extensions")
	fs.StringVar(&cfg.OutputDirName, "out-dir", cfg.OutputDirName, "Output directory name")
	fs.BoolVar(&cfg.Recursive, "r", cfg.Recursive, "Scan directories recursively")
	fs.Var(&backendValue{&cfg.Backend}, "backend", "Backend: native | ffmpeg")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary for -backend ffmpeg")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "ffmpeg poll interval")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Files to convert in parallel")
	fs.IntVar(&cfg.BlockFrames, "block", cfg.BlockFrames, "Frames per decoded block")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose output")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append logs to file")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVersion {
		fmt.Fprintln(out, "mp32cdda v"+Version)
		return ErrVersion
	}

	cfg.Inputs = append(cfg.Inputs[:0], fs.Args()...)
	return nil
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(out io.Writer) {
	const col1 = 24
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "mp32cdda v" + Version + ", convert audio files to CD-DA WAV (44.1 kHz, 16 bit, stereo)"},
		{"", ""},
		{"  mp32cdda [OPTIONS] <file|dir>...", ""},
		{"", ""},
		{"Discovery", ""},
		{"  -ext <list>", "Input extensions (default: mp3)"},
		{"  -r", "Scan directories recursively"},
		{"  -out-dir <name>", "Output directory name (default: CDDA_Converted)"},
		{"", ""},
		{"Transcoding", ""},
		{"  -backend <name>", "native | ffmpeg (default: native)"},
		{"  -ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  -poll <duration>", "ffmpeg poll interval (default: 100ms)"},
		{"  -j <n>", "Files converted in parallel (default: 1)"},
		{"  -block <frames>", "Frames per decoded block (default: 4096)"},
		{"", ""},
		{"Utility", ""},
		{"  -v", "Verbose output"},
		{"  -log-file <path>", "Append logs to file"},
		{"  -version", "Print version and exit"},
		{"  -h", "Show this help and exit"},
	}

	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(out)
		case l.desc == "":
			fmt.Fprintln(out, l.flags)
		case l.flags == "":
			fmt.Fprintln(out, l.desc)
		default:
			padding := max(col1-len(l.flags), 1)
			fmt.Fprintf(out, "%s%*s%s\n", l.flags, padding, "", l.desc)
		}
	}
}

// flag.Value adapters for enum and list fields.

type backendValue struct{ p *Backend }

func (b *backendValue) String() string {
	if b.p == nil {
		return ""
	}
	return string(*b.p)
}

func (b *backendValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "native":
		*b.p = BackendNative
	case "ffmpeg":
		*b.p = BackendFFmpeg
	default:
		return fmt.Errorf("invalid backend %q (use 'native' or 'ffmpeg')", s)
	}
	return nil
}

// listValue replaces the default list on first use, then appends, so both
// "-ext mp3,wav" and "-ext mp3 -ext wav" work.
type listValue struct {
	p       *[]string
	touched bool
}

func (l *listValue) String() string {
	if l.p == nil {
		return ""
	}
	return strings.Join(*l.p, ",")
}

func (l *listValue) Set(s string) error {
	if !l.touched {
		*l.p = nil
		l.touched = true
	}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l.p = append(*l.p, part)
		}
	}
	return nil
}
