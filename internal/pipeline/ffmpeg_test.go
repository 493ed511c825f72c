package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/mp32cdda/formats/wav"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg. The output path
// is its last argument, available to body as $out.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor a; do out=\"$a\"; done\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// cddaFixture writes a finalized CD-DA WAV with frames of silence.
func cddaFixture(t *testing.T, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	s, err := wav.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(make([]int16, frames*2)); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFFmpeg_Args(t *testing.T) {
	t.Parallel()

	b := &FFmpegBackend{}
	got := strings.Join(b.Args("in.mp3", "out.wav"), " ")
	want := "-nostdin -hide_banner -y -i in.mp3 -map_metadata -1 -vn -acodec pcm_s16le -ac 2 -ar 44100 -bitexact -f wav out.wav"
	if got != want {
		t.Errorf("Args() = %q\nwant %q", got, want)
	}
	if b.Name() != "ffmpeg" || b.path() != "ffmpeg" {
		t.Errorf("Name() = %q, path() = %q", b.Name(), b.path())
	}
}

func TestFFmpeg_Success(t *testing.T) {
	t.Parallel()

	fixture := cddaFixture(t, 4410)
	bin := fakeFFmpeg(t, `echo "size=       1kB time=00:00:00.10 bitrate=1411.2kbits/s speed=10x" >&2
cp '`+fixture+`' "$out"`)

	var reports atomic.Int32
	c := testCandidate(t)
	b := &FFmpegBackend{Path: bin, PollInterval: 5 * time.Millisecond}
	o := RunJob(context.Background(), b, c, JobOptions{
		OnProgress: func(Progress) { reports.Add(1) },
	})

	if o.Result != Success {
		t.Fatalf("Result = %v, Err = %v", o.Result, o.Err)
	}
	if o.Frames != 4410 || o.Output != c.Output {
		t.Errorf("Frames = %d, Output = %q", o.Frames, o.Output)
	}
	if reports.Load() != 1 {
		t.Errorf("got %d progress reports, want 1", reports.Load())
	}
	if names := listDir(t, c.OutputDir); !slices.Equal(names, []string{"in.wav"}) {
		t.Errorf("output dir holds %v", names)
	}
	fi, err := os.Stat(c.Output)
	if err != nil || fi.Mode().Perm() != 0o644 {
		t.Errorf("output mode = %v, %v", fi.Mode(), err)
	}
}

func TestFFmpeg_ExitError(t *testing.T) {
	t.Parallel()

	bin := fakeFFmpeg(t, `echo "in.mp3: Invalid data found when processing input" >&2
exit 1`)
	c := testCandidate(t)

	o := RunJob(context.Background(), &FFmpegBackend{Path: bin, PollInterval: 5 * time.Millisecond}, c, JobOptions{})

	if o.Result != Failed || !errors.Is(o.Err, ErrEncoder) {
		t.Fatalf("Result = %v, Err = %v", o.Result, o.Err)
	}
	if !strings.Contains(o.Err.Error(), "Invalid data found") {
		t.Errorf("Err = %v, want stderr tail", o.Err)
	}
	if names := listDir(t, c.OutputDir); len(names) != 0 {
		t.Errorf("output dir holds %v, want nothing", names)
	}
}

func TestFFmpeg_IncompleteOutput(t *testing.T) {
	t.Parallel()

	// exit 0 but the header was never patched
	fixture := cddaFixture(t, 100)
	bin := fakeFFmpeg(t, `cp '`+fixture+`' "$out"
printf 'trailing' >> "$out"`)
	c := testCandidate(t)

	o := RunJob(context.Background(), &FFmpegBackend{Path: bin, PollInterval: 5 * time.Millisecond}, c, JobOptions{})

	if o.Result != Failed {
		t.Fatalf("Result = %v, Err = %v", o.Result, o.Err)
	}
	if names := listDir(t, c.OutputDir); len(names) != 0 {
		t.Errorf("output dir holds %v, want nothing", names)
	}
}

func TestFFmpeg_CancelKeepsFinalizedOutput(t *testing.T) {
	t.Parallel()

	fixture := cddaFixture(t, 2205)
	bin := fakeFFmpeg(t, `trap 'cp '`+"'"+fixture+"'"+`' "$out"; exit 255' INT
echo "size=0kB time=00:00:00.05 bitrate=N/A" >&2
while :; do sleep 0.05; done`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := testCandidate(t)
	b := &FFmpegBackend{Path: bin, PollInterval: 5 * time.Millisecond, KillAfter: 5 * time.Second}

	o := RunJob(ctx, b, c, JobOptions{OnProgress: func(Progress) { cancel() }})

	if o.Result != Cancelled {
		t.Fatalf("Result = %v, Err = %v", o.Result, o.Err)
	}
	if o.Output != c.Output || o.Frames != 2205 {
		t.Errorf("Output = %q, Frames = %d", o.Output, o.Frames)
	}
	info, err := wav.Inspect(c.Output)
	if err != nil || !info.Complete {
		t.Errorf("Inspect() = %+v, %v", info, err)
	}
}

func TestFFmpeg_KillDropsOutput(t *testing.T) {
	t.Parallel()

	bin := fakeFFmpeg(t, `trap '' INT
printf 'RIFF' > "$out"
echo "time=00:00:00.01" >&2
exec sleep 30`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := testCandidate(t)
	b := &FFmpegBackend{Path: bin, PollInterval: 5 * time.Millisecond, KillAfter: 100 * time.Millisecond}

	start := time.Now()
	o := RunJob(ctx, b, c, JobOptions{OnProgress: func(Progress) { cancel() }})

	if o.Result != Cancelled || o.Output != "" {
		t.Fatalf("Result = %v, Output = %q, Err = %v", o.Result, o.Output, o.Err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("stop took %v", elapsed)
	}
	if names := listDir(t, c.OutputDir); len(names) != 0 {
		t.Errorf("output dir holds %v, want nothing", names)
	}
}

func TestFFmpeg_StartError(t *testing.T) {
	t.Parallel()

	c := testCandidate(t)
	b := &FFmpegBackend{Path: filepath.Join(t.TempDir(), "no-such-ffmpeg")}

	o := RunJob(context.Background(), b, c, JobOptions{})
	if o.Result != Failed || !errors.Is(o.Err, ErrEncoder) {
		t.Errorf("Result = %v, Err = %v", o.Result, o.Err)
	}
	if names := listDir(t, c.OutputDir); len(names) != 0 {
		t.Errorf("output dir holds %v, want nothing", names)
	}
}

func TestFFmpegAvailable(t *testing.T) {
	t.Parallel()

	if err := FFmpegAvailable(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("FFmpegAvailable(missing) = nil")
	}
	bin := fakeFFmpeg(t, "exit 0")
	if err := FFmpegAvailable(bin); err != nil {
		t.Errorf("FFmpegAvailable(%s) = %v", bin, err)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want time.Duration
		ok   bool
	}{
		{"size=  512kB time=00:00:02.97 bitrate=1411.2kbits/s", 2970 * time.Millisecond, true},
		{"time=01:02:03.50", time.Hour + 2*time.Minute + 3500*time.Millisecond, true},
		{"size=N/A time=N/A bitrate=N/A", 0, false},
		{"Stream #0:0: Audio: mp3, 44100 Hz", 0, false},
		{"time=00:xx:01.00", 0, false},
		{"time=-00:00:01.00", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseTime(tt.line)
		if ok != tt.ok || (ok && (got-tt.want).Abs() > time.Millisecond) {
			t.Errorf("parseTime(%q) = %v, %v, want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStderrScanner(t *testing.T) {
	t.Parallel()

	var times []time.Duration
	s := &stderrScanner{onTime: func(d time.Duration) { times = append(times, d) }}

	s.Write([]byte("Input #0, mp3\nsize=1kB time=00:00:01.00 bit"))
	s.Write([]byte("rate=x\rsize=2kB time=00:00:02.00 bitrate=x\r"))
	for i := range 10 {
		s.Write([]byte("line " + string(rune('a'+i)) + "\n"))
	}
	s.Write([]byte("partial"))

	if len(times) != 2 || times[0] != time.Second || times[1] != 2*time.Second {
		t.Errorf("times = %v", times)
	}
	tail := s.Tail()
	if !strings.HasSuffix(tail, "line j; partial") || strings.Contains(tail, "Input #0") {
		t.Errorf("Tail() = %q", tail)
	}
	if n := strings.Count(tail, ";"); n != stderrTailLines {
		t.Errorf("Tail() has %d separators, want %d", n, stderrTailLines)
	}
}
