package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/colorbatch/internal/colorprofile"
	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/logging"
)

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
// The script body can refer to the output path as "$out".
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor out; do :; done\n" + body + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin
}

func newTestRunner(bin string) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	enc := config.DefaultConfig().Encoder
	enc.FFmpegBin = bin
	return &Runner{Encoder: enc, SkipExisting: true, Log: logging.New(&buf, true)}, &buf
}

func jobIn(t *testing.T, dir string) *Job {
	j := testJob(t, colorprofile.DLogM)
	j.InputPath = filepath.Join(dir, "clip.mov")
	j.OutputPath = filepath.Join(dir, "clip_rec709.mp4")
	j.Media.Duration = 4
	return j
}

func TestRun_Success(t *testing.T) {
	bin := fakeFFmpeg(t, `
printf 'out_time_us=1000000\nspeed=1.0x\nprogress=continue\n'
printf 'out_time_us=4000000\nprogress=end\n'
printf 'encoded-bytes' > "$out"
exit 0`)
	r, logBuf := newTestRunner(bin)
	var events []ProgressEvent
	r.Interval = time.Nanosecond
	r.OnProgress = func(_ *Job, ev ProgressEvent) { events = append(events, ev) }

	job := jobIn(t, t.TempDir())
	res := r.Run(context.Background(), job)

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.True(t, res.OK())
	assert.Equal(t, int64(len("encoded-bytes")), res.OutputBytes)
	assert.Equal(t, []JobState{StateLaunched, StateRunning, StateTerminated}, job.History())
	require.NotEmpty(t, events)
	assert.Equal(t, 4*time.Second, events[len(events)-1].Elapsed)
	assert.Contains(t, logBuf.String(), "ffmpeg command:")
}

func TestRun_SkipsExistingOutput(t *testing.T) {
	r, _ := newTestRunner(filepath.Join(t.TempDir(), "never-run"))
	dir := t.TempDir()
	job := jobIn(t, dir)
	require.NoError(t, os.WriteFile(job.OutputPath, []byte("old"), 0o644))

	res := r.Run(context.Background(), job)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.True(t, res.OK())
	assert.Equal(t, int64(3), res.OutputBytes)
	assert.Equal(t, []JobState{StateLaunched, StateSkipped, StateTerminated}, job.History())
}

func TestRun_OverwriteRunsEvenWhenOutputExists(t *testing.T) {
	bin := fakeFFmpeg(t, `printf 'new-content' > "$out"`)
	r, _ := newTestRunner(bin)
	r.SkipExisting = false
	job := jobIn(t, t.TempDir())
	require.NoError(t, os.WriteFile(job.OutputPath, []byte("old"), 0o644))

	res := r.Run(context.Background(), job)
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, int64(len("new-content")), res.OutputBytes)
}

func TestRun_LaunchFailure(t *testing.T) {
	r, _ := newTestRunner(filepath.Join(t.TempDir(), "missing-ffmpeg"))
	job := jobIn(t, t.TempDir())

	res := r.Run(context.Background(), job)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrLaunch)
	assert.Equal(t, []JobState{StateLaunched, StateFailed, StateTerminated}, job.History())
}

func TestRun_NonZeroExit(t *testing.T) {
	bin := fakeFFmpeg(t, `
echo "Unknown encoder 'hevc_videotoolbox'" >&2
exit 1`)
	r, _ := newTestRunner(bin)
	job := jobIn(t, t.TempDir())

	res := r.Run(context.Background(), job)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrEncode)
	var exitErr *exec.ExitError
	assert.True(t, errors.As(res.Err, &exitErr))
	assert.Contains(t, res.Err.Error(), "encoder unavailable")
	assert.Contains(t, res.StderrTail, "Unknown encoder")
	assert.Equal(t, []JobState{StateLaunched, StateRunning, StateFailed, StateTerminated}, job.History())
}

func TestRun_ExitZeroWithoutOutput(t *testing.T) {
	bin := fakeFFmpeg(t, `exit 0`)
	r, _ := newTestRunner(bin)
	res := r.Run(context.Background(), jobIn(t, t.TempDir()))
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrOutputMissing)
}

func TestRun_MalformedProgressIsIgnored(t *testing.T) {
	bin := fakeFFmpeg(t, `
printf 'garbage\nout_time_us=abc\n=\nspeed=\nout_time_us=2000000\n'
printf 'x' > "$out"`)
	r, _ := newTestRunner(bin)
	var events []ProgressEvent
	r.Interval = time.Nanosecond
	r.OnProgress = func(_ *Job, ev ProgressEvent) { events = append(events, ev) }

	res := r.Run(context.Background(), jobIn(t, t.TempDir()))
	require.NoError(t, res.Err)
	assert.Equal(t, []ProgressEvent{{Elapsed: 2 * time.Second}}, events)
}

func TestRun_ContextCancelKillsChild(t *testing.T) {
	bin := fakeFFmpeg(t, `exec sleep 10`)
	r, _ := newTestRunner(bin)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := r.Run(ctx, jobIn(t, t.TempDir()))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrEncode)
	assert.True(t, IsInterrupted(res.Err))
}

func TestConsumeProgress_WallClockGate(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	r := &Runner{
		Interval: 500 * time.Millisecond,
		Now: func() time.Time {
			now = now.Add(200 * time.Millisecond)
			return now
		},
	}
	var got []time.Duration
	r.OnProgress = func(_ *Job, ev ProgressEvent) { got = append(got, ev.Elapsed) }

	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("out_time_us=%d", i*1_000_000))
	}
	require.NoError(t, r.consumeProgress(&Job{}, strings.NewReader(strings.Join(lines, "\n")), base))

	// Clock reads at 200ms steps from launch: renders at 600, 1200 and 1800ms.
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second, 9 * time.Second}, got)
}

func TestConsumeProgress_NothingRendersBeforeFirstInterval(t *testing.T) {
	launched := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Runner{
		Interval: 500 * time.Millisecond,
		Now:      func() time.Time { return launched.Add(499 * time.Millisecond) },
	}
	calls := 0
	r.OnProgress = func(*Job, ProgressEvent) { calls++ }

	input := "out_time_us=100000\nout_time_us=200000\nprogress=end\n"
	require.NoError(t, r.consumeProgress(&Job{}, strings.NewReader(input), launched))
	assert.Zero(t, calls)
}

func TestConsumeProgress_NonTimeLinesDoNotRender(t *testing.T) {
	calls := 0
	r := &Runner{OnProgress: func(*Job, ProgressEvent) { calls++ }}
	require.NoError(t, r.consumeProgress(&Job{}, strings.NewReader("speed=1x\nframe=3\nprogress=end\n"), time.Time{}))
	assert.Zero(t, calls)
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{limit: 16}
	_, _ = tb.Write([]byte("line one\nline two\n"))
	_, _ = tb.Write([]byte("line three\n"))
	assert.LessOrEqual(t, len(tb.String()), 16)
	assert.Equal(t, "line three", tb.LastLines(1))
}

func TestJobAdvance_RejectsInvalidTransition(t *testing.T) {
	j := &Job{}
	assert.Panics(t, func() { j.advance(StateRunning) })
	assert.Equal(t, StateNotStarted, j.State())
}
