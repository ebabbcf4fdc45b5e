package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/logging"
)

const (
	defaultProgressInterval = 500 * time.Millisecond
	stderrTailBytes         = 8 << 10
	stderrTailLines         = 8
)

// Runner drives one ffmpeg child process per call to Run. The zero value is
// not usable; set at least Encoder.
type Runner struct {
	Encoder      config.Encoder
	SkipExisting bool
	Log          *logging.Logger

	// Interval is the minimum wall-clock gap between OnProgress calls.
	// Zero means 500ms.
	Interval time.Duration
	// Now is the clock used for render gating and elapsed time. Nil means
	// time.Now.
	Now func() time.Time
	// OnProgress receives rate-limited progress events while the job runs.
	OnProgress func(*Job, ProgressEvent)
}

// NewRunner returns a Runner configured from cfg.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	return &Runner{
		Encoder:      cfg.Encoder,
		SkipExisting: cfg.SkipExisting(),
		Log:          log,
		Interval:     cfg.ProgressInterval,
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return defaultProgressInterval
}

func (r *Runner) debug(format string, args ...interface{}) {
	if r.Log != nil {
		r.Log.Debug(format, args...)
	}
}

// Run executes job to completion and leaves it in StateTerminated. Per-job
// failures are reported in the Result, never returned as a Go error, so the
// batch can continue. Cancelling ctx kills the child; the result is then a
// failure whose Err matches both ErrEncode and ctx.Err().
func (r *Runner) Run(ctx context.Context, job *Job) Result {
	start := r.now()
	job.advance(StateLaunched)

	if r.SkipExisting {
		if fi, err := os.Stat(job.OutputPath); err == nil {
			job.advance(StateSkipped)
			job.advance(StateTerminated)
			return Result{Outcome: OutcomeSkipped, OutputBytes: fi.Size()}
		}
	}

	args := Build(r.Encoder, job)
	r.debug("ffmpeg command: %s", CommandLine(args))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.fail(job, start, fmt.Errorf("%w: %v", ErrLaunch, err), "")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return r.fail(job, start, fmt.Errorf("%w: %v", ErrLaunch, err), "")
	}
	if err := cmd.Start(); err != nil {
		return r.fail(job, start, fmt.Errorf("%w: %v", ErrLaunch, err), "")
	}
	job.advance(StateRunning)

	// Both pipes must be drained before Wait. Stderr is kept only as a tail
	// so a chatty encoder cannot block on a full pipe.
	tail := &tailBuffer{limit: stderrTailBytes}
	var g errgroup.Group
	g.Go(func() error { return r.consumeProgress(job, stdout, start) })
	g.Go(func() error {
		_, err := io.Copy(tail, stderr)
		return err
	})
	if err := g.Wait(); err != nil {
		r.debug("progress monitoring degraded: %v", err)
	}

	waitErr := cmd.Wait()
	stderrTail := tail.LastLines(stderrTailLines)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return r.fail(job, start, fmt.Errorf("%w: %w", ErrEncode, ctxErr), stderrTail)
	}
	if waitErr != nil {
		reason := FailureReason(tail.String())
		if reason == "" {
			reason = "see encoder output"
		}
		return r.fail(job, start, fmt.Errorf("%w (%s): %w", ErrEncode, reason, waitErr), stderrTail)
	}

	fi, err := os.Stat(job.OutputPath)
	if err != nil {
		return r.fail(job, start, fmt.Errorf("%w: %v", ErrOutputMissing, err), stderrTail)
	}

	job.advance(StateTerminated)
	return Result{
		Outcome:     OutcomeSucceeded,
		OutputBytes: fi.Size(),
		Elapsed:     r.now().Sub(start),
	}
}

func (r *Runner) fail(job *Job, start time.Time, err error, stderrTail string) Result {
	job.advance(StateFailed)
	job.advance(StateTerminated)
	return Result{
		Outcome:    OutcomeFailed,
		Err:        err,
		Elapsed:    r.now().Sub(start),
		StderrTail: stderrTail,
	}
}

// consumeProgress reads the progress channel line by line, emitting an
// event at most once per interval. The interval is measured from launch, so
// nothing renders during the first interval of a job. On a read error the
// rest of the stream is discarded so the child never blocks.
func (r *Runner) consumeProgress(job *Job, rd io.Reader, launched time.Time) error {
	var tracker ProgressTracker
	last := launched
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		ev, ok := tracker.Feed(sc.Text())
		if !ok || r.OnProgress == nil {
			continue
		}
		now := r.now()
		if now.Sub(last) < r.interval() {
			continue
		}
		last = now
		r.OnProgress(job, ev)
	}
	if err := sc.Err(); err != nil {
		_, _ = io.Copy(io.Discard, rd)
		return fmt.Errorf("read progress: %w", err)
	}
	return nil
}

// tailBuffer is an io.Writer that keeps only the last limit bytes written.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

// LastLines returns up to n trailing non-empty lines joined by newlines.
func (t *tailBuffer) LastLines(n int) string {
	lines := strings.Split(strings.TrimRight(string(t.buf), "\r\n"), "\n")
	out := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(out) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			out = append(out, l)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return strings.Join(out, "\n")
}

// IsInterrupted reports whether a job failure was caused by cancellation.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
