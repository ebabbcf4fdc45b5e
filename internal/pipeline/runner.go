package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/backmassage/colorbatch/internal/colorprofile"
	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/display"
	"github.com/backmassage/colorbatch/internal/ffmpeg"
	"github.com/backmassage/colorbatch/internal/history"
	"github.com/backmassage/colorbatch/internal/logging"
	"github.com/backmassage/colorbatch/internal/naming"
	"github.com/backmassage/colorbatch/internal/planner"
	"github.com/backmassage/colorbatch/internal/probe"
	"github.com/backmassage/colorbatch/internal/term"
)

var (
	// ErrNoInputFiles is returned when discovery finds nothing to convert.
	ErrNoInputFiles = errors.New("no input files found")
	// ErrInputStat marks a file that vanished or became unreadable before
	// its job started.
	ErrInputStat = errors.New("cannot stat input file")
	// ErrOutputIsInput marks a job whose output path names its own source.
	ErrOutputIsInput = errors.New("output path is the input file")
)

// Inspector reads clip metadata. Satisfied by *probe.Inspector.
type Inspector interface {
	Inspect(ctx context.Context, path string) (probe.MediaInfo, error)
}

// Encoder runs one conversion job. Satisfied by *ffmpeg.Runner.
type Encoder interface {
	Run(ctx context.Context, job *ffmpeg.Job) ffmpeg.Result
}

// Recorder persists one entry per finished file. Satisfied by
// *history.Store.
type Recorder interface {
	Add(e *history.Entry) error
}

// FileResult is the outcome of one file, kept for the run report.
type FileResult struct {
	Input       string
	Output      string
	Profile     colorprofile.Profile
	Plan        string
	Status      string // One of the history.Status* values.
	Reason      string
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
}

// Driver runs a batch. Inspector and Encoder are interfaces so tests can
// substitute fakes; NewDriver wires the real ffprobe and ffmpeg.
type Driver struct {
	Cfg       *config.Config
	Log       *logging.Logger
	Inspector Inspector
	Encoder   Encoder
	History   Recorder // Optional.
	RunID     string
	Now       func() time.Time

	live     bool // Render in-place progress bars.
	liveLine bool // A progress line is currently on screen.
	results  []FileResult
}

// NewDriver returns a Driver backed by ffprobe and ffmpeg from cfg.
func NewDriver(cfg *config.Config, log *logging.Logger, runID string) *Driver {
	d := &Driver{
		Cfg:       cfg,
		Log:       log,
		Inspector: probe.NewInspector(cfg.Encoder.FFprobeBin),
		RunID:     runID,
		live:      log.Writer() == io.Writer(os.Stdout) && term.IsTerminal(os.Stdout),
	}
	r := ffmpeg.NewRunner(cfg, log)
	r.OnProgress = d.renderProgress
	d.Encoder = r
	return d
}

// Run is the top-level batch entry point using the real ffprobe and ffmpeg.
// Callers that need history, a run ID or per-file results build a Driver.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	stats, _ := NewDriver(cfg, log, "").Run(ctx)
	return stats
}

func (d *Driver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Results returns the per-file outcomes of the last Run, in order.
func (d *Driver) Results() []FileResult {
	return slices.Clone(d.results)
}

// Run discovers files, processes each sequentially and logs a summary. The
// returned error is non-nil only when the batch could not start (discovery
// failed or found nothing); per-file failures are counted in RunStats.
func (d *Driver) Run(ctx context.Context) (RunStats, error) {
	stats := RunStats{Start: d.now()}
	d.results = nil

	files, err := Discover(d.Cfg.InputDir, d.Cfg.Suffix)
	if err != nil {
		d.Log.Error("File discovery failed: %v", err)
		return stats, fmt.Errorf("discover %s: %w", d.Cfg.InputDir, err)
	}
	stats.Total = len(files)
	if len(files) == 0 {
		d.Log.Error("No video files (.mp4/.mov) found in %s", d.Cfg.InputDir)
		return stats, ErrNoInputFiles
	}

	d.logBatchHeader(&stats)
	resolver := naming.NewCollisionResolver()

	for i, path := range files {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}
		res := d.processFile(ctx, i+1, path, &stats, resolver)
		d.results = append(d.results, res)
		d.record(res)
		if stats.Interrupted {
			break
		}
	}
	if stats.Interrupted {
		d.Log.Warn("Interrupted, stopping batch")
	}

	d.logSummary(&stats)
	return stats, nil
}

// processFile handles one clip: stat → probe → classify → plan → encode.
func (d *Driver) processFile(
	ctx context.Context,
	index int,
	path string,
	stats *RunStats,
	resolver *naming.CollisionResolver,
) FileResult {
	cfg, log, w := d.Cfg, d.Log, d.Log.Writer()
	res := FileResult{Input: path}

	fmt.Fprintln(w, display.Rule())
	log.Info("[%d/%d] %s", index, stats.Total, filepath.Base(path))
	fmt.Fprintln(w, display.Rule())

	// --- Validate ---
	fi, err := os.Stat(path)
	if err != nil {
		return d.fail(stats, res, fmt.Errorf("%w: %v", ErrInputStat, err), "")
	}
	res.InputBytes = fi.Size()

	// --- Probe, classify, plan ---
	info, err := d.Inspector.Inspect(ctx, path)
	if err != nil {
		log.Warn("Could not read metadata, treating as unknown: %v", err)
	}
	profile := colorprofile.Classify(info)
	chain, msg := planner.BuildPlan(profile, cfg.LUTOverride, cfg.LUTs)
	res.Profile, res.Plan = profile, msg

	log.Info("  Size: %s | Duration: %s | Resolution: %s",
		display.FormatBytes(res.InputBytes), display.FormatSeconds(info.Duration), info.Resolution())
	log.Info("  Color: %s | Codec: %s", info.ColorTriple(), info.CodecName)
	if planner.IsFallback(profile, cfg.LUTOverride) {
		log.Warn("  Profile: %s", msg)
	} else {
		log.Info("  Profile: %s", msg)
	}

	// --- Output path ---
	requested := naming.OutputPath(path, cfg.OutputDir, cfg.Suffix, cfg.OutputExt)
	out := resolver.Resolve(path, requested)
	if out != requested {
		log.Warn("  Output name already claimed in this run, using %s", filepath.Base(out))
	}
	res.Output = out
	if naming.SamePath(path, out) {
		return d.fail(stats, res, fmt.Errorf("%w: %s", ErrOutputIsInput, out), "")
	}
	log.Info("  -> %s", filepath.Base(out))
	fmt.Fprintln(w, display.OverallBar(index-1, stats.Total))

	job := &ffmpeg.Job{
		InputPath:  path,
		OutputPath: out,
		Profile:    profile,
		Filter:     chain,
		Media:      info,
	}

	// --- Dry run ---
	if cfg.DryRun {
		return d.dryRun(job, stats, res)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return d.fail(stats, res, fmt.Errorf("create output directory: %w", err), "")
	}

	// --- Encode ---
	result := d.Encoder.Run(ctx, job)
	d.clearProgress()
	res.Elapsed = result.Elapsed

	switch result.Outcome {
	case ffmpeg.OutcomeSkipped:
		stats.Successful++
		stats.Skipped++
		res.Status = history.StatusSkipped
		res.OutputBytes = result.OutputBytes
		log.Warn("Skip (exists): %s", filepath.Base(out))
	case ffmpeg.OutcomeFailed:
		if ffmpeg.IsInterrupted(result.Err) {
			stats.Interrupted = true
		}
		// A launch failure never touched the output path.
		if !errors.Is(result.Err, ffmpeg.ErrLaunch) {
			d.removePartial(path, out)
		}
		return d.fail(stats, res, result.Err, result.StderrTail)
	default:
		stats.Successful++
		stats.InputBytes += res.InputBytes
		stats.OutputBytes += result.OutputBytes
		res.Status = history.StatusOK
		res.OutputBytes = result.OutputBytes
		log.Success("Converted in %s: %s (%s of original)",
			display.FormatDuration(result.Elapsed),
			display.FormatBytes(result.OutputBytes),
			display.FormatRatio(result.OutputBytes, res.InputBytes))
	}
	return res
}

func (d *Driver) dryRun(job *ffmpeg.Job, stats *RunStats, res FileResult) FileResult {
	stats.Successful++
	if d.Cfg.SkipExisting() {
		if _, err := os.Stat(job.OutputPath); err == nil {
			stats.Skipped++
			res.Status = history.StatusSkipped
			d.Log.Warn("[DRY] Would skip (exists): %s", filepath.Base(job.OutputPath))
			return res
		}
	}
	res.Status = history.StatusDryRun
	d.Log.Success("[DRY] Would run: %s", ffmpeg.CommandLine(ffmpeg.Build(d.Cfg.Encoder, job)))
	return res
}

func (d *Driver) fail(stats *RunStats, res FileResult, err error, stderrTail string) FileResult {
	stats.Failed++
	res.Status = history.StatusFailed
	res.Reason = err.Error()
	d.Log.Error("Conversion failed: %v", err)
	if stderrTail != "" {
		d.Log.Error("Last ffmpeg output:")
		for _, l := range strings.Split(stderrTail, "\n") {
			d.Log.Error("  %s", l)
		}
	}
	return res
}

// removePartial deletes a half-written output unless --keep-partial is set.
// A path that names the input is never removed.
func (d *Driver) removePartial(in, out string) {
	if naming.SamePath(in, out) {
		d.Log.Warn("Not removing %s: it is the source clip", out)
		return
	}
	if d.Cfg.KeepPartial {
		if _, err := os.Stat(out); err == nil {
			d.Log.Warn("Keeping partial output: %s", out)
		}
		return
	}
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.Log.Warn("Could not remove partial output %s: %v", out, err)
	}
}

func (d *Driver) record(res FileResult) {
	if d.History == nil {
		return
	}
	err := d.History.Add(&history.Entry{
		RunID:       d.RunID,
		InputPath:   res.Input,
		OutputPath:  res.Output,
		Profile:     res.Profile.String(),
		Status:      res.Status,
		Reason:      res.Reason,
		InputBytes:  res.InputBytes,
		OutputBytes: res.OutputBytes,
		Elapsed:     res.Elapsed,
	})
	if err != nil {
		d.Log.Warn("Could not record history: %v", err)
	}
}

// --- Progress rendering ---

func (d *Driver) renderProgress(job *ffmpeg.Job, ev ffmpeg.ProgressEvent) {
	if !d.live {
		return
	}
	var line string
	if job.Media.Duration > 0 {
		line = display.EncodingBar(ev.Percent(job.Media.Duration), ev.Speed, ev.HasSpeed)
	} else {
		line = "Encoding: " + display.FormatDuration(ev.Elapsed)
	}
	fmt.Fprint(d.Log.Writer(), "\r"+line)
	d.liveLine = true
}

func (d *Driver) clearProgress() {
	if !d.liveLine {
		return
	}
	fmt.Fprint(d.Log.Writer(), "\r"+strings.Repeat(" ", 80)+"\r")
	d.liveLine = false
}

// --- Logging helpers ---

func (d *Driver) logBatchHeader(stats *RunStats) {
	cfg, log := d.Cfg, d.Log
	log.Info("Found %d files in %s", stats.Total, cfg.InputDir)
	log.Info("Output: %s (suffix %q, .%s)", cfg.EffectiveOutputDir(), cfg.Suffix, cfg.OutputExt)

	enc := cfg.Encoder
	hw := enc.HWAccel
	if hw == "" {
		hw = "none"
	}
	log.Info("Encoder: %s (%s) | hwaccel: %s | %s / max %s / buf %s",
		enc.VideoCodec, enc.PixFmt, hw, enc.Bitrate, enc.MaxRate, enc.BufSize)

	if cfg.LUTOverride != "" {
		log.Info("LUT: %s (override, all files)", cfg.LUTOverride)
	} else {
		log.Info("LUTs: DLogM=%s HLG=%s", cfg.LUTs.DLogM, cfg.LUTs.HLG)
	}
	if cfg.SkipExisting() {
		log.Info("Existing outputs: skip (use --force to overwrite)")
	} else {
		log.Info("Existing outputs: overwrite")
	}
	if cfg.DryRun {
		log.Warn("Dry run: no files will be written")
	}
	if d.RunID != "" {
		log.Debug("Run ID: %s", d.RunID)
	}
	fmt.Fprintln(log.Writer())
}

func (d *Driver) logSummary(stats *RunStats) {
	log, w := d.Log, d.Log.Writer()

	fmt.Fprintln(w)
	display.PrintBanner(w, "SUMMARY")

	log.Info("Total files:  %d", stats.Total)
	log.Success("Successful:   %d (%d skipped)", stats.Successful, stats.Skipped)
	if stats.Failed > 0 {
		log.Error("Failed:       %d", stats.Failed)
	} else {
		log.Info("Failed:       0")
	}
	if stats.Interrupted {
		log.Warn("Interrupted after %d of %d files", stats.Processed(), stats.Total)
	}
	log.Info("Elapsed:      %s", display.FormatDuration(d.now().Sub(stats.Start)))

	if d.Cfg.DryRun {
		log.Info("Space saved:  n/a (dry run)")
		return
	}
	ratio, ok := stats.Ratio()
	if !ok {
		return
	}
	log.Info("Input:        %s -> Output: %s (%.1f%% of input)",
		display.FormatBytes(stats.InputBytes), display.FormatBytes(stats.OutputBytes), ratio*100)
	if saved := stats.SpaceSaved(); saved >= 0 {
		log.Success("Space saved:  %s", display.FormatBytes(saved))
	} else {
		log.Warn("Space saved:  -%s (output is larger)", display.FormatBytes(-saved))
	}
}
