// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe, the configured
// encoder and hwaccel, the lut3d filter, and the reference LUT files.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/display"
)

// Sentinel errors returned by CheckDeps and the check helpers.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrNotListed       = errors.New("not listed by ffmpeg")
)

// Logger is the minimal logging interface needed by this package.
// Defined here (rather than importing the logging package) so that check
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
	Writer() io.Writer
}

// HostInfo is the subset of host facts printed by --check.
type HostInfo struct {
	CPUModel     string
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
	FreeMemory   uint64
}

// CheckDeps is the pre-run validation. ffmpeg must resolve; a missing
// ffprobe is only a warning because probing degrades to unknown metadata
// and every clip then takes the DLogM fallback.
func CheckDeps(cfg *config.Config, log Logger) error {
	if _, err := exec.LookPath(cfg.Encoder.FFmpegBin); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.Encoder.FFmpegBin)
	}
	if _, err := exec.LookPath(cfg.Encoder.FFprobeBin); err != nil {
		log.Warn("%v: %s (color detection disabled, clips will be treated as DLogM)",
			ErrFfprobeNotFound, cfg.Encoder.FFprobeBin)
	}
	return nil
}

// RunCheck runs the interactive --check flow and reports whether the
// system can run a batch with the current configuration. Host information
// is informational only and never affects the result.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	display.PrintBanner(log.Writer(), "SYSTEM CHECK")

	enc := cfg.Encoder
	ok := true

	if !checkBinary(ctx, log, "ffmpeg", enc.FFmpegBin) {
		// Nothing else can be asked of a missing ffmpeg.
		checkBinary(ctx, log, "ffprobe", enc.FFprobeBin)
		checkLUTs(cfg, log)
		logHost(ctx, log)
		return false
	}
	if !checkBinary(ctx, log, "ffprobe", enc.FFprobeBin) {
		log.Warn("Without ffprobe every clip is treated as DLogM")
	}

	if err := requireListed(ctx, enc.FFmpegBin, "-encoders", enc.VideoCodec); err != nil {
		log.Error("Encoder %s: %v", enc.VideoCodec, err)
		ok = false
	} else {
		log.Success("Encoder %s available", enc.VideoCodec)
	}

	if enc.HWAccel != "" {
		if err := requireListed(ctx, enc.FFmpegBin, "-hwaccels", enc.HWAccel); err != nil {
			log.Error("Hardware acceleration %s: %v", enc.HWAccel, err)
			ok = false
		} else {
			log.Success("Hardware acceleration %s available", enc.HWAccel)
		}
	}

	if err := requireListed(ctx, enc.FFmpegBin, "-filters", "lut3d"); err != nil {
		log.Error("Filter lut3d: %v", err)
		ok = false
	} else {
		log.Success("Filter lut3d available")
	}
	if err := requireListed(ctx, enc.FFmpegBin, "-filters", "zscale"); err != nil {
		log.Info("Filter zscale not available (not required)")
	} else {
		log.Success("Filter zscale available")
	}

	if !checkLUTs(cfg, log) {
		ok = false
	}
	logHost(ctx, log)

	if ok {
		log.Success("System ready")
	} else {
		log.Error("System check found problems")
	}
	return ok
}

// checkBinary verifies bin resolves and logs its version line.
func checkBinary(ctx context.Context, log Logger, label, bin string) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found: %s", label, bin)
		return false
	}
	out, err := output(ctx, bin, "-version")
	if err != nil {
		log.Warn("%s found but -version failed: %v", label, err)
		return true
	}
	firstLine := strings.TrimSpace(out)
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", label, firstLine)
	return true
}

// checkLUTs reports every configured LUT. The override replaces both
// reference LUTs, so only it is required when set.
func checkLUTs(cfg *config.Config, log Logger) bool {
	type lut struct{ label, path string }
	var luts []lut
	if cfg.LUTOverride != "" {
		luts = []lut{{"Override LUT", cfg.LUTOverride}}
	} else {
		luts = []lut{
			{"DLogM LUT", cfg.LUTs.DLogM},
			{"HLG LUT", cfg.LUTs.HLG},
		}
	}

	ok := true
	for _, l := range luts {
		fi, err := os.Stat(l.path)
		switch {
		case err != nil:
			log.Error("%s missing: %s", l.label, l.path)
			ok = false
		case fi.IsDir():
			log.Error("%s is a directory: %s", l.label, l.path)
			ok = false
		default:
			log.Success("%s: %s (%s)", l.label, l.path, display.FormatBytes(fi.Size()))
		}
	}
	return ok
}

// requireListed runs `ffmpeg -hide_banner <listFlag>` and looks for name
// among the leading tokens of each line.
func requireListed(ctx context.Context, ffmpegBin, listFlag, name string) error {
	out, err := output(ctx, ffmpegBin, "-hide_banner", listFlag)
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w", listFlag, err)
	}
	if !listed(out, name) {
		return ErrNotListed
	}
	return nil
}

// listed matches name against the first two fields of each line, which
// covers the capability-flags-then-name layout of -encoders and -filters
// as well as the bare names printed by -hwaccels.
func listed(out, name string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		for i := 0; i < len(fields) && i < 2; i++ {
			if fields[i] == name {
				return true
			}
		}
	}
	return false
}

// Host collects CPU and memory facts. Partial results are returned
// alongside the joined errors.
func Host(ctx context.Context) (HostInfo, error) {
	var h HostInfo
	var errs []error

	if infos, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	} else if len(infos) > 0 {
		h.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if n, err := cpu.CountsWithContext(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("logical cpus: %w", err))
	} else {
		h.LogicalCPUs = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		h.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		h.TotalMemory = vm.Total
		h.FreeMemory = vm.Available
	}
	return h, errors.Join(errs...)
}

func logHost(ctx context.Context, log Logger) {
	h, err := Host(ctx)
	if err != nil {
		log.Debug("Host info incomplete: %v", err)
	}
	if h.CPUModel != "" {
		log.Info("CPU:    %s", h.CPUModel)
	}
	if h.LogicalCPUs > 0 {
		log.Info("Cores:  %d logical, %d physical", h.LogicalCPUs, h.PhysicalCPUs)
	}
	if h.TotalMemory > 0 {
		log.Info("Memory: %s total, %s available",
			display.FormatBytes(int64(h.TotalMemory)), display.FormatBytes(int64(h.FreeMemory)))
	}
}

func output(ctx context.Context, bin string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, args...).Output()
	return string(out), err
}
