// Package config holds runtime configuration: defaults, CLI flag binding,
// optional TOML file loading, and validation. Defaults match the legacy
// conversion script for parity, except that output is stamped Rec.709.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// ExistingPolicy decides what happens when a job's output path already exists.
type ExistingPolicy string

const (
	ExistingSkip      ExistingPolicy = "skip"      // Count as success without re-encoding (default).
	ExistingOverwrite ExistingPolicy = "overwrite" // Always re-encode (ffmpeg -y).
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LUTSet names the reference lookup tables used for each source profile.
type LUTSet struct {
	DLogM string // DLogM -> Rec709. Also the fallback for unknown sources.
	HLG   string // HLG (Rec2020) -> Rec709.
}

// Encoder holds the ffmpeg invocation settings. Everything here ends up on
// the encoder command line; see ffmpeg.Build.
type Encoder struct {
	FFmpegBin  string // Default: "ffmpeg".
	FFprobeBin string // Default: "ffprobe".
	HWAccel    string // Default: "videotoolbox". Empty disables -hwaccel.
	VideoCodec string // Default: "hevc_videotoolbox".
	PixFmt     string // Default: "p010le".
	Bitrate    string // Default: "20M".
	MaxRate    string // Default: "25M".
	BufSize    string // Default: "25M".
	VideoTag   string // Default: "hvc1". Empty disables -tag:v.
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by a TOML file, then by CLI flags, before being passed
// (by pointer) to packages that need it.
type Config struct {
	// Paths.
	InputDir  string // Default: ".".
	OutputDir string // Default: "" (same as InputDir).
	Suffix    string // Default: "_rec709". Appended to the input stem.
	OutputExt string // Default: "mp4". Without leading dot.

	// Color handling.
	LUTOverride string // When set, used for every file regardless of profile.
	LUTs        LUTSet

	Encoder Encoder

	// Behavior flags.
	ExistingPolicy ExistingPolicy // Default: "skip". Set to overwrite by --force.
	KeepPartial    bool           // Leave partial output after a failed job.
	DryRun         bool
	AnalyzeOnly    bool
	CheckOnly      bool

	// Display and logging.
	Verbose          bool
	ColorMode        ColorMode     // Default: "auto".
	ProgressInterval time.Duration // Fixed: 500ms between encoding progress renders.
	LogFile          string        // Default: "conversion.log". Empty disables the file sink.

	// Optional sinks.
	HistoryDB     string // SQLite conversion ledger.
	HistoryRecent int    // When > 0, print this many ledger rows and exit.
	ReportFile    string // YAML run report.
	ConfigFile    string // TOML file applied under CLI flags.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		InputDir:  ".",
		Suffix:    "_rec709",
		OutputExt: "mp4",
		LUTs: LUTSet{
			DLogM: "DJI_DLogM_to_Rec709.cube",
			HLG:   "HLG_Rec2020_to_Rec709.cube",
		},
		Encoder: Encoder{
			FFmpegBin:  "ffmpeg",
			FFprobeBin: "ffprobe",
			HWAccel:    "videotoolbox",
			VideoCodec: "hevc_videotoolbox",
			PixFmt:     "p010le",
			Bitrate:    "20M",
			MaxRate:    "25M",
			BufSize:    "25M",
			VideoTag:   "hvc1",
		},
		ExistingPolicy:   ExistingSkip,
		ColorMode:        ColorAuto,
		ProgressInterval: 500 * time.Millisecond,
		LogFile:          "conversion.log",
	}
}

// SkipExisting reports whether pre-existing outputs are treated as done.
func (c *Config) SkipExisting() bool {
	return c.ExistingPolicy == ExistingSkip
}

// EffectiveOutputDir returns OutputDir, falling back to InputDir.
func (c *Config) EffectiveOutputDir() string {
	if c.OutputDir == "" {
		return c.InputDir
	}
	return c.OutputDir
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and the values that end up on the ffmpeg
// command line. Paths are normalized in place.
func (c *Config) Validate() error {
	switch c.ExistingPolicy {
	case ExistingSkip, ExistingOverwrite:
		// valid
	default:
		return errors.New("invalid existing-output policy (use 'skip' or 'overwrite')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.ProgressInterval < 0 {
		return errors.New("progress interval must not be negative")
	}

	c.OutputExt = strings.TrimPrefix(strings.TrimSpace(c.OutputExt), ".")
	if c.OutputExt == "" {
		return errors.New("output extension must not be empty")
	}
	if strings.ContainsRune(c.Suffix, filepath.Separator) {
		return fmt.Errorf("invalid suffix %q (must not contain a path separator)", c.Suffix)
	}

	if c.Encoder.FFmpegBin == "" {
		return errors.New("ffmpeg binary must not be empty")
	}
	if c.Encoder.VideoCodec == "" {
		return errors.New("video codec must not be empty")
	}
	for name, v := range map[string]string{
		"bitrate": c.Encoder.Bitrate,
		"maxrate": c.Encoder.MaxRate,
		"bufsize": c.Encoder.BufSize,
	} {
		if err := validateRate(name, v); err != nil {
			return err
		}
	}

	if c.HistoryRecent < 0 {
		return errors.New("--recent must not be negative")
	}
	if c.HistoryRecent > 0 && c.HistoryDB == "" {
		return errors.New("--recent requires --history")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" {
		return errors.New("input directory must not be empty")
	}
	c.InputDir = NormalizeDirArg(c.InputDir)
	c.OutputDir = NormalizeDirArg(c.OutputDir)

	// With no suffix, an output in the input directory whose container is
	// one we discover would be written over its own source.
	sameDir := c.OutputDir == "" || filepath.Clean(c.OutputDir) == filepath.Clean(c.InputDir)
	if c.Suffix == "" && sameDir && sourceExts[strings.ToLower(c.OutputExt)] {
		return fmt.Errorf("empty suffix would overwrite .%s sources in %s (set --suffix or --output)", c.OutputExt, c.InputDir)
	}
	return nil
}

// sourceExts are the discovered input containers, lowercased.
var sourceExts = map[string]bool{"mp4": true, "mov": true}

// validateRate accepts ffmpeg rate strings such as "20M", "2500k" or "800000".
func validateRate(name, raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	digits := strings.TrimRight(s, "kKmMgG")
	if digits == "" || len(s)-len(digits) > 1 {
		return fmt.Errorf("invalid %s %q (use e.g. 20M or 2500k)", name, raw)
	}
	for _, r := range digits {
		if (r < '0' || r > '9') && r != '.' {
			return fmt.Errorf("invalid %s %q (use e.g. 20M or 2500k)", name, raw)
		}
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not nested inside
// the resolved input directory. Equal directories are allowed: discovery is
// non-recursive and ignores files already carrying the output suffix. Both
// arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if outputAbs == inputAbs {
		return nil
	}
	sep := string(filepath.Separator)
	if strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
