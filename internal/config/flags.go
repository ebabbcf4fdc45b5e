package config

// This file implements CLI flag binding. Flags are grouped into paths, color,
// encoder, behavior, and display. Negated flags (e.g. --no-color, --force) are
// captured separately and folded into Config by [Flags.Apply] so Config
// defaults hold unless a flag is passed.

import "github.com/spf13/pflag"

// Flags holds the boolean switches that are applied to Config after parsing.
// Keep the struct alive for the lifetime of the flag set.
type Flags struct {
	force   bool
	color   bool
	noColor bool
}

// BindFlags registers every CLI flag on fs, writing directly into cfg where
// the flag maps 1:1 onto a field. Call [Flags.Apply] after parsing.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{}
	definePathFlags(fs, cfg)
	defineColorFlags(fs, cfg)
	defineEncoderFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, f)
	defineDisplayFlags(fs, cfg, f)
	return f
}

// definePathFlags registers -d/--directory, -o/--output, -s/--suffix, --ext, --config.
func definePathFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.InputDir, "directory", "d", cfg.InputDir, "Input directory")
	fs.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "Output directory (default: same as input)")
	fs.StringVarP(&cfg.Suffix, "suffix", "s", cfg.Suffix, "Output filename suffix")
	fs.StringVar(&cfg.OutputExt, "ext", cfg.OutputExt, "Output file extension")
	fs.StringVar(&cfg.ConfigFile, "config", "", "TOML config file (flags override file values)")
}

// defineColorFlags registers -l/--lut, --dlogm-lut, --hlg-lut.
func defineColorFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.LUTOverride, "lut", "l", "", "LUT file applied to every clip, overriding detection")
	fs.StringVar(&cfg.LUTs.DLogM, "dlogm-lut", cfg.LUTs.DLogM, "DLogM to Rec709 LUT (also used for unknown sources)")
	fs.StringVar(&cfg.LUTs.HLG, "hlg-lut", cfg.LUTs.HLG, "HLG (Rec2020) to Rec709 LUT")
}

// defineEncoderFlags registers the ffmpeg binary and encoder settings.
func defineEncoderFlags(fs *pflag.FlagSet, cfg *Config) {
	e := &cfg.Encoder
	fs.StringVar(&e.FFmpegBin, "ffmpeg", e.FFmpegBin, "ffmpeg binary")
	fs.StringVar(&e.FFprobeBin, "ffprobe", e.FFprobeBin, "ffprobe binary")
	fs.StringVar(&e.HWAccel, "hwaccel", e.HWAccel, "Hardware acceleration hint (empty to disable)")
	fs.StringVar(&e.VideoCodec, "codec", e.VideoCodec, "Target video codec")
	fs.StringVar(&e.PixFmt, "pix-fmt", e.PixFmt, "Target pixel format")
	fs.StringVar(&e.Bitrate, "bitrate", e.Bitrate, "Target video bitrate")
	fs.StringVar(&e.MaxRate, "maxrate", e.MaxRate, "Maximum video bitrate")
	fs.StringVar(&e.BufSize, "bufsize", e.BufSize, "Rate control buffer size")
	fs.StringVar(&e.VideoTag, "tag", e.VideoTag, "Video codec tag (empty to disable)")
}

// defineBehaviorFlags registers force, keep-partial, dry-run, analyze, check.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.BoolVarP(&f.force, "force", "f", false, "Re-encode even when the output already exists")
	fs.BoolVar(&cfg.KeepPartial, "keep-partial", false, "Keep partial output files after a failed encode")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Probe, classify and print commands without encoding")
	fs.BoolVarP(&cfg.AnalyzeOnly, "analyze", "a", false, "Print a color profile report and exit")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run system diagnostics and exit")
}

// defineDisplayFlags registers verbosity, color, and the optional sinks.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose logging")
	fs.BoolVar(&f.color, "color", false, "Force colored output")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file (empty to disable)")
	fs.StringVar(&cfg.HistoryDB, "history", "", "Record conversions in a SQLite database")
	fs.IntVar(&cfg.HistoryRecent, "recent", 0, "Print the N most recent history entries and exit (needs --history)")
	fs.StringVar(&cfg.ReportFile, "report", "", "Write a YAML run report")
}

// Apply folds the negated and override switches into cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.force {
		cfg.ExistingPolicy = ExistingOverwrite
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.color {
		cfg.ColorMode = ColorAlways
	}
}
