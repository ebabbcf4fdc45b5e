package config

// This file implements the optional TOML config layer. File values sit
// between DefaultConfig and CLI flags: a value is applied only when the
// corresponding flag was not set on the command line.

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the on-disk TOML shape. Every field is optional; zero values mean
// "not set in the file".
type File struct {
	Paths struct {
		Input  string `toml:"input"`
		Output string `toml:"output"`
		Suffix string `toml:"suffix"`
		Ext    string `toml:"ext"`
	} `toml:"paths"`

	LUT struct {
		Override string `toml:"override"`
		DLogM    string `toml:"dlogm"`
		HLG      string `toml:"hlg"`
	} `toml:"lut"`

	Encoder struct {
		FFmpeg  string `toml:"ffmpeg"`
		FFprobe string `toml:"ffprobe"`
		HWAccel string `toml:"hwaccel"`
		Codec   string `toml:"codec"`
		PixFmt  string `toml:"pix_fmt"`
		Bitrate string `toml:"bitrate"`
		MaxRate string `toml:"maxrate"`
		BufSize string `toml:"bufsize"`
		Tag     string `toml:"tag"`
	} `toml:"encoder"`

	Behavior struct {
		Existing    string `toml:"existing"`
		KeepPartial *bool  `toml:"keep_partial"`
	} `toml:"behavior"`

	Output struct {
		Color            string   `toml:"color"`
		Verbose          *bool    `toml:"verbose"`
		ProgressInterval duration `toml:"progress_interval"`
		Log              *string  `toml:"log"`
		History          string   `toml:"history"`
		Report           string   `toml:"report"`
	} `toml:"output"`
}

// duration decodes TOML strings such as "500ms" via time.ParseDuration.
type duration struct {
	time.Duration
	set bool
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	d.set = true
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Unknown variables are left untouched.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		if value, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return value
		}
		return match
	})
}

// LoadFile reads and decodes a TOML config file. Undecoded keys are
// reported as an error so typos do not silently fall back to defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseFile(substituteEnvVars(string(data)))
}

// ParseFile decodes TOML content. Exported for testing without a file.
func ParseFile(content string) (*File, error) {
	var f File
	md, err := toml.Decode(content, &f)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing config: unknown key %q", undecoded[0].String())
	}
	return &f, nil
}

// ApplyTo copies values set in the file into cfg. changed reports whether
// the CLI flag with the given long name was set explicitly; such flags win.
func (f *File) ApplyTo(cfg *Config, changed func(flag string) bool) {
	str := func(flag, v string, dst *string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	boolean := func(flag string, v *bool, dst *bool) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}

	str("directory", f.Paths.Input, &cfg.InputDir)
	str("output", f.Paths.Output, &cfg.OutputDir)
	str("suffix", f.Paths.Suffix, &cfg.Suffix)
	str("ext", f.Paths.Ext, &cfg.OutputExt)

	str("lut", f.LUT.Override, &cfg.LUTOverride)
	str("dlogm-lut", f.LUT.DLogM, &cfg.LUTs.DLogM)
	str("hlg-lut", f.LUT.HLG, &cfg.LUTs.HLG)

	str("ffmpeg", f.Encoder.FFmpeg, &cfg.Encoder.FFmpegBin)
	str("ffprobe", f.Encoder.FFprobe, &cfg.Encoder.FFprobeBin)
	str("hwaccel", f.Encoder.HWAccel, &cfg.Encoder.HWAccel)
	str("codec", f.Encoder.Codec, &cfg.Encoder.VideoCodec)
	str("pix-fmt", f.Encoder.PixFmt, &cfg.Encoder.PixFmt)
	str("bitrate", f.Encoder.Bitrate, &cfg.Encoder.Bitrate)
	str("maxrate", f.Encoder.MaxRate, &cfg.Encoder.MaxRate)
	str("bufsize", f.Encoder.BufSize, &cfg.Encoder.BufSize)
	str("tag", f.Encoder.Tag, &cfg.Encoder.VideoTag)

	if f.Behavior.Existing != "" && !changed("force") {
		cfg.ExistingPolicy = ExistingPolicy(f.Behavior.Existing)
	}
	boolean("keep-partial", f.Behavior.KeepPartial, &cfg.KeepPartial)

	if f.Output.Color != "" && !changed("color") && !changed("no-color") {
		cfg.ColorMode = ColorMode(f.Output.Color)
	}
	boolean("verbose", f.Output.Verbose, &cfg.Verbose)
	if f.Output.ProgressInterval.set {
		cfg.ProgressInterval = f.Output.ProgressInterval.Duration
	}
	if f.Output.Log != nil && !changed("log") {
		cfg.LogFile = *f.Output.Log
	}
	str("history", f.Output.History, &cfg.HistoryDB)
	str("report", f.Output.Report, &cfg.ReportFile)
}
