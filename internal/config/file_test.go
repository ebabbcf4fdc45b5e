package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `
[paths]
output = "/exports"
suffix = "_graded"

[lut]
dlogm = "/luts/dlogm.cube"
hlg = "/luts/hlg.cube"

[encoder]
hwaccel = ""
codec = "libx265"
bitrate = "12M"

[behavior]
existing = "overwrite"
keep_partial = true

[output]
color = "never"
progress_interval = "250ms"
log = ""
history = "/var/lib/colorbatch/history.db"
`

func noneChanged(string) bool { return false }

func TestParseFile_AppliesValues(t *testing.T) {
	f, err := ParseFile(sampleFile)
	require.NoError(t, err)

	cfg := DefaultConfig()
	f.ApplyTo(&cfg, noneChanged)

	assert.Equal(t, "/exports", cfg.OutputDir)
	assert.Equal(t, "_graded", cfg.Suffix)
	assert.Equal(t, "/luts/dlogm.cube", cfg.LUTs.DLogM)
	assert.Equal(t, "/luts/hlg.cube", cfg.LUTs.HLG)
	assert.Equal(t, "libx265", cfg.Encoder.VideoCodec)
	assert.Equal(t, "12M", cfg.Encoder.Bitrate)
	assert.Equal(t, ExistingOverwrite, cfg.ExistingPolicy)
	assert.True(t, cfg.KeepPartial)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, 250*time.Millisecond, cfg.ProgressInterval)
	assert.Empty(t, cfg.LogFile, "an explicit empty log disables the file sink")
	assert.Equal(t, "/var/lib/colorbatch/history.db", cfg.HistoryDB)

	// Empty strings in the file leave defaults alone.
	assert.Equal(t, "videotoolbox", cfg.Encoder.HWAccel)
	assert.Equal(t, ".", cfg.InputDir)
}

func TestParseFile_FlagsWin(t *testing.T) {
	f, err := ParseFile(sampleFile)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Suffix = "_cli"
	changed := func(name string) bool { return name == "suffix" || name == "force" }
	f.ApplyTo(&cfg, changed)

	assert.Equal(t, "_cli", cfg.Suffix)
	assert.Equal(t, ExistingSkip, cfg.ExistingPolicy)
	assert.Equal(t, "/exports", cfg.OutputDir)
}

func TestParseFile_UnknownKey(t *testing.T) {
	_, err := ParseFile("[paths]\nsufix = \"_x\"\n")
	assert.ErrorContains(t, err, "unknown key")
}

func TestParseFile_BadDuration(t *testing.T) {
	_, err := ParseFile("[output]\nprogress_interval = \"soon\"\n")
	assert.Error(t, err)
}

func TestLoadFile_SubstitutesEnv(t *testing.T) {
	t.Setenv("COLORBATCH_TEST_LUTS", "/opt/luts")
	path := filepath.Join(t.TempDir(), "colorbatch.toml")
	content := "[lut]\ndlogm = \"${COLORBATCH_TEST_LUTS}/dlogm.cube\"\nhlg = \"${COLORBATCH_TEST_UNSET}/hlg.cube\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/luts/dlogm.cube", f.LUT.DLogM)
	assert.Equal(t, "${COLORBATCH_TEST_UNSET}/hlg.cube", f.LUT.HLG)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorContains(t, err, "reading config")
}
