package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/colorbatch/internal/config"
)

// Report is the machine-readable summary written by --report.
type Report struct {
	RunID     string       `yaml:"run_id,omitempty"`
	Started   time.Time    `yaml:"started"`
	Finished  time.Time    `yaml:"finished"`
	InputDir  string       `yaml:"input_dir"`
	OutputDir string       `yaml:"output_dir"`
	DryRun    bool         `yaml:"dry_run,omitempty"`
	Totals    ReportTotals `yaml:"totals"`
	Files     []ReportFile `yaml:"files"`
}

// ReportTotals mirrors RunStats.
type ReportTotals struct {
	Total       int     `yaml:"total"`
	Successful  int     `yaml:"successful"`
	Failed      int     `yaml:"failed"`
	Skipped     int     `yaml:"skipped"`
	InputBytes  int64   `yaml:"input_bytes"`
	OutputBytes int64   `yaml:"output_bytes"`
	BytesSaved  int64   `yaml:"bytes_saved"`
	Ratio       float64 `yaml:"ratio,omitempty"`
	Interrupted bool    `yaml:"interrupted,omitempty"`
}

// ReportFile is one file's entry.
type ReportFile struct {
	Name           string  `yaml:"name"`
	Output         string  `yaml:"output,omitempty"`
	Profile        string  `yaml:"profile"`
	Plan           string  `yaml:"plan,omitempty"`
	Status         string  `yaml:"status"`
	Reason         string  `yaml:"reason,omitempty"`
	InputBytes     int64   `yaml:"input_bytes"`
	OutputBytes    int64   `yaml:"output_bytes,omitempty"`
	ElapsedSeconds float64 `yaml:"elapsed_seconds,omitempty"`
}

// NewReport assembles a Report from a finished run.
func NewReport(runID string, cfg *config.Config, stats RunStats, results []FileResult, finished time.Time) Report {
	r := Report{
		RunID:     runID,
		Started:   stats.Start,
		Finished:  finished,
		InputDir:  cfg.InputDir,
		OutputDir: cfg.EffectiveOutputDir(),
		DryRun:    cfg.DryRun,
		Totals: ReportTotals{
			Total:       stats.Total,
			Successful:  stats.Successful,
			Failed:      stats.Failed,
			Skipped:     stats.Skipped,
			InputBytes:  stats.InputBytes,
			OutputBytes: stats.OutputBytes,
			BytesSaved:  stats.SpaceSaved(),
			Interrupted: stats.Interrupted,
		},
		Files: make([]ReportFile, 0, len(results)),
	}
	if ratio, ok := stats.Ratio(); ok {
		r.Totals.Ratio = ratio
	}
	for _, fr := range results {
		r.Files = append(r.Files, ReportFile{
			Name:           filepath.Base(fr.Input),
			Output:         fr.Output,
			Profile:        fr.Profile.String(),
			Plan:           fr.Plan,
			Status:         fr.Status,
			Reason:         fr.Reason,
			InputBytes:     fr.InputBytes,
			OutputBytes:    fr.OutputBytes,
			ElapsedSeconds: fr.Elapsed.Seconds(),
		})
	}
	return r
}

// WriteReport writes r as YAML to path, creating parent directories.
func WriteReport(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
