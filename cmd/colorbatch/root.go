package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/backmassage/colorbatch/internal/check"
	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/display"
	"github.com/backmassage/colorbatch/internal/history"
	"github.com/backmassage/colorbatch/internal/logging"
	"github.com/backmassage/colorbatch/internal/pipeline"
	"github.com/backmassage/colorbatch/internal/probe"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

// execute builds the root command, runs it against args and returns the
// process exit code.
func execute(args []string) int {
	code := exitOK
	cmd := newRootCmd(&code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "colorbatch: %v\n", err)
		return exitFailure
	}
	return code
}

func newRootCmd(code *int) *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "colorbatch [flags]",
		Short: "Batch-convert DJI D-Log M, HLG and Rec.709 clips to Rec.709",
		Long: `colorbatch - batch color conversion for camera footage

Scans a directory (non-recursively) for .mp4/.mov clips, detects each
clip's color profile with ffprobe, applies the matching 3D LUT and
encodes with ffmpeg. Outputs are named {stem}{suffix}.{ext}.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.BindFlags(cmd.Flags(), &cfg)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		// Bootstrap: the logger doesn't exist yet, so errors go back to
		// execute and are printed to stderr.
		if cfg.ConfigFile != "" {
			f, err := config.LoadFile(cfg.ConfigFile)
			if err != nil {
				return err
			}
			f.ApplyTo(&cfg, cmd.Flags().Changed)
		}
		flags.Apply(&cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err := logging.NewLogger(&cfg)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer log.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		*code = run(ctx, &cfg, log)
		return nil
	}

	cmd.Version = fmt.Sprintf("%s (%s)", version, commit)
	cmd.SetVersionTemplate("colorbatch {{.Version}}\n")
	return cmd
}

// run executes the selected mode once config and logging are ready.
func run(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	display.PrintBanner(log.Writer(), "COLORBATCH v"+version)

	if cfg.HistoryRecent > 0 {
		return showRecent(cfg, log)
	}

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, cfg, log) {
			return exitFailure
		}
		return exitOK
	}

	if err := resolvePaths(cfg, log); err != nil {
		log.Error("%v", err)
		return exitFailure
	}

	if err := check.CheckDeps(cfg, log); err != nil {
		log.Error("%v", err)
		return exitFailure
	}

	if cfg.AnalyzeOnly {
		_, err := pipeline.Analyze(ctx, cfg, log, probe.NewInspector(cfg.Encoder.FFprobeBin))
		switch {
		case ctx.Err() != nil:
			return exitInterrupted
		case err != nil:
			return exitFailure
		}
		return exitOK
	}

	runID := uuid.NewString()
	driver := pipeline.NewDriver(cfg, log, runID)

	var store *history.Store
	if cfg.HistoryDB != "" {
		s, err := history.Open(cfg.HistoryDB)
		if err != nil {
			log.Warn("History disabled: %v", err)
		} else {
			store = s
			defer store.Close()
			driver.History = store
		}
	}

	stats, err := driver.Run(ctx)

	if store != nil && err == nil {
		if entries, herr := store.ForRun(runID); herr != nil {
			log.Warn("Could not read history: %v", herr)
		} else {
			log.Info("History: %d entries recorded in %s (run %s)", len(entries), cfg.HistoryDB, runID)
		}
	}

	if cfg.ReportFile != "" && err == nil {
		report := pipeline.NewReport(runID, cfg, stats, driver.Results(), time.Now())
		if werr := pipeline.WriteReport(cfg.ReportFile, report); werr != nil {
			log.Warn("Could not write report: %v", werr)
		} else {
			log.Info("Report written to %s", cfg.ReportFile)
		}
	}

	switch {
	case stats.Interrupted:
		return exitInterrupted
	case err != nil, !stats.OK():
		return exitFailure
	}
	return exitOK
}

// showRecent prints the newest ledger rows without touching any clip.
func showRecent(cfg *config.Config, log *logging.Logger) int {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	defer store.Close()

	entries, err := store.Recent(cfg.HistoryRecent)
	if err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	log.Info("Last %d conversions in %s", len(entries), cfg.HistoryDB)
	history.PrintTable(log.Writer(), entries)
	return exitOK
}

// resolvePaths checks the input directory exists, creates the output
// directory when a batch will write to it, and rejects an output nested
// inside the input.
func resolvePaths(cfg *config.Config, log *logging.Logger) error {
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("input not found: %s", cfg.InputDir)
	}
	if fi, err := os.Stat(inputAbs); err != nil || !fi.IsDir() {
		return fmt.Errorf("input is not a directory: %s", cfg.InputDir)
	}

	out := cfg.EffectiveOutputDir()
	writes := !cfg.DryRun && !cfg.AnalyzeOnly
	if writes {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %s", out)
		}
	}
	outputAbs, err := absPath(out)
	if err != nil {
		// Dry runs may name an output directory that does not exist yet.
		if outputAbs, err = filepath.Abs(out); err != nil {
			return fmt.Errorf("cannot resolve output path: %s", out)
		}
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return err
	}

	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", out)
	return nil
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
