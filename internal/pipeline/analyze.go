package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/colorbatch/internal/colorprofile"
	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/logging"
	"github.com/backmassage/colorbatch/internal/planner"
	"github.com/backmassage/colorbatch/internal/term"
)

// AnalysisRow holds the probed and classified data for one file.
type AnalysisRow struct {
	Name       string
	Resolution string
	Codec      string
	Space      string
	Primaries  string
	Transfer   string
	Profile    colorprofile.Profile
	Plan       string
	ProbeErr   bool
}

// Analyze discovers files, probes and classifies each one without
// encoding, and prints a table plus per-profile counts. It returns the rows
// for callers that want them; a nil slice means nothing was found.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger, in Inspector) ([]AnalysisRow, error) {
	files, err := Discover(cfg.InputDir, cfg.Suffix)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return nil, err
	}
	if len(files) == 0 {
		log.Warn("No video files (.mp4/.mov) found in %s", cfg.InputDir)
		return nil, ErrNoInputFiles
	}

	w := log.Writer()
	total := len(files)
	log.Info("Analyzing %d files in %s …", total, cfg.InputDir)
	fmt.Fprintln(w)

	isTTY := w == io.Writer(os.Stdout) && term.IsTerminal(os.Stdout)
	rows := make([]AnalysisRow, 0, total)

	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress(w)
			}
			log.Warn("Interrupted")
			return rows, ctx.Err()
		}
		printProgress(w, isTTY, i+1, total, filepath.Base(path))

		info, err := in.Inspect(ctx, path)
		profile := colorprofile.Classify(info)
		_, msg := planner.BuildPlan(profile, cfg.LUTOverride, cfg.LUTs)
		rows = append(rows, AnalysisRow{
			Name:       filepath.Base(path),
			Resolution: info.Resolution(),
			Codec:      info.CodecName,
			Space:      info.ColorSpace,
			Primaries:  info.ColorPrimaries,
			Transfer:   info.ColorTransfer,
			Profile:    profile,
			Plan:       msg,
			ProbeErr:   err != nil,
		})
	}
	if isTTY {
		clearProgress(w)
	}

	printAnalysisTable(w, rows)
	printAnalysisSummary(log, rows)
	return rows, nil
}

// ProfileCounts tallies rows per detected profile.
func ProfileCounts(rows []AnalysisRow) map[colorprofile.Profile]int {
	counts := make(map[colorprofile.Profile]int)
	for _, r := range rows {
		counts[r.Profile]++
	}
	return counts
}

var analysisHeaders = []string{"File", "Resolution", "Codec", "Space", "Primaries", "Transfer", "Profile"}

func printAnalysisTable(w io.Writer, rows []AnalysisRow) {
	widths := make([]int, len(analysisHeaders))
	for i, h := range analysisHeaders {
		widths[i] = len(h)
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Name, r.Resolution, r.Codec, r.Space, r.Primaries, r.Transfer, r.Profile.String()}
		for j, c := range cells[i] {
			widths[j] = max(widths[j], len([]rune(c)))
		}
	}
	widths[0] = min(widths[0], 40)

	header := "  " + joinPadded(analysisHeaders, widths)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len([]rune(header))-2))

	for i, r := range rows {
		row := cells[i]
		if n := []rune(row[0]); len(n) > widths[0] {
			row[0] = string(n[:widths[0]-1]) + "…"
		}
		line := joinPadded(row[:len(row)-1], widths[:len(widths)-1])
		// Pad first, then color, so escape bytes do not count as width.
		profile := colorPad(r.Profile, widths[len(widths)-1])
		flag := ""
		if r.ProbeErr {
			flag = " " + term.Yellow + "[probe failed]" + term.NC
		}
		fmt.Fprintf(w, "  %s  %s%s\n", line, profile, flag)
	}
	fmt.Fprintln(w)
}

func printAnalysisSummary(log *logging.Logger, rows []AnalysisRow) {
	counts := ProfileCounts(rows)
	log.Info("Analyzed %d files", len(rows))
	for _, p := range colorprofile.All() {
		if counts[p] == 0 {
			continue
		}
		_, msg := planner.BuildPlan(p, "", config.LUTSet{})
		log.Info("  %-8s %3d  (%s)", p, counts[p], msg)
	}
	if n := counts[colorprofile.Unknown]; n > 0 {
		log.Warn("  %d file(s) could not be classified and will be treated as DLogM", n)
	}
}

func joinPadded(cols []string, widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		pad := widths[i] - len([]rune(c))
		parts[i] = c + strings.Repeat(" ", max(pad, 0))
	}
	return strings.Join(parts, "  ")
}

func colorPad(p colorprofile.Profile, width int) string {
	s := p.String()
	padded := s + strings.Repeat(" ", max(width-len(s), 0))
	switch p {
	case colorprofile.HLG:
		return term.Magenta + padded + term.NC
	case colorprofile.DLogM:
		return term.Cyan + padded + term.NC
	case colorprofile.Rec709:
		return term.Green + padded + term.NC
	default:
		return term.Yellow + padded + term.NC
	}
}

// printProgress shows a live probe counter on a TTY; otherwise it is a
// no-op.
func printProgress(w io.Writer, isTTY bool, current, total int, name string) {
	if !isTTY {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, current*100/total)
	if n := []rune(name); len(n) > 40 {
		name = string(n[:39]) + "…"
	}
	status += name
	if l := len([]rune(status)); l < 80 {
		status += strings.Repeat(" ", 80-l)
	}
	fmt.Fprintf(w, "\r%s", status)
}

func clearProgress(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
}
