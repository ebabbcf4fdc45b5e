package history

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/backmassage/colorbatch/internal/display"
)

// PrintTable writes entries as an aligned table, one row per job. The size
// column shows the output's change against its input for encoded jobs.
func PrintTable(w io.Writer, entries []*Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "  (no conversions recorded)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  When\tFile\tProfile\tStatus\tSize change\tElapsed\t")
	for _, e := range entries {
		change := "-"
		if e.Status == StatusOK {
			change = display.FormatBytesWithSign(e.OutputBytes - e.InputBytes)
		}
		status := e.Status
		if e.Reason != "" {
			status += " (" + e.Reason + ")"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			filepath.Base(e.InputPath),
			e.Profile,
			status,
			change,
			display.FormatDuration(e.Elapsed),
		)
	}
	_ = tw.Flush()
}
