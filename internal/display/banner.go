package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/colorbatch/internal/term"
)

// ruleWidth is the width of the banner, per-file and summary rules.
const ruleWidth = 61

// PrintBanner writes the run title framed by double rules.
func PrintBanner(w io.Writer, title string) {
	fmt.Fprintln(w, DoubleRule())
	fmt.Fprintln(w, term.Magenta+Center(title, ruleWidth)+term.NC)
	fmt.Fprintln(w, DoubleRule())
}

// DoubleRule returns a colored ═ rule.
func DoubleRule() string {
	return term.Magenta + strings.Repeat("═", ruleWidth) + term.NC
}

// Rule returns a colored ━ rule used around per-file headers.
func Rule() string {
	return term.Magenta + strings.Repeat("━", ruleWidth) + term.NC
}

// Center pads s with spaces to width, centering it. Longer strings are
// returned unchanged.
func Center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
