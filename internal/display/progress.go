package display

import (
	"fmt"
	"strings"

	"github.com/backmassage/colorbatch/internal/term"
)

const (
	overallBarWidth  = 50
	encodingBarWidth = 30
)

// OverallBar renders the batch position, e.g.
// "Overall: [█████░░░…] 40% (2/5)". total must be positive.
func OverallBar(current, total int) string {
	if total <= 0 {
		return ""
	}
	if current > total {
		current = total
	}
	pct := current * 100 / total
	filled := current * overallBarWidth / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", overallBarWidth-filled)
	return fmt.Sprintf("%sOverall:%s [%s] %s%d%%%s (%s%d/%d%s)",
		term.Blue, term.NC, bar, term.Green, pct, term.NC, term.Cyan, current, total, term.NC)
}

// EncodingBar renders one encoding progress line, e.g.
// "Encoding: 42% [▓▓▓▓░░…] 1.8x". The speed suffix is omitted when
// hasSpeed is false.
func EncodingBar(pct int, speed float64, hasSpeed bool) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * encodingBarWidth / 100
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", encodingBarWidth-filled)
	speedTxt := ""
	if hasSpeed {
		speedTxt = fmt.Sprintf(" %s%.1fx%s", term.Cyan, speed, term.NC)
	}
	return fmt.Sprintf("%sEncoding: %d%%%s [%s]%s", term.Green, pct, term.NC, bar, speedTxt)
}
