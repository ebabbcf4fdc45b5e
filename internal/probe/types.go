package probe

import (
	"errors"
	"strconv"
)

// Unknown is the sentinel for color and codec fields ffprobe did not report.
const Unknown = "unknown"

// ErrProbeFailed wraps every inspection failure.
var ErrProbeFailed = errors.New("probe failed")

// MediaInfo is the normalized, immutable description of one input clip.
// String fields hold ffprobe's values verbatim (comparisons downstream are
// case-insensitive) or [Unknown].
type MediaInfo struct {
	Duration       float64 // Seconds, >= 0.
	ColorSpace     string
	ColorPrimaries string
	ColorTransfer  string
	Width          int
	Height         int
	CodecName      string
}

// UnknownMedia returns the value used when a clip cannot be probed.
func UnknownMedia() MediaInfo {
	return MediaInfo{
		ColorSpace:     Unknown,
		ColorPrimaries: Unknown,
		ColorTransfer:  Unknown,
		CodecName:      Unknown,
	}
}

// Resolution returns "WxH", or "unknown" when either dimension is missing.
func (m MediaInfo) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return Unknown
	}
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}

// ColorTriple returns "space / primaries / transfer" for display.
func (m MediaInfo) ColorTriple() string {
	return m.ColorSpace + " / " + m.ColorPrimaries + " / " + m.ColorTransfer
}
