package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Inspector runs ffprobe. The zero value uses "ffprobe" from PATH.
type Inspector struct {
	Bin string
}

// NewInspector returns an Inspector for the given ffprobe binary.
func NewInspector(bin string) *Inspector {
	return &Inspector{Bin: bin}
}

// Inspect runs a single ffprobe JSON call against path. On any failure it
// returns [UnknownMedia] and an error wrapping [ErrProbeFailed], so the
// caller can degrade instead of aborting the file.
func (in *Inspector) Inspect(ctx context.Context, path string) (MediaInfo, error) {
	bin := in.Bin
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return UnknownMedia(), fmt.Errorf("%w: ffprobe %q: %v", ErrProbeFailed, path, err)
	}

	info, err := ParseJSON(out)
	if err != nil {
		return UnknownMedia(), fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	return info, nil
}

// ParseJSON converts raw ffprobe JSON output into a normalized MediaInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (MediaInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return UnknownMedia(), fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return normalize(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecName      string         `json:"codec_name"`
	CodecType      string         `json:"codec_type"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	Duration       string         `json:"duration"`
	ColorSpace     string         `json:"color_space"`
	ColorPrimaries string         `json:"color_primaries"`
	ColorTransfer  string         `json:"color_transfer"`
	Disposition    map[string]int `json:"disposition"`
}

// normalize applies the unknown/zero policy to decoded ffprobe output. The
// first video stream that is not attached cover art wins. Duration comes
// from the format section, falling back to the video stream's own duration.
func normalize(raw *ffprobeOutput) MediaInfo {
	info := UnknownMedia()
	info.Duration = nonNegative(parseFloat(raw.Format.Duration))

	var v *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType == "video" && s.Disposition["attached_pic"] != 1 {
			v = s
			break
		}
	}
	if v == nil {
		return info
	}

	if info.Duration == 0 {
		info.Duration = nonNegative(parseFloat(v.Duration))
	}
	info.ColorSpace = orUnknown(v.ColorSpace)
	info.ColorPrimaries = orUnknown(v.ColorPrimaries)
	info.ColorTransfer = orUnknown(v.ColorTransfer)
	info.CodecName = orUnknown(v.CodecName)
	info.Width = max(v.Width, 0)
	info.Height = max(v.Height, 0)
	return info
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	return s
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// parseFloat parses ffprobe's string-encoded numbers; "N/A", NaN, infinities
// and garbage yield 0.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
