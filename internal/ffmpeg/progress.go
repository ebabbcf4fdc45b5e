package ffmpeg

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ProgressEvent is one parsed progress update from a running encode.
type ProgressEvent struct {
	Elapsed  time.Duration // Encoded media time so far.
	Speed    float64       // Realtime multiplier; valid only when HasSpeed.
	HasSpeed bool
}

// Percent returns how far Elapsed is through a clip of the given length in
// seconds, clamped to [0, 100]. Zero or negative durations yield 0.
func (e ProgressEvent) Percent(duration float64) int {
	if duration <= 0 {
		return 0
	}
	pct := int(e.Elapsed.Seconds() / duration * 100)
	return max(0, min(pct, 100))
}

// ProgressLine is the result of parsing one line of the progress channel.
type ProgressLine struct {
	Elapsed   time.Duration
	HasTime   bool
	Speed     float64
	HasSpeed  bool
	SpeedSeen bool // A well-formed speed key was present, even if N/A.
}

// ParseProgressLine parses one line of ffmpeg's -progress output.
//
// Grammar: whitespace-separated key=value tokens. Recognized keys:
//
//	out_time_us, out_time_ms  non-negative integer microseconds
//	                          (ffmpeg reports out_time_ms in microseconds too)
//	speed                     float with optional trailing "x"; "N/A" is absent
//
// Unknown keys, tokens without "=", and unparsable values are ignored. When
// both time keys appear, out_time_us wins.
func ParseProgressLine(line string) ProgressLine {
	var pl ProgressLine
	var usSet bool
	for _, tok := range strings.Fields(line) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			if usSet {
				continue
			}
			us, err := strconv.ParseInt(val, 10, 64)
			if err != nil || us < 0 {
				continue
			}
			pl.Elapsed = time.Duration(us) * time.Microsecond
			pl.HasTime = true
			usSet = key == "out_time_us"
		case "speed":
			s, ok, valid := parseSpeed(val)
			if !valid {
				continue
			}
			pl.SpeedSeen = true
			pl.Speed, pl.HasSpeed = s, ok
		}
	}
	return pl
}

// parseSpeed returns the multiplier, whether one is present, and whether
// the value was well-formed at all. "N/A" is well-formed but absent.
func parseSpeed(val string) (speed float64, present, valid bool) {
	if strings.EqualFold(val, "N/A") {
		return 0, false, true
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(val, "x"), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, false
	}
	return f, true, true
}

// ProgressTracker folds progress lines into events. ffmpeg writes one key
// per line, so speed arrives separately from time; the tracker carries the
// latest speed forward into the next time event.
type ProgressTracker struct {
	speed    float64
	hasSpeed bool
}

// Feed consumes one line and reports an event when the line carried a time.
func (t *ProgressTracker) Feed(line string) (ProgressEvent, bool) {
	pl := ParseProgressLine(line)
	if pl.SpeedSeen {
		t.speed, t.hasSpeed = pl.Speed, pl.HasSpeed
	}
	if !pl.HasTime {
		return ProgressEvent{}, false
	}
	return ProgressEvent{Elapsed: pl.Elapsed, Speed: t.speed, HasSpeed: t.hasSpeed}, true
}
