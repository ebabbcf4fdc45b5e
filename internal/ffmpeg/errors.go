package ffmpeg

import (
	"errors"
	"regexp"
)

// Sentinel errors for a failed job. Wrapped with context via %w and
// matched by callers with errors.Is.
var (
	ErrLaunch        = errors.New("encoder launch failed")
	ErrEncode        = errors.New("encoder exited with error")
	ErrOutputMissing = errors.New("output file missing after encode")
)

// Pre-compiled regexes for turning encoder stderr into a short reason.
// Checked in order by [FailureReason]; the first match wins. LUT errors are
// first because they also mention "No such file or directory".
var (
	reMissingLUT = regexp.MustCompile(
		`(?i)lut3d.*(No such file|Failed to open|could not open|Invalid argument)|` +
			`\.cube.*No such file|Error initializing filter 'lut3d'`)

	reEncoderUnavailable = regexp.MustCompile(
		`(?i)Unknown encoder|Encoder .* not found|` +
			`Error while opening encoder|Could not open encoder|` +
			`Error initializing output stream`)

	reHWAccelUnavailable = regexp.MustCompile(
		`(?i)Device creation failed|Failed setup for format|` +
			`hwaccel .*(not supported|unavailable|failed)|` +
			`Unrecognized hwaccel`)

	reInvalidInput = regexp.MustCompile(
		`(?i)Invalid data found when processing input|moov atom not found|` +
			`No such file or directory|Permission denied`)
)

// FailureReason classifies encoder stderr into a human-readable reason.
// It returns "" when nothing recognizable is found.
func FailureReason(stderr string) string {
	switch {
	case reMissingLUT.MatchString(stderr):
		return "missing LUT file"
	case reEncoderUnavailable.MatchString(stderr):
		return "encoder unavailable"
	case reHWAccelUnavailable.MatchString(stderr):
		return "hardware acceleration unavailable"
	case reInvalidInput.MatchString(stderr):
		return "invalid input"
	default:
		return ""
	}
}
