// Package colorprofile decides which color transform a clip needs from its
// normalized probe metadata. Classification is a pure, total function: every
// MediaInfo maps to exactly one Profile and nothing here touches the
// filesystem or external tools.
package colorprofile

import (
	"strings"

	"github.com/backmassage/colorbatch/internal/probe"
)

// Profile is the detected source color profile of a clip.
type Profile int

const (
	// Unknown means no rule matched. The planner treats it as DLogM.
	Unknown Profile = iota
	// DLogM is DJI's D-Log M log curve, usually tagged only as bt709 primaries.
	DLogM
	// HLG is Hybrid Log-Gamma HDR in Rec.2020.
	HLG
	// Rec709 is already standard dynamic range Rec.709 (or sRGB).
	Rec709
)

func (p Profile) String() string {
	switch p {
	case DLogM:
		return "DLogM"
	case HLG:
		return "HLG"
	case Rec709:
		return "Rec709"
	default:
		return "Unknown"
	}
}

// All lists every profile in display order.
func All() []Profile {
	return []Profile{DLogM, HLG, Rec709, Unknown}
}

// Codecs DJI cameras write D-Log M footage with.
var dlogmCodecs = map[string]bool{
	"h264": true,
	"h265": true,
	"hevc": true,
}

// Classify maps media metadata to a Profile. Rules are evaluated in order
// and the first match wins:
//
//  1. HLG: transfer mentions arib-std-b67 or hlg.
//  2. DLogM: space or transfer mention dlogm/d-log, or the DJI signature of
//     bt709 primaries with an unreported transfer on an h264/hevc stream.
//  3. Rec709: any of space, primaries or transfer mention bt709, or the
//     transfer is srgb.
//  4. Unknown.
//
// Matching is case-insensitive substring matching. The [probe.Unknown]
// sentinel matches nothing except the explicit unknown-transfer check in
// rule 2.
func Classify(m probe.MediaInfo) Profile {
	space := field(m.ColorSpace)
	primaries := field(m.ColorPrimaries)
	transfer := field(m.ColorTransfer)
	codec := field(m.CodecName)

	if strings.Contains(transfer, "arib-std-b67") || strings.Contains(transfer, "hlg") ||
		(strings.Contains(primaries, "bt2020") && strings.Contains(transfer, "arib-std-b67")) {
		return HLG
	}

	if containsAny(space, "dlogm", "d-log") || containsAny(transfer, "dlogm", "d-log") {
		return DLogM
	}
	if strings.Contains(primaries, "bt709") && transfer == probe.Unknown && dlogmCodecs[codec] {
		return DLogM
	}

	if strings.Contains(space, "bt709") || strings.Contains(primaries, "bt709") ||
		strings.Contains(transfer, "bt709") || strings.Contains(transfer, "srgb") {
		return Rec709
	}

	return Unknown
}

// field lowercases a normalized value. Empty strings are treated as the
// unknown sentinel so hand-built MediaInfo values classify the same way as
// probed ones.
func field(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return probe.Unknown
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
