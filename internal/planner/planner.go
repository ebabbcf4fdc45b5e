package planner

import (
	"fmt"
	"path/filepath"

	"github.com/backmassage/colorbatch/internal/colorprofile"
	"github.com/backmassage/colorbatch/internal/config"
)

// BuildPlan selects the filter chain for a profile. It is total: every
// profile yields a chain, and the returned message describes the choice for
// the per-file log line.
//
// Decision order:
//  1. A non-empty override LUT wins for every profile.
//  2. DLogM and HLG use their reference tables from luts.
//  3. Rec709 gets an identity scale (re-encode only).
//  4. Unknown falls back to the DLogM table.
//
// Output tags are always Rec.709.
func BuildPlan(profile colorprofile.Profile, override string, luts config.LUTSet) (FilterChain, string) {
	chain := FilterChain{Output: Rec709Tags}

	if override != "" {
		chain.Stages = []Stage{{Kind: StageLUT3D, LUTPath: override}}
		return chain, fmt.Sprintf("Custom LUT (%s)", filepath.Base(override))
	}

	switch profile {
	case colorprofile.DLogM:
		chain.Stages = []Stage{{Kind: StageLUT3D, LUTPath: luts.DLogM}}
		return chain, "DLogM → Rec709"
	case colorprofile.HLG:
		chain.Stages = []Stage{{Kind: StageLUT3D, LUTPath: luts.HLG}}
		return chain, "HLG (Rec2020) → Rec709"
	case colorprofile.Rec709:
		chain.Stages = []Stage{{Kind: StageScale}}
		return chain, "Already Rec709, re-encoding only"
	default:
		chain.Stages = []Stage{{Kind: StageLUT3D, LUTPath: luts.DLogM}}
		return chain, "Unknown → assuming DLogM"
	}
}

// IsFallback reports whether the plan for profile is a best-effort guess.
func IsFallback(profile colorprofile.Profile, override string) bool {
	return override == "" && profile == colorprofile.Unknown
}
