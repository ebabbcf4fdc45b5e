package planner

// StageKind identifies one filter in the chain.
type StageKind int

const (
	// StageLUT3D applies a .cube lookup table (ffmpeg lut3d).
	StageLUT3D StageKind = iota
	// StageScale is the identity scale=iw:ih, used when no transform is needed.
	StageScale
)

func (k StageKind) String() string {
	switch k {
	case StageLUT3D:
		return "lut3d"
	case StageScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Stage is one element of a filter chain. LUTPath is set only for StageLUT3D.
type Stage struct {
	Kind    StageKind
	LUTPath string
}

// ColorTags are the color metadata written to the output stream.
type ColorTags struct {
	Primaries string
	Transfer  string
	Matrix    string
}

// Rec709Tags is the only output tagging this tool produces.
var Rec709Tags = ColorTags{Primaries: "bt709", Transfer: "bt709", Matrix: "bt709"}

// FilterChain is the complete video transform for one job.
type FilterChain struct {
	Stages []Stage
	Output ColorTags
}

// LUTPath returns the table used by the chain, or "" for an identity chain.
func (c FilterChain) LUTPath() string {
	for _, s := range c.Stages {
		if s.Kind == StageLUT3D {
			return s.LUTPath
		}
	}
	return ""
}
