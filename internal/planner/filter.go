package planner

import "strings"

// String renders the chain as a comma-joined ffmpeg -vf argument.
func (c FilterChain) String() string {
	parts := make([]string, 0, len(c.Stages))
	for _, s := range c.Stages {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ",")
}

// String renders a single stage. A LUT path passes two parsers: the
// filtergraph parser strips one level of quoting, then the filter's option
// parser splits on ':' and honours backslash escapes. The path is escaped for the
// option level and quoted for the graph level.
func (s Stage) String() string {
	switch s.Kind {
	case StageLUT3D:
		return "lut3d=file=" + quoteGraph(escapeOption(s.LUTPath))
	default:
		return "scale=iw:ih"
	}
}

var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

// escapeOption backslash-escapes the characters special inside a filter
// option value.
func escapeOption(v string) string {
	return optionEscaper.Replace(v)
}

// quoteGraph single-quotes v for the filtergraph level, which protects
// ',', ';', '[' and ']'. Embedded quotes are closed, escaped and reopened.
func quoteGraph(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

// Args returns the ffmpeg output color flags for the tags.
func (t ColorTags) Args() []string {
	return []string{
		"-color_primaries", t.Primaries,
		"-color_trc", t.Transfer,
		"-colorspace", t.Matrix,
	}
}
