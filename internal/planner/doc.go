// Package planner turns a detected color profile into the ffmpeg video
// filter chain used to bring a clip to Rec.709.
//
// The plan is pure data: an ordered list of stages (a 3D LUT or an
// identity scale) plus the color tags stamped on the output. Rendering to
// the -vf argument happens in [FilterChain.String] so the ffmpeg package
// never needs to know how a stage is spelled.
package planner
