// Package naming maps input clips to output paths and keeps a single run
// from writing two inputs to the same file.
//
// Output names are {stem}{suffix}.{ext}, placed in the output directory or
// next to the input. Inputs that collapse to the same name (clip.mov and
// clip.MP4) are separated by [CollisionResolver] with a " - dupN" suffix.
// [IsOutputName] recognizes both forms so discovery never re-converts a
// previous run's output.
package naming
