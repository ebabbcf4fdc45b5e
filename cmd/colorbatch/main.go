// Command colorbatch converts a folder of camera clips to Rec.709.
//
// It probes every .mp4/.mov in the input directory, detects the clip's color
// profile (DJI D-Log M, HLG, Rec.709), applies the matching 3D LUT and encodes
// with ffmpeg. --analyze and --check run without encoding.
package main

import "os"

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}
