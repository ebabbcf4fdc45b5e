package naming

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// OutputPath builds the output file path for input. ext is given without a
// leading dot. An empty outputDir places the output next to the input.
//
//	/clips/DJI_0001.MP4, "", "_rec709", "mp4" -> /clips/DJI_0001_rec709.mp4
func OutputPath(input, outputDir, suffix, ext string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, Stem(input)+suffix+"."+strings.TrimPrefix(ext, "."))
}

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var reDupTail = regexp.MustCompile(` - dup\d+$`)

// IsOutputName reports whether a file name looks like something this tool
// wrote: its stem ends with suffix, optionally followed by a " - dupN"
// collision marker. An empty suffix never matches.
func IsOutputName(name, suffix string) bool {
	if suffix == "" {
		return false
	}
	stem := reDupTail.ReplaceAllString(Stem(name), "")
	return strings.HasSuffix(stem, suffix)
}

// SamePath reports whether a and b name the same file. Names are compared
// case-insensitively; when both exist, os.SameFile settles hard links and
// differently spelled paths.
func SamePath(a, b string) bool {
	if fold(filepath.Clean(a)) == fold(filepath.Clean(b)) {
		return true
	}
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}
