package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/colorbatch/internal/naming"
)

// Supported input extensions. Matching is case-sensitive; these are the
// spellings cameras and phones actually write.
var mediaExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".MP4": true,
	".MOV": true,
}

// Discover lists the regular files directly inside inputDir whose extension
// is in the allowlist, sorted by name. Subdirectories are not descended.
// Files that look like a previous run's output (stem ending in suffix) and
// macOS "._" resource-fork files are excluded, so re-running over the same
// directory is idempotent.
func Discover(inputDir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "._") {
			continue
		}
		if !mediaExtensions[filepath.Ext(name)] {
			continue
		}
		if naming.IsOutputName(name, suffix) {
			continue
		}
		files = append(files, filepath.Join(inputDir, name))
	}
	sort.Strings(files)
	return files, nil
}
