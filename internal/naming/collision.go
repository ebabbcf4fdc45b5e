package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CollisionResolver tracks output paths claimed by input files during one
// batch and resolves duplicates by appending " - dupN" to the stem. Paths
// are compared case-insensitively because the default target (macOS APFS)
// is case-insensitive. A resolver belongs to one sequential batch and is not
// safe for concurrent use.
type CollisionResolver struct {
	owners   map[string]string // folded output path → input path that owns it
	counters map[string]int    // folded base output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for input, handling collisions.
// If requestedOutput is unclaimed (or already owned by input), it is returned
// as-is. Otherwise a " - dupN" variant is generated.
func (cr *CollisionResolver) Resolve(input, requestedOutput string) string {
	key := fold(requestedOutput)
	owner, exists := cr.owners[key]
	if !exists || owner == input {
		cr.owners[key] = input
		return requestedOutput
	}

	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[key]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[fold(candidate)]
		if !cExists || cOwner == input {
			cr.counters[key] = counter + 1
			cr.owners[fold(candidate)] = input
			return candidate
		}
		counter++
	}
}

func fold(path string) string { return strings.ToLower(path) }
