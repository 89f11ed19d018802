// Package normalize renames the files of a title folder with zero-padded
// sequence prefixes so plain lexical listing matches reading order.
package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/brogergvhs/parkdl/internal/order"
)

var rePrefix = regexp.MustCompile(`^\d{3}_`)

// Run reorders dir's files in place. The ordering key is re-derived from
// each filename with the same grammar the sequencer uses; files whose
// names carry no recognizable components sort last, stably. The listing
// is snapshotted before the first rename, and an existing NNN_ prefix is
// stripped first, so running twice yields identical names and order.
func Run(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("folder %q not found", dir)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	// snapshot: all names and keys are fixed before any rename happens
	type fileKey struct {
		name string // current on-disk name
		base string // name with any old sequence prefix stripped
		key  order.Key
	}
	var files []fileKey
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := rePrefix.ReplaceAllString(e.Name(), "")
		k, _ := order.ParseKey(base)
		files = append(files, fileKey{name: e.Name(), base: base, key: k})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].key.Less(files[j].key)
	})

	renamed := make([]string, 0, len(files))
	for i, f := range files {
		newName := fmt.Sprintf("%03d_%s", i+1, f.base)
		if newName != f.name {
			oldPath := filepath.Join(abs, f.name)
			newPath := filepath.Join(abs, newName)
			if err := os.Rename(oldPath, newPath); err != nil {
				return renamed, fmt.Errorf("rename %s: %w", f.name, err)
			}
		}
		renamed = append(renamed, newName)
	}

	return renamed, nil
}
