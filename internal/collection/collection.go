// Package collection maintains the shared collection folder and merges a
// title's chapter documents into one collection-level document.
package collection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultFolderName keys the shared collection location.
const DefaultFolderName = "Manga Collection"

var (
	ErrNoFolder    = errors.New("title folder does not exist")
	ErrNoDocuments = errors.New("no documents to merge")
)

// Merger is the document concatenation capability.
type Merger interface {
	Merge(inputs []string, out string) error
}

// FindOrCreate locates a directory named name anywhere under searchRoot.
// When absent it is created directly under searchRoot. An empty
// searchRoot defaults to the user's home directory.
func FindOrCreate(name, searchRoot string) (string, error) {
	if searchRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		searchRoot = home
	}

	var found string
	_ = filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found != "" {
		return found, nil
	}

	path := filepath.Join(searchRoot, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}

	return path, nil
}

// Merge concatenates all PDF documents of titleDir, in filename order,
// into <collectionDir>/<title>.pdf. The filename normalizer has already
// enforced that lexical order is reading order.
func Merge(m Merger, titleDir, collectionDir string) (string, error) {
	if _, err := os.Stat(titleDir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoFolder, titleDir)
	}

	entries, err := os.ReadDir(titleDir)
	if err != nil {
		return "", err
	}

	var docs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			docs = append(docs, filepath.Join(titleDir, e.Name()))
		}
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoDocuments, titleDir)
	}
	sort.Strings(docs)

	out := filepath.Join(collectionDir, filepath.Base(titleDir)+".pdf")
	if err := m.Merge(docs, out); err != nil {
		return "", err
	}

	return out, nil
}
