// Package assemble converts chapter asset folders into per-chapter PDF
// documents, isolating folders with unreadable assets instead of failing
// the run.
package assemble

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoFolder is reported when the title folder to assemble is missing.
var ErrNoFolder = errors.New("folder does not exist")

// Encoder is the document encoder capability.
type Encoder interface {
	Encode(images []string, out string) error
}

// Report is the cumulative outcome of one assembly pass.
type Report struct {
	Documents []string // PDFs written
	Retained  []string // folders kept because of unreadable assets or failed cleanup
	BadAssets []string // files that did not decode
}

type Assembler struct {
	Enc Encoder
	Log interface {
		Debugf(string, ...any)
		Infof(string, ...any)
		Errorf(string, ...any)
	}

	// KeepFolders skips source cleanup even after a fully successful
	// conversion.
	KeepFolders bool
}

// Run assembles every chapter subfolder under root. Subfolders are
// processed deepest-first so their contents are resolved before any
// parent accounting; root itself is never treated as a chapter folder.
// A folder is deleted only when every one of its images decoded and the
// document was written; any decode failure retains the folder untouched.
func (a *Assembler) Run(root string) (*Report, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFolder, root)
	}

	rep := &Report{}
	for _, dir := range subfoldersDeepFirst(root) {
		a.assembleFolder(root, dir, rep)
	}

	return rep, nil
}

func (a *Assembler) assembleFolder(root, dir string, rep *Report) {
	images, err := listImages(dir)
	if err != nil {
		a.Log.Errorf("Cannot read %s: %v\n", dir, err)
		rep.Retained = append(rep.Retained, dir)
		return
	}
	if len(images) == 0 {
		a.Log.Debugf("No images in %s, skipping\n", dir)
		return
	}

	var valid, bad []string
	for _, img := range images {
		if err := decodeCheck(img); err != nil {
			a.Log.Errorf("Unreadable asset %s: %v\n", img, err)
			bad = append(bad, img)
			continue
		}
		valid = append(valid, img)
	}
	rep.BadAssets = append(rep.BadAssets, bad...)

	if len(valid) == 0 {
		a.Log.Errorf("No readable images in %s, folder retained\n", dir)
		rep.Retained = append(rep.Retained, dir)
		return
	}

	out := filepath.Join(root, filepath.Base(dir)+".pdf")
	if err := a.Enc.Encode(valid, out); err != nil {
		a.Log.Errorf("Conversion of %s failed: %v\n", dir, err)
		rep.Retained = append(rep.Retained, dir)
		return
	}
	rep.Documents = append(rep.Documents, out)
	a.Log.Infof("Wrote %s (%d pages)\n", out, len(valid))

	if len(bad) > 0 {
		// cleanup is conditioned on full success, not on having produced
		// a document
		rep.Retained = append(rep.Retained, dir)
		return
	}
	if a.KeepFolders {
		return
	}

	if err := removeFolder(dir); err != nil {
		a.Log.Errorf("Cleanup of %s failed: %v\n", dir, err)
		rep.Retained = append(rep.Retained, dir)
	}
}

func removeFolder(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	return os.Remove(dir)
}

// subfoldersDeepFirst lists every directory below root, children before
// parents.
func subfoldersDeepFirst(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	sort.SliceStable(dirs, func(i, j int) bool {
		di := strings.Count(dirs[i], string(filepath.Separator))
		dj := strings.Count(dirs[j], string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})

	return dirs
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		low := strings.ToLower(e.Name())
		if strings.HasSuffix(low, ".jpg") ||
			strings.HasSuffix(low, ".jpeg") ||
			strings.HasSuffix(low, ".png") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(out)
	return out, nil
}
