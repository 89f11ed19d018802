package collection

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type recordingMerger struct {
	inputs []string
	out    string
	err    error
}

func (m *recordingMerger) Merge(inputs []string, out string) error {
	m.inputs = inputs
	m.out = out
	return m.err
}

func TestFindOrCreateCreatesWhenAbsent(t *testing.T) {
	root := t.TempDir()

	got, err := FindOrCreate(DefaultFolderName, root)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	want := filepath.Join(root, DefaultFolderName)
	if got != want {
		t.Errorf("FindOrCreate = %q, want %q", got, want)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Errorf("created path is not a directory: %v", err)
	}
}

func TestFindOrCreateFindsNested(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "Documents", "books", DefaultFolderName)
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindOrCreate(DefaultFolderName, root)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if got != nested {
		t.Errorf("FindOrCreate = %q, want existing %q", got, nested)
	}
}

func TestMergeOrdersDocumentsLexically(t *testing.T) {
	titleDir := filepath.Join(t.TempDir(), "one-piece")
	if err := os.Mkdir(titleDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"002_vol-01-ch-002.pdf", "001_vol-01-ch-001.pdf", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(titleDir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	collectionDir := t.TempDir()

	m := &recordingMerger{}
	out, err := Merge(m, titleDir, collectionDir)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	wantOut := filepath.Join(collectionDir, "one-piece.pdf")
	if out != wantOut {
		t.Errorf("out = %q, want %q", out, wantOut)
	}
	wantInputs := []string{
		filepath.Join(titleDir, "001_vol-01-ch-001.pdf"),
		filepath.Join(titleDir, "002_vol-01-ch-002.pdf"),
	}
	if !reflect.DeepEqual(m.inputs, wantInputs) {
		t.Errorf("merge inputs = %v, want %v", m.inputs, wantInputs)
	}
}

func TestMergeNoDocuments(t *testing.T) {
	titleDir := t.TempDir()
	if _, err := Merge(&recordingMerger{}, titleDir, t.TempDir()); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("err = %v, want ErrNoDocuments", err)
	}
}

func TestMergeMissingTitleFolder(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	if _, err := Merge(&recordingMerger{}, missing, t.TempDir()); !errors.Is(err, ErrNoFolder) {
		t.Fatalf("err = %v, want ErrNoFolder", err)
	}
}

func TestMergePropagatesMergerError(t *testing.T) {
	titleDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(titleDir, "001_ch-001.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &recordingMerger{err: errors.New("damaged xref")}
	if _, err := Merge(m, titleDir, t.TempDir()); err == nil {
		t.Fatal("expected the merger error to propagate")
	}
}
