package assemble

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type testLogger struct{}

func (testLogger) Debugf(string, ...any) {}
func (testLogger) Infof(string, ...any)  {}
func (testLogger) Errorf(string, ...any) {}

// recordingEncoder captures Encode calls without touching pdfcpu.
type recordingEncoder struct {
	calls map[string][]string
	fail  bool
}

func (e *recordingEncoder) Encode(images []string, out string) error {
	if e.fail {
		return os.ErrPermission
	}
	if e.calls == nil {
		e.calls = make(map[string][]string)
	}
	e.calls[out] = images
	return nil
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func writeGarbage(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunConvertsAndCleansUp(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "vol-01-ch-001")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "000.png"))
	writePNG(t, filepath.Join(dir, "001.png"))

	enc := &recordingEncoder{}
	a := &Assembler{Enc: enc, Log: testLogger{}}
	rep, err := a.Run(root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := filepath.Join(root, "vol-01-ch-001.pdf")
	if !reflect.DeepEqual(rep.Documents, []string{out}) {
		t.Errorf("Documents = %v, want [%s]", rep.Documents, out)
	}
	if got := enc.calls[out]; len(got) != 2 {
		t.Errorf("encoder got %d images, want 2", len(got))
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("fully converted folder must be removed, stat err = %v", err)
	}
	if len(rep.Retained) != 0 || len(rep.BadAssets) != 0 {
		t.Errorf("unexpected retained/bad entries: %+v", rep)
	}
}

func TestRunRetainsFolderWithBadAsset(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "vol-01-ch-002")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "000.png"))
	writeGarbage(t, filepath.Join(dir, "001.jpg"))

	enc := &recordingEncoder{}
	a := &Assembler{Enc: enc, Log: testLogger{}}
	rep, err := a.Run(root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// the document is still written from the readable pages
	out := filepath.Join(root, "vol-01-ch-002.pdf")
	if !reflect.DeepEqual(rep.Documents, []string{out}) {
		t.Errorf("Documents = %v, want [%s]", rep.Documents, out)
	}
	if got := enc.calls[out]; len(got) != 1 {
		t.Errorf("encoder got %d images, want only the readable one", len(got))
	}

	// but the source folder survives for inspection
	if !reflect.DeepEqual(rep.Retained, []string{dir}) {
		t.Errorf("Retained = %v, want [%s]", rep.Retained, dir)
	}
	if _, err := os.Stat(filepath.Join(dir, "000.png")); err != nil {
		t.Errorf("retained folder lost a file: %v", err)
	}
	if len(rep.BadAssets) != 1 {
		t.Errorf("BadAssets = %v, want the garbage file", rep.BadAssets)
	}
}

func TestRunRetainsFolderWithNoReadableImages(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ch-003")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeGarbage(t, filepath.Join(dir, "000.jpg"))

	enc := &recordingEncoder{}
	a := &Assembler{Enc: enc, Log: testLogger{}}
	rep, err := a.Run(root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Documents) != 0 {
		t.Errorf("no document expected, got %v", rep.Documents)
	}
	if len(enc.calls) != 0 {
		t.Errorf("encoder must not be called, got %v", enc.calls)
	}
	if !reflect.DeepEqual(rep.Retained, []string{dir}) {
		t.Errorf("Retained = %v, want [%s]", rep.Retained, dir)
	}
}

func TestRunRetainsFolderOnEncodeFailure(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ch-004")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "000.png"))

	a := &Assembler{Enc: &recordingEncoder{fail: true}, Log: testLogger{}}
	rep, err := a.Run(root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Documents) != 0 {
		t.Errorf("no document expected, got %v", rep.Documents)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("folder must survive an encode failure: %v", err)
	}
}

func TestRunKeepFolders(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ch-005")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "000.png"))

	a := &Assembler{Enc: &recordingEncoder{}, Log: testLogger{}, KeepFolders: true}
	if _, err := a.Run(root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "000.png")); err != nil {
		t.Errorf("KeepFolders must leave sources in place: %v", err)
	}
}

func TestRunMissingRoot(t *testing.T) {
	a := &Assembler{Enc: &recordingEncoder{}, Log: testLogger{}}
	if _, err := a.Run(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestSubfoldersDeepFirst(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got := subfoldersDeepFirst(root)
	want := []string{nested, filepath.Join(root, "a")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("subfoldersDeepFirst = %v, want %v", got, want)
	}
}
