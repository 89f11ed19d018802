package downloader

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSniffFormat(t *testing.T) {
	if f, err := sniffFormat(pngBytes(t)); err != nil || f != "png" {
		t.Errorf("png sniff = %q, %v", f, err)
	}
	if f, err := sniffFormat(jpegBytes(t)); err != nil || f != "jpeg" {
		t.Errorf("jpeg sniff = %q, %v", f, err)
	}
	if _, err := sniffFormat([]byte("definitely not an image")); err == nil {
		t.Error("expected an error for unknown bytes")
	}
	if _, err := sniffFormat([]byte{0xFF}); err == nil {
		t.Error("expected an error for truncated data")
	}
}

func TestWriteAsJPEGPassesJPEGThrough(t *testing.T) {
	data := jpegBytes(t)
	path := filepath.Join(t.TempDir(), "000.jpg")

	if err := writeAsJPEG(data, path); err != nil {
		t.Fatalf("writeAsJPEG: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("JPEG input must be written untouched")
	}
}

func TestWriteAsJPEGReencodesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "001.jpg")

	if err := writeAsJPEG(pngBytes(t), path); err != nil {
		t.Fatalf("writeAsJPEG: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if f, err := sniffFormat(got); err != nil || f != "jpeg" {
		t.Errorf("output sniff = %q, %v; want jpeg", f, err)
	}
}

func TestWriteAsJPEGRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "002.jpg")
	if err := writeAsJPEG([]byte("<html>blocked</html>"), path); err == nil {
		t.Fatal("expected an error for non-image bytes")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file must be written for rejected bytes")
	}
}
