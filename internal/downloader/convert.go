package downloader

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// sniffFormat reads the magic bytes and returns the image format.
func sniffFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", errors.New("data too short to determine format")
	}

	switch {
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg", nil
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "png", nil
	case string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a":
		return "gif", nil
	case string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp", nil
	}

	return "", errors.New("unknown image format")
}

// writeAsJPEG persists image bytes at path as JPEG. Bytes that already are
// JPEG are written untouched; other known formats are decoded and
// re-encoded at quality 90.
func writeAsJPEG(data []byte, path string) error {
	if len(data) == 0 {
		return errors.New("empty image data")
	}

	format, err := sniffFormat(data)
	if err != nil {
		return err
	}

	if format == "jpeg" {
		return os.WriteFile(path, data, 0644)
	}

	var img image.Image
	reader := bytes.NewReader(data)

	switch format {
	case "png":
		img, err = png.Decode(reader)
	case "gif":
		img, err = gif.Decode(reader)
	case "webp":
		img, err = webp.Decode(reader)
	default:
		return errors.New("unsupported image format: " + format)
	}
	if err != nil {
		return errors.New("failed to decode " + format + " image: " + err.Error())
	}

	return imaging.Save(img, path, imaging.JPEGQuality(90))
}
