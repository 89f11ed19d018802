package assemble

import (
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// decodeCheck opens and fully decodes an image file. Corrupt or truncated
// assets fail here and are excluded from the document.
func decodeCheck(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	_, _, err = image.Decode(f)
	return err
}
