package material

import (
	"fmt"
	"image"
	"os"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes an image file from disk. PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - image.Image: the decoded image
//   - string: the detected format name
//   - error: an error if the file cannot be opened or decoded
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("material: failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("material: failed to decode %s: %w", path, err)
	}
	return img, format, nil
}
