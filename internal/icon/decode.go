package icon

import (
	"fmt"
	"image"
	"os"

	// Formats the direct-decode strategy understands. BMP shows up often
	// enough on Windows desktops (exported icons, old wallpapers) to be
	// worth registering alongside the stdlib formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// DirectDecode returns the first-chance strategy: read the file's bytes and
// decode them as an image. It succeeds only when the path is itself an
// image file; every other failure (not an image, truncated, unreadable)
// just hands the path to the next strategy.
func DirectDecode() Strategy {
	return Strategy{
		Name: "direct-decode",
		Resolve: func(path string) (image.Image, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			defer f.Close()
			img, _, err := image.Decode(f)
			if err != nil {
				return nil, fmt.Errorf("decode: %w", err)
			}
			return img, nil
		},
	}
}
