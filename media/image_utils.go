package media

import (
	"github.com/disintegration/imaging"
)

// IsRasterImage reports whether imaging can decode the file, judged by its extension.
// Thumbnails and metadata are only attempted for these files.
func IsRasterImage(filename string) bool {
	_, err := imaging.FormatFromFilename(filename)
	return err == nil
}
