// media/types.go
package media

import "errors"

type AssetType string

const (
	AssetTypeThumbnail AssetType = "thumbnail"
)

var (
	ErrSourceNotFound   = errors.New("source image not found")
	ErrUnsupportedImage = errors.New("unsupported image type")
)
