package media

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/camden-git/photocatalog/models"
	"github.com/rwcarlsen/goexif/exif"
)

// photoDateLayout is the calendar-date form photo records store
const photoDateLayout = "2006-01-02"

type Metadata struct {
	Width   int
	Height  int
	TakenAt *time.Time // nil when the file has no usable EXIF date
}

// Resolution formats the dimensions the way photo records store them
func (m Metadata) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// GetImageMetadata reads dimensions and, when present, the EXIF capture time
func GetImageMetadata(filePath string) (*Metadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	meta := &Metadata{}
	config, _, err := image.DecodeConfig(file)
	if err == nil {
		meta.Width, meta.Height = config.Width, config.Height
	} else {
		log.Printf("metadata: Warning - Could not decode config for dimensions of %s: %v", filePath, err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("metadata: failed to seek file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// not necessarily a fatal error, file might just lack EXIF data
		return meta, nil
	}

	if dt, err := exifData.DateTime(); err == nil {
		meta.TakenAt = &dt
	}
	return meta, nil
}

// FillMetadata sets a photo's empty Date and Resolution from its image file.
// It reports whether anything changed; fields that already hold a value are kept.
func (p *Processor) FillMetadata(photo *models.Photo) (bool, error) {
	if photo.Date != "" && photo.Resolution != "" {
		return false, nil
	}
	if !IsRasterImage(photo.Filename) {
		return false, ErrUnsupportedImage
	}

	srcPath, err := p.sourcePath(photo.Filename)
	if err != nil {
		return false, err
	}
	meta, err := GetImageMetadata(srcPath)
	if err != nil {
		return false, err
	}

	changed := false
	if photo.Resolution == "" && meta.Resolution() != "" {
		photo.Resolution = meta.Resolution()
		changed = true
	}
	// EXIF times carry no zone; the camera's wall-clock day is the capture date
	if photo.Date == "" && meta.TakenAt != nil {
		photo.Date = meta.TakenAt.Format(photoDateLayout)
		changed = true
	}
	return changed, nil
}
