package media

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/camden-git/photocatalog/models"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ThumbnailJpegQuality   = 90
	ThumbnailFileExtension = ".jpg"
)

// Processor renders photo thumbnails from the photos directory and caches
// them in a Store. Cached names are derived from the source file's path, size
// and modification time, so an edited original produces a fresh thumbnail.
type Processor struct {
	store     Store
	photosDir string
	maxSize   int
}

func NewProcessor(store Store, photosDir string, maxSize int) (*Processor, error) {
	absPhotosDir, err := filepath.Abs(photosDir)
	if err != nil {
		return nil, fmt.Errorf("invalid photos directory '%s': %w", photosDir, err)
	}
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid thumbnail max size: %d", maxSize)
	}
	return &Processor{store: store, photosDir: absPhotosDir, maxSize: maxSize}, nil
}

// sourcePath resolves a photo's filename inside the photos directory
func (p *Processor) sourcePath(filename string) (string, error) {
	if filename == "" {
		return "", ErrSourceNotFound
	}
	fullPath := filepath.Join(p.photosDir, filepath.Clean(filename))
	if fullPath != p.photosDir && !strings.HasPrefix(fullPath, p.photosDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid photo filename '%s': resolves outside photos directory", filename)
	}
	return fullPath, nil
}

// ThumbnailFor returns the absolute path of the photo's thumbnail, generating it on first use
func (p *Processor) ThumbnailFor(photo models.Photo) (string, error) {
	if !IsRasterImage(photo.Filename) {
		return "", ErrUnsupportedImage
	}

	srcPath, err := p.sourcePath(photo.Filename)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrSourceNotFound
		}
		return "", fmt.Errorf("failed to stat source image '%s': %w", srcPath, err)
	}
	if info.IsDir() {
		return "", ErrSourceNotFound
	}

	cacheKey := fmt.Sprintf("%s|%d|%d|%d", srcPath, info.Size(), info.ModTime().UnixNano(), p.maxSize)
	targetFilename := uuid.NewSHA1(uuid.NameSpaceURL, []byte(cacheKey)).String() + ThumbnailFileExtension

	exists, err := p.store.Exists(AssetTypeThumbnail, targetFilename)
	if err != nil {
		return "", err
	}

	var relPath string
	if exists {
		relPath, err = p.store.RelativePath(AssetTypeThumbnail, targetFilename)
		if err != nil {
			return "", err
		}
	} else {
		img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
		if err != nil {
			return "", fmt.Errorf("failed to decode source image '%s': %w", srcPath, err)
		}
		relPath, err = p.GenerateThumbnail(img, photo.Filename, targetFilename, p.maxSize)
		if err != nil {
			return "", err
		}
	}

	return p.store.GetFullPath(relPath)
}

// GenerateThumbnail creates a thumbnail where the longest side matches maxSize.
// saves the result using the Store. returns relative path to saved thumb or error.
func (p *Processor) GenerateThumbnail(originalImg image.Image, originalName, targetFilename string, maxSize int) (string, error) {
	origBounds := originalImg.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return "", fmt.Errorf("invalid original image dimensions: %dx%d", origWidth, origHeight)
	}

	var newWidth, newHeight int
	if origWidth > origHeight {
		if origWidth <= maxSize {
			newWidth, newHeight = origWidth, origHeight
		} else {
			newWidth = maxSize
			newHeight = int(math.Round(float64(origHeight) * (float64(maxSize) / float64(origWidth))))
		}
	} else {
		if origHeight <= maxSize {
			newWidth, newHeight = origWidth, origHeight
		} else {
			newHeight = maxSize
			newWidth = int(math.Round(float64(origWidth) * (float64(maxSize) / float64(origHeight))))
		}
	}
	newWidth = max(1, newWidth)
	newHeight = max(1, newHeight)

	thumb := imaging.Resize(originalImg, newWidth, newHeight, imaging.Lanczos)

	reader, writer := io.Pipe()

	go func() {
		err := imaging.Encode(writer, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJpegQuality))
		if err != nil {
			log.Printf("processor: Failed to encode thumbnail: %v", err)
			writer.CloseWithError(fmt.Errorf("thumbnail encoding failed: %w", err))
			return
		}
		writer.Close()
	}()

	savedRelPath, err := p.store.Save(AssetTypeThumbnail, targetFilename, reader)
	// unblock the encoder if Save bailed out before draining the pipe
	reader.Close()
	if err != nil {
		return "", fmt.Errorf("failed to save thumbnail via store: %w", err)
	}

	log.Printf("processor: Generated and saved thumbnail for %s at %s", originalName, savedRelPath)
	return savedRelPath, nil
}
