package media

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/photocatalog/models"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, maxSize int) (*Processor, string) {
	t.Helper()
	photosDir := t.TempDir()
	store, err := NewLocalStorage(t.TempDir(), map[AssetType]string{AssetTypeThumbnail: "thumbnails"})
	require.NoError(t, err)
	p, err := NewProcessor(store, photosDir, maxSize)
	require.NoError(t, err)
	return p, photosDir
}

func writeTestImage(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, filepath.Join(dir, name)))
}

func TestThumbnailForScalesLongestSide(t *testing.T) {
	p, photosDir := newTestProcessor(t, 300)
	writeTestImage(t, photosDir, "beach.png", 640, 480)

	thumbPath, err := p.ThumbnailFor(models.Photo{ID: 1, Filename: "beach.png"})
	require.NoError(t, err)

	thumb, err := imaging.Open(thumbPath)
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 225, thumb.Bounds().Dy())
	assert.Equal(t, ThumbnailFileExtension, filepath.Ext(thumbPath))
}

func TestThumbnailForDoesNotUpscale(t *testing.T) {
	p, photosDir := newTestProcessor(t, 300)
	writeTestImage(t, photosDir, "tiny.png", 40, 90)

	thumbPath, err := p.ThumbnailFor(models.Photo{ID: 1, Filename: "tiny.png"})
	require.NoError(t, err)

	thumb, err := imaging.Open(thumbPath)
	require.NoError(t, err)
	assert.Equal(t, 40, thumb.Bounds().Dx())
	assert.Equal(t, 90, thumb.Bounds().Dy())
}

func TestThumbnailForIsCached(t *testing.T) {
	p, photosDir := newTestProcessor(t, 100)
	writeTestImage(t, photosDir, "cat.png", 200, 200)
	photo := models.Photo{ID: 3, Filename: "cat.png"}

	first, err := p.ThumbnailFor(photo)
	require.NoError(t, err)
	firstInfo, err := os.Stat(first)
	require.NoError(t, err)

	second, err := p.ThumbnailFor(photo)
	require.NoError(t, err)
	secondInfo, err := os.Stat(second)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstInfo.ModTime(), secondInfo.ModTime())

	entries, err := os.ReadDir(filepath.Dir(first))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestThumbnailForErrors(t *testing.T) {
	p, photosDir := newTestProcessor(t, 100)
	require.NoError(t, os.WriteFile(filepath.Join(photosDir, "notes.txt"), []byte("hi"), 0644))

	_, err := p.ThumbnailFor(models.Photo{Filename: "missing.jpg"})
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = p.ThumbnailFor(models.Photo{Filename: "notes.txt"})
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = p.ThumbnailFor(models.Photo{Filename: "../outside.png"})
	assert.Error(t, err)
}

func TestLocalStorageRejectsNestedFilenames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), map[AssetType]string{AssetTypeThumbnail: "thumbnails"})
	require.NoError(t, err)

	_, err = store.Save(AssetTypeThumbnail, "../escape.jpg", nil)
	assert.Error(t, err)

	_, err = store.GetFullPath("../../etc/passwd")
	assert.Error(t, err)
}

func TestIsRasterImage(t *testing.T) {
	assert.True(t, IsRasterImage("a.JPG"))
	assert.True(t, IsRasterImage("dir/b.png"))
	assert.False(t, IsRasterImage("c.heic"))
	assert.False(t, IsRasterImage("noext"))
}

func TestFillMetadata(t *testing.T) {
	p, photosDir := newTestProcessor(t, 100)
	writeTestImage(t, photosDir, "cat.png", 64, 48)

	photo := models.Photo{ID: 1, Filename: "cat.png"}
	changed, err := p.FillMetadata(&photo)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "64x48", photo.Resolution)
	// png files carry no EXIF capture time
	assert.Empty(t, photo.Date)

	kept := models.Photo{ID: 2, Filename: "cat.png", Date: "2024-01-01", Resolution: "1x1"}
	changed, err = p.FillMetadata(&kept)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "1x1", kept.Resolution)

	_, err = p.FillMetadata(&models.Photo{Filename: "gone.png"})
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

// writeExifJPEG writes a small JPEG whose IFD0 carries dateTime ("2006:01:02 15:04:05")
func writeExifJPEG(t *testing.T, dir, name, dateTime string) {
	t.Helper()

	var encoded bytes.Buffer
	img := imaging.New(4, 4, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
	require.NoError(t, imaging.Encode(&encoded, img, imaging.JPEG))

	value := append([]byte(dateTime), 0)
	le := binary.LittleEndian
	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(8)) // IFD0 offset
	binary.Write(&tiff, le, uint16(1)) // one entry
	binary.Write(&tiff, le, uint16(0x0132))
	binary.Write(&tiff, le, uint16(2)) // ASCII
	binary.Write(&tiff, le, uint32(len(value)))
	binary.Write(&tiff, le, uint32(8+2+12+4)) // value follows the IFD
	binary.Write(&tiff, le, uint32(0))        // no next IFD
	tiff.Write(value)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	var app1 bytes.Buffer
	app1.Write([]byte{0xFF, 0xE1})
	binary.Write(&app1, binary.BigEndian, uint16(len(payload)+2))
	app1.Write(payload)

	raw := encoded.Bytes()
	out := append(append(append([]byte{}, raw[:2]...), app1.Bytes()...), raw[2:]...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), out, 0644))
}

func TestFillMetadataKeepsExifCalendarDate(t *testing.T) {
	// a zone far from UTC, so a UTC conversion would land on the previous day
	orig := time.Local
	time.Local = time.FixedZone("UTC+9", 9*60*60)
	t.Cleanup(func() { time.Local = orig })

	p, photosDir := newTestProcessor(t, 100)
	writeExifJPEG(t, photosDir, "dated.jpg", "2023:05:01 00:30:00")

	photo := models.Photo{ID: 1, Filename: "dated.jpg"}
	changed, err := p.FillMetadata(&photo)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "2023-05-01", photo.Date)
	assert.Equal(t, "4x4", photo.Resolution)
	assert.Equal(t, "May 1, 2023", photo.DisplayDate())
}
