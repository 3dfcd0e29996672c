package assets

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/model"
)

func TestNextLetter(t *testing.T) {
	sighting := &model.Sighting{}
	assert.Equal(t, "a", NextLetter(sighting))

	sighting.Images = []model.Image{{Filename: "20260314-001-a.jpg"}}
	assert.Equal(t, "b", NextLetter(sighting))

	sighting.Images = append(sighting.Images,
		model.Image{Filename: "20260314-001-c.jpg"},
		model.Image{Filename: "20260314-001-b.jpg"},
	)
	assert.Equal(t, "d", NextLetter(sighting))
}

func writeTestJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
}

func decodeWidth(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width
}

func TestIngestCreatesRenditions(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.jpg")
	writeTestJPEG(t, inputPath, 2000, 1500)

	catalogDir := filepath.Join(dir, "catalog")
	manager := NewManager(&conf.Settings{CatalogDir: catalogDir}, nil, nil)

	filename, err := manager.Ingest(context.Background(), inputPath, "20260314-001", "a")
	require.NoError(t, err)
	assert.Equal(t, "20260314-001-a.jpg", filename)

	assert.LessOrEqual(t, decodeWidth(t, manager.CatalogPath("thumb", filename)), 300)
	assert.LessOrEqual(t, decodeWidth(t, manager.CatalogPath("web", filename)), 1200)
	assert.Equal(t, 2000, decodeWidth(t, manager.CatalogPath("full", filename)))
}

func TestIngestSmallImageNotUpscaled(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "small.jpg")
	writeTestJPEG(t, inputPath, 200, 150)

	manager := NewManager(&conf.Settings{CatalogDir: filepath.Join(dir, "catalog")}, nil, nil)

	filename, err := manager.Ingest(context.Background(), inputPath, "20260314-001", "a")
	require.NoError(t, err)

	assert.Equal(t, 200, decodeWidth(t, manager.CatalogPath("thumb", filename)))
	assert.Equal(t, 200, decodeWidth(t, manager.CatalogPath("web", filename)))
}

func TestDeleteSightingBestEffort(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(&conf.Settings{CatalogDir: dir}, nil, nil)

	// Only the web rendition exists; thumb and full are already gone.
	filename := "20260314-001-a.jpg"
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "web"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web", filename), []byte("jpg"), 0o644))

	report := manager.DeleteSighting(context.Background(), []model.Image{{Filename: filename}})

	assert.Equal(t, []string{"web/" + filename}, report.Removed)
	assert.Empty(t, report.Failures)
	assert.NoFileExists(t, filepath.Join(dir, "web", filename))
}

func TestCaptureDateMissingEXIF(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "plain.jpg")
	writeTestJPEG(t, inputPath, 100, 100)

	// A plain encoded JPEG has no EXIF block.
	_, ok := CaptureDate(inputPath, time.UTC)
	assert.False(t, ok)
}
