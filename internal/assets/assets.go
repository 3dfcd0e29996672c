// Package assets manages the image catalog: rendition generation for new
// sightings, letter assignment, deletion, and the optional remote mirror.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/logging"
	"github.com/squaremeter/squarelog/internal/model"
)

// Sizes are the rendition directories under the catalog, in generation order.
var Sizes = []string{"thumb", "web", "full"}

var (
	assetsLogger   *slog.Logger
	assetsLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	assetsLogger, _, err = logging.NewFileLogger("logs/assets.log", "assets", assetsLevelVar)
	if err != nil || assetsLogger == nil {
		assetsLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// RemoteStore mirrors catalog files to remote storage. Keys are
// "{size}/{filename}". Implementations must be safe to call sequentially.
type RemoteStore interface {
	Upload(ctx context.Context, localPath, key string) error
	Remove(ctx context.Context, key string) error
}

// Manager ingests and removes sighting images.
type Manager struct {
	catalogDir string
	processor  Processor
	mirror     RemoteStore // nil when mirroring is disabled
	logger     *slog.Logger
}

// NewManager creates a manager over the configured catalog directory. A nil
// mirror disables remote mirroring.
func NewManager(settings *conf.Settings, processor Processor, mirror RemoteStore) *Manager {
	if processor == nil {
		processor = &JPEGProcessor{}
	}
	return &Manager{
		catalogDir: settings.CatalogDir,
		processor:  processor,
		mirror:     mirror,
		logger:     assetsLogger,
	}
}

// NewConfiguredManager creates a manager with the default processor and the
// SFTP mirror when one is configured.
func NewConfiguredManager(settings *conf.Settings) (*Manager, error) {
	mirror, err := NewSFTPMirror(settings)
	if err != nil {
		return nil, err
	}
	if mirror == nil {
		return NewManager(settings, nil, nil), nil
	}
	return NewManager(settings, nil, mirror), nil
}

// NextLetter returns the letter for the next image attached to a sighting:
// "a" for the first, then one past the highest letter in use.
func NextLetter(sighting *model.Sighting) string {
	if len(sighting.Images) == 0 {
		return "a"
	}
	highest := byte(0)
	for _, img := range sighting.Images {
		letter := imageLetter(img.Filename)
		if letter > highest {
			highest = letter
		}
	}
	if highest == 0 {
		return "a"
	}
	return string(highest + 1)
}

// imageLetter extracts the letter suffix from a {id}-{letter}.jpg filename.
func imageLetter(filename string) byte {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	idx := strings.LastIndex(base, "-")
	if idx < 0 || idx+1 >= len(base) {
		return 0
	}
	return base[idx+1]
}

// Ingest processes an input image into the three catalog renditions and
// returns the catalog filename. When a mirror is configured each rendition is
// uploaded as well; mirror failures are logged, not fatal, since the local
// catalog stays authoritative.
func (m *Manager) Ingest(ctx context.Context, inputPath, sightingID, letter string) (string, error) {
	filename := fmt.Sprintf("%s-%s.jpg", sightingID, letter)

	for _, size := range Sizes {
		if err := os.MkdirAll(filepath.Join(m.catalogDir, size), 0o755); err != nil {
			return "", errors.New(err).
				Component("assets").
				Category(errors.CategoryFileIO).
				Context("dir", filepath.Join(m.catalogDir, size)).
				Build()
		}
	}

	renditions := RenditionPaths{
		Thumb: filepath.Join(m.catalogDir, "thumb", filename),
		Web:   filepath.Join(m.catalogDir, "web", filename),
		Full:  filepath.Join(m.catalogDir, "full", filename),
	}
	if err := m.processor.Process(inputPath, renditions); err != nil {
		return "", err
	}

	if m.mirror != nil {
		for _, size := range Sizes {
			localPath := filepath.Join(m.catalogDir, size, filename)
			key := size + "/" + filename
			if err := m.mirror.Upload(ctx, localPath, key); err != nil {
				m.logger.Warn("mirror upload failed", "key", key, "error", err)
			}
		}
	}

	return filename, nil
}

// RemovalReport lists what DeleteSighting managed to remove and what failed.
type RemovalReport struct {
	Removed  []string // "{size}/{filename}" entries removed locally
	Mirrored []string // mirror keys removed
	Failures []error
}

// DeleteSighting removes every rendition of a sighting's images, best effort:
// each file is attempted independently and failures are collected rather than
// aborting, so a missing thumb cannot strand the web and full copies.
func (m *Manager) DeleteSighting(ctx context.Context, images []model.Image) *RemovalReport {
	report := &RemovalReport{}
	for _, img := range images {
		for _, size := range Sizes {
			localPath := filepath.Join(m.catalogDir, size, img.Filename)
			key := size + "/" + img.Filename

			switch err := os.Remove(localPath); {
			case err == nil:
				report.Removed = append(report.Removed, key)
			case os.IsNotExist(err):
				// Nothing to remove.
			default:
				report.Failures = append(report.Failures, errors.New(err).
					Component("assets").
					Category(errors.CategoryImageAsset).
					Context("file", localPath).
					Build())
			}

			if m.mirror != nil {
				if err := m.mirror.Remove(ctx, key); err != nil {
					report.Failures = append(report.Failures, err)
				} else {
					report.Mirrored = append(report.Mirrored, key)
				}
			}
		}
	}
	return report
}

// CatalogPath returns the local path of a rendition.
func (m *Manager) CatalogPath(size, filename string) string {
	return filepath.Join(m.catalogDir, size, filename)
}
