package assets

import (
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for inbox files
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/squaremeter/squarelog/internal/errors"
)

// Rendition widths and JPEG qualities.
const (
	thumbWidth   = 300
	webWidth     = 1200
	thumbQuality = 90
	webQuality   = 92
	fullQuality  = 95
)

// RenditionPaths are the destination files for one processed image.
type RenditionPaths struct {
	Thumb string
	Web   string
	Full  string
}

// Processor turns an input image into the catalog renditions.
type Processor interface {
	Process(inputPath string, dest RenditionPaths) error
}

// JPEGProcessor decodes JPEG or PNG input and writes three JPEG renditions:
// a thumbnail capped at 300px wide, a web copy capped at 1200px, and a
// full-size copy. Images narrower than a cap are kept at original size.
type JPEGProcessor struct{}

func (p *JPEGProcessor) Process(inputPath string, dest RenditionPaths) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			Context("file", inputPath).
			Build()
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return errors.New(err).
			Component("assets").
			Category(errors.CategoryImageAsset).
			Context("file", inputPath).
			Build()
	}

	if err := writeJPEG(dest.Thumb, scaleToWidth(src, thumbWidth), thumbQuality); err != nil {
		return err
	}
	if err := writeJPEG(dest.Web, scaleToWidth(src, webWidth), webQuality); err != nil {
		return err
	}
	return writeJPEG(dest.Full, src, fullQuality)
}

// scaleToWidth downscales an image to the target width preserving aspect
// ratio. Images at or below the target are returned unchanged.
func scaleToWidth(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= width {
		return src
	}
	height := bounds.Dy() * width / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("assets").
			Category(errors.CategoryFileIO).
			Context("file", path).
			Build()
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return errors.New(err).
			Component("assets").
			Category(errors.CategoryImageAsset).
			Context("file", path).
			Build()
	}
	return nil
}
