package assets

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureDate reads the EXIF DateTimeOriginal from an image, interpreted in
// the given timezone. The second return is false when the file has no usable
// EXIF date, in which case the caller prompts for one.
func CaptureDate(path string, timezone *time.Location) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	tag, err := meta.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, false
	}
	value, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}

	captured, err := time.ParseInLocation("2006:01:02 15:04:05", value, timezone)
	if err != nil {
		return time.Time{}, false
	}
	return captured, true
}
