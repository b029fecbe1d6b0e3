package codec

import (
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"imgutil/internal/services"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// DateTaken returns the EXIF capture time of path. Files without EXIF data
// yield an error marked services.ErrNotFound.
func DateTaken(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, services.Wrap(services.ErrNotFound, "codec", "exif", "no exif data", err)
	}
	taken, err := x.DateTime()
	if err != nil {
		return time.Time{}, services.Wrap(services.ErrNotFound, "codec", "exif", "no capture date", err)
	}
	return taken, nil
}

// DateTakenOrModified prefers the EXIF capture time and falls back to the
// file modification time.
func DateTakenOrModified(path string) (time.Time, error) {
	if taken, err := DateTaken(path); err == nil {
		return taken, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}
