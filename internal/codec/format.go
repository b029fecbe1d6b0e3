package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"imgutil/internal/services"
)

// Format names an image container format.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WebP Format = "webp"
	AVIF Format = "avif"
	GIF  Format = "gif"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

var formatAliases = map[string]Format{
	"jpeg": JPEG,
	"jpg":  JPEG,
	"jpe":  JPEG,
	"png":  PNG,
	"webp": WebP,
	"avif": AVIF,
	"gif":  GIF,
	"tiff": TIFF,
	"tif":  TIFF,
	"bmp":  BMP,
}

var formatExtensions = map[Format]string{
	JPEG: ".jpg",
	PNG:  ".png",
	WebP: ".webp",
	AVIF: ".avif",
	GIF:  ".gif",
	TIFF: ".tiff",
	BMP:  ".bmp",
}

// Formats lists every supported format in display order.
func Formats() []Format {
	return []Format{JPEG, PNG, WebP, AVIF, GIF, TIFF, BMP}
}

// ParseFormat resolves a format name or extension (with or without the dot).
func ParseFormat(value string) (Format, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return "", services.Wrap(services.ErrValidation, "codec", "parse format", fmt.Sprintf("unsupported image format %q", value), nil)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", services.Wrap(services.ErrValidation, "codec", "detect format", fmt.Sprintf("%s has no extension", filepath.Base(path)), nil)
	}
	return ParseFormat(ext)
}

// Extension returns the canonical file extension including the dot.
func (f Format) Extension() string {
	if ext, ok := formatExtensions[f]; ok {
		return ext
	}
	return "." + string(f)
}

func (f Format) String() string { return string(f) }

// SameExtension reports whether ext already names f, so a.jpeg and a.jpg
// are both treated as JPEG files.
func (f Format) SameExtension(ext string) bool {
	parsed, err := ParseFormat(ext)
	return err == nil && parsed == f
}

func (f Format) imagingFormat() (imaging.Format, bool) {
	switch f {
	case JPEG:
		return imaging.JPEG, true
	case PNG:
		return imaging.PNG, true
	case GIF:
		return imaging.GIF, true
	case TIFF:
		return imaging.TIFF, true
	case BMP:
		return imaging.BMP, true
	default:
		return 0, false
	}
}
