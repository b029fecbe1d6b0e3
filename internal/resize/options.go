package resize

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"imgutil/internal/ffmpeg"
	"imgutil/internal/services"
)

// Options controls a resize batch.
type Options struct {
	Width      int
	Height     int
	Mode       Mode
	KeepAspect bool
	Filter     string
	Background string
	Quality    int
	Move       bool
	Overwrite  bool
	AVIF       ffmpeg.AVIFOptions
}

// EffectiveMode applies KeepAspect: without it every mode stretches.
func (o Options) EffectiveMode() Mode {
	if !o.KeepAspect {
		return ModeStretch
	}
	return ParseMode(string(o.Mode))
}

// Validate checks dimensions, filter, and background before any file is read.
func (o Options) Validate() error {
	if o.Width < 0 || o.Height < 0 || (o.Width == 0 && o.Height == 0) {
		return services.Wrap(services.ErrValidation, "resize", "options", "width or height must be positive", nil)
	}
	if _, err := ParseFilter(o.Filter); err != nil {
		return err
	}
	if _, err := ParseBackground(o.Background); err != nil {
		return err
	}
	return nil
}

var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// ParseFilter resolves a resampling filter name. Empty selects lanczos.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "lanczos"
	}
	f, ok := filters[key]
	if !ok {
		return imaging.ResampleFilter{}, services.Wrap(services.ErrValidation, "resize", "filter", fmt.Sprintf("unknown filter %q", name), nil)
	}
	return f, nil
}

var namedColors = map[string]color.NRGBA{
	"transparent": {},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"black":       {A: 255},
}

// ParseBackground accepts transparent, white, black, #rrggbb, or #rrggbbaa.
func ParseBackground(value string) (color.NRGBA, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return color.NRGBA{}, nil
	}
	if c, ok := namedColors[key]; ok {
		return c, nil
	}
	raw := strings.TrimPrefix(key, "#")
	if len(raw) == 6 {
		raw += "ff"
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 4 {
		return color.NRGBA{}, services.Wrap(services.ErrValidation, "resize", "background", fmt.Sprintf("invalid colour %q", value), nil)
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}
