package resize

import (
	"fmt"
	"math"
	"strings"

	"imgutil/internal/services"
)

// Mode selects how source dimensions map onto the requested box.
type Mode string

const (
	ModeStretch Mode = "stretch"
	ModeCrop    Mode = "crop"
	ModePad     Mode = "pad"
	ModeFill    Mode = "fill"
	ModeMax     Mode = "max"
	ModeMin     Mode = "min"
)

// ParseMode maps a mode name to a Mode. Unknown names fall back to max.
func ParseMode(value string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(value))); m {
	case ModeStretch, ModeCrop, ModePad, ModeFill, ModeMax, ModeMin:
		return m
	default:
		return ModeMax
	}
}

// Size is the computed output geometry. Canvas is the final image size and
// Content the size the source is scaled to before being placed on it.
type Size struct {
	CanvasWidth   int
	CanvasHeight  int
	ContentWidth  int
	ContentHeight int
}

// CalculateSize computes output geometry for a srcW x srcH image resized into
// width x height with mode. One of width or height may be 0 and is derived
// from the source aspect ratio.
func CalculateSize(srcW, srcH, width, height int, mode Mode) (Size, error) {
	if srcW <= 0 || srcH <= 0 {
		return Size{}, services.Wrap(services.ErrValidation, "resize", "size", fmt.Sprintf("invalid source dimensions %dx%d", srcW, srcH), nil)
	}
	if width < 0 || height < 0 || (width == 0 && height == 0) {
		return Size{}, services.Wrap(services.ErrValidation, "resize", "size", fmt.Sprintf("invalid target dimensions %dx%d", width, height), nil)
	}
	if width == 0 {
		width = scale(srcW, float64(height)/float64(srcH))
	}
	if height == 0 {
		height = scale(srcH, float64(width)/float64(srcW))
	}

	ratioW := float64(width) / float64(srcW)
	ratioH := float64(height) / float64(srcH)
	fit := math.Min(ratioW, ratioH)
	cover := math.Max(ratioW, ratioH)

	var s Size
	switch ParseMode(string(mode)) {
	case ModeStretch:
		s = Size{width, height, width, height}
	case ModeMin:
		w, h := scale(srcW, cover), scale(srcH, cover)
		s = Size{w, h, w, h}
	case ModeCrop:
		s = Size{width, height, scale(srcW, cover), scale(srcH, cover)}
	case ModePad:
		s = Size{width, height, scale(srcW, fit), scale(srcH, fit)}
	case ModeFill:
		r := math.Min(fit, 1)
		s = Size{width, height, scale(srcW, r), scale(srcH, r)}
	default:
		w, h := scale(srcW, fit), scale(srcH, fit)
		s = Size{w, h, w, h}
	}
	return s, nil
}

func scale(v int, ratio float64) int {
	out := int(math.Round(float64(v) * ratio))
	if out < 1 {
		return 1
	}
	return out
}
