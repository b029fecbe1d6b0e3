package resize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"imgutil/internal/batch"
	"imgutil/internal/codec"
	"imgutil/internal/fileutil"
	"imgutil/internal/logging"
	"imgutil/internal/services"
)

// Apply resizes img according to opts.
func Apply(img image.Image, opts Options) (image.Image, error) {
	filter, err := ParseFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	bg, err := ParseBackground(opts.Background)
	if err != nil {
		return nil, err
	}
	return apply(img, opts, filter, bg)
}

func apply(img image.Image, opts Options, filter imaging.ResampleFilter, bg color.NRGBA) (image.Image, error) {
	bounds := img.Bounds()
	mode := opts.EffectiveMode()
	size, err := CalculateSize(bounds.Dx(), bounds.Dy(), opts.Width, opts.Height, mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeCrop:
		return imaging.Fill(img, size.CanvasWidth, size.CanvasHeight, imaging.Center, filter), nil
	case ModePad, ModeFill:
		content := img
		if size.ContentWidth != bounds.Dx() || size.ContentHeight != bounds.Dy() {
			content = imaging.Resize(img, size.ContentWidth, size.ContentHeight, filter)
		}
		canvas := imaging.New(size.CanvasWidth, size.CanvasHeight, bg)
		return imaging.PasteCenter(canvas, content), nil
	default:
		return imaging.Resize(img, size.ContentWidth, size.ContentHeight, filter), nil
	}
}

// Resizer builds batch jobs that resize files into a destination directory.
type Resizer struct {
	codec  *codec.Codec
	opts   Options
	filter imaging.ResampleFilter
	bg     color.NRGBA
	logger *slog.Logger
}

// New validates opts and returns a resizer.
func New(c *codec.Codec, opts Options, logger *slog.Logger) (*Resizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	filter, _ := ParseFilter(opts.Filter)
	bg, _ := ParseBackground(opts.Background)
	return &Resizer{
		codec:  c,
		opts:   opts,
		filter: filter,
		bg:     bg,
		logger: logging.NewComponentLogger(logger, "resize"),
	}, nil
}

// Job returns the per-file batch job for items. Output keeps the source name
// and format; when a recursive batch holds the same name in two directories
// only the first in discovery order is written. With Move set the source is
// deleted after a successful write, and a failed delete fails the file.
func (r *Resizer) Job(destinationDir string, items []batch.Item) batch.Job {
	output := func(item batch.Item) string {
		return filepath.Join(destinationDir, filepath.Base(item.Source))
	}
	claims := batch.ClaimDestinations(items, output)
	return func(ctx context.Context, item batch.Item) (batch.Result, error) {
		result := batch.Result{Destination: output(item)}
		if err := claims.Check("resize", item, result.Destination); err != nil {
			return result, err
		}

		if !r.opts.Overwrite {
			exists, err := fileutil.Exists(result.Destination)
			if err != nil {
				return result, err
			}
			if exists {
				return result, services.Wrap(services.ErrValidation, "resize", "write",
					fmt.Sprintf("%s already exists", filepath.Base(result.Destination)), nil)
			}
		}

		info, err := os.Stat(item.Source)
		if err != nil {
			return result, fmt.Errorf("stat source: %w", err)
		}
		result.InputBytes = info.Size()

		img, format, err := r.codec.Decode(ctx, item.Source)
		if err != nil {
			return result, err
		}
		bg := r.bg
		if bg.A == 0 && !keepsAlpha(format) {
			bg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		resized, err := apply(img, r.opts, r.filter, bg)
		if err != nil {
			return result, err
		}
		err = r.codec.Encode(ctx, resized, result.Destination, codec.EncodeOptions{
			Format:    format,
			Quality:   r.opts.Quality,
			AVIF:      r.opts.AVIF,
			NoClobber: !r.opts.Overwrite,
		})
		if errors.Is(err, fs.ErrExist) {
			return result, services.Wrap(services.ErrValidation, "resize", "write",
				fmt.Sprintf("%s already exists", filepath.Base(result.Destination)), nil)
		}
		if err != nil {
			return result, err
		}
		if out, err := os.Stat(result.Destination); err == nil {
			result.OutputBytes = out.Size()
		}

		if r.opts.Move {
			if err := os.Remove(item.Source); err != nil && !errors.Is(err, os.ErrNotExist) {
				logging.WarnWithContext(logging.WithContext(ctx, r.logger), "source not deleted after resize", "move_cleanup_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions on the source directory"),
					logging.String(logging.FieldImpact, "resized copy written; original still present"),
				)
				return result, fmt.Errorf("failed to delete original file %s: %w", item.Source, err)
			}
		}
		return result, nil
	}
}

func keepsAlpha(f codec.Format) bool {
	switch f {
	case codec.JPEG, codec.BMP:
		return false
	default:
		return true
	}
}
