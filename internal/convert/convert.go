package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"imgutil/internal/batch"
	"imgutil/internal/codec"
	"imgutil/internal/ffmpeg"
	"imgutil/internal/fileutil"
	"imgutil/internal/logging"
	"imgutil/internal/services"
)

// Options controls a conversion batch.
type Options struct {
	Format    codec.Format
	Quality   int
	Lossless  bool
	Move      bool
	Overwrite bool
	AVIF      ffmpeg.AVIFOptions
}

// Validate checks the target format and quality.
func (o Options) Validate() error {
	if o.Format == "" {
		return services.Wrap(services.ErrValidation, "convert", "options", "target format is required", nil)
	}
	if _, err := codec.ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.Quality < 0 || o.Quality > 100 {
		return services.Wrap(services.ErrValidation, "convert", "options", fmt.Sprintf("quality %d outside 1-100", o.Quality), nil)
	}
	return nil
}

// Converter builds batch jobs that convert files into one target format.
type Converter struct {
	codec  *codec.Codec
	opts   Options
	logger *slog.Logger
}

// New validates opts and returns a converter.
func New(c *codec.Codec, opts Options, logger *slog.Logger) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Quality == 0 {
		opts.Quality = codec.DefaultQuality
	}
	return &Converter{codec: c, opts: opts, logger: logging.NewComponentLogger(logger, "convert")}, nil
}

// OutputPath returns where source is written inside destinationDir.
func (c *Converter) OutputPath(source, destinationDir string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(destinationDir, stem+c.opts.Format.Extension())
}

// Job returns the per-file batch job for items. Converting a file onto itself
// fails that file, as does every item after the first whose output name
// collides (a.png and a.gif both becoming a.jpg). With Move set the source is
// removed after a successful write.
func (c *Converter) Job(destinationDir string, items []batch.Item) batch.Job {
	claims := batch.ClaimDestinations(items, func(item batch.Item) string {
		return c.OutputPath(item.Source, destinationDir)
	})
	return func(ctx context.Context, item batch.Item) (batch.Result, error) {
		result := batch.Result{Destination: c.OutputPath(item.Source, destinationDir)}
		if err := claims.Check("convert", item, result.Destination); err != nil {
			return result, err
		}

		if same, err := samePath(item.Source, result.Destination); err != nil {
			return result, err
		} else if same {
			return result, services.Wrap(services.ErrValidation, "convert", "plan",
				fmt.Sprintf("%s is already %s", filepath.Base(item.Source), c.opts.Format), nil)
		}
		if !c.opts.Overwrite {
			exists, err := fileutil.Exists(result.Destination)
			if err != nil {
				return result, err
			}
			if exists {
				return result, services.Wrap(services.ErrValidation, "convert", "write",
					fmt.Sprintf("%s already exists", filepath.Base(result.Destination)), nil)
			}
		}

		info, err := os.Stat(item.Source)
		if err != nil {
			return result, fmt.Errorf("stat source: %w", err)
		}
		result.InputBytes = info.Size()

		img, _, err := c.codec.Decode(ctx, item.Source)
		if err != nil {
			return result, err
		}
		err = c.codec.Encode(ctx, img, result.Destination, codec.EncodeOptions{
			Format:    c.opts.Format,
			Quality:   c.opts.Quality,
			Lossless:  c.opts.Lossless,
			AVIF:      c.opts.AVIF,
			NoClobber: !c.opts.Overwrite,
		})
		if errors.Is(err, fs.ErrExist) {
			return result, services.Wrap(services.ErrValidation, "convert", "write",
				fmt.Sprintf("%s already exists", filepath.Base(result.Destination)), nil)
		}
		if err != nil {
			return result, err
		}
		if out, err := os.Stat(result.Destination); err == nil {
			result.OutputBytes = out.Size()
		}

		if c.opts.Move {
			if err := os.Remove(item.Source); err != nil && !errors.Is(err, os.ErrNotExist) {
				logging.WarnWithContext(logging.WithContext(ctx, c.logger), "source not deleted after convert", "move_cleanup_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions on the source directory"),
					logging.String(logging.FieldImpact, "converted copy written; original still present"),
				)
				return result, fmt.Errorf("failed to delete original file %s: %w", item.Source, err)
			}
		}
		return result, nil
	}
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return filepath.Clean(absA) == filepath.Clean(absB), nil
}
