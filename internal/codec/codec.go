package codec

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// Registers the WebP decoder with image.Decode, which imaging.Open uses.
	_ "golang.org/x/image/webp"

	"imgutil/internal/ffmpeg"
	"imgutil/internal/services"
)

const (
	DefaultQuality = 85
	webpLossless   = 6
)

// EncodeOptions controls output encoding.
type EncodeOptions struct {
	Format   Format
	Quality  int
	Lossless bool
	AVIF     ffmpeg.AVIFOptions

	// NoClobber fails with fs.ErrExist instead of replacing an existing file.
	NoClobber bool
}

// Codec decodes and encodes images. The ffmpeg runner is only needed for AVIF.
type Codec struct {
	ffmpeg *ffmpeg.Runner
}

// New constructs a codec. runner may be nil when AVIF is not used.
func New(runner *ffmpeg.Runner) *Codec {
	return &Codec{ffmpeg: runner}
}

// Decode reads path into memory, applying EXIF orientation for formats that
// carry it.
func (c *Codec) Decode(ctx context.Context, path string) (image.Image, Format, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, format, err
	}
	if format == AVIF {
		img, err := c.decodeAVIF(ctx, path)
		return img, format, err
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// Encode writes img to path. The output only appears at path once fully
// written.
func (c *Codec) Encode(ctx context.Context, img image.Image, path string, opts EncodeOptions) error {
	if img == nil {
		return services.Wrap(services.ErrValidation, "codec", "encode", "nil image", nil)
	}
	format := opts.Format
	if format == "" {
		detected, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		format = detected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if format == AVIF {
		return c.encodeAVIF(ctx, img, path, opts)
	}
	return writeAtomic(path, opts.NoClobber, func(w io.Writer) error {
		return encodeTo(w, img, format, opts)
	})
}

func encodeTo(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if format == WebP {
		var (
			options *encoder.Options
			err     error
		)
		if opts.Lossless {
			options, err = encoder.NewLosslessEncoderOptions(encoder.PresetDefault, webpLossless)
		} else {
			options, err = encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		}
		if err != nil {
			return fmt.Errorf("webp encoder options: %w", err)
		}
		if err := webp.Encode(w, img, options); err != nil {
			return fmt.Errorf("encode webp: %w", err)
		}
		return nil
	}

	imgFormat, ok := format.imagingFormat()
	if !ok {
		return services.Wrap(services.ErrValidation, "codec", "encode", fmt.Sprintf("no encoder for %s", format), nil)
	}
	if err := imaging.Encode(w, img, imgFormat,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

func (c *Codec) decodeAVIF(ctx context.Context, path string) (image.Image, error) {
	if c == nil || c.ffmpeg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "codec", "decode avif", "ffmpeg is not configured", nil)
	}
	tmpDir, err := os.MkdirTemp("", "imgutil-avif-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pngPath := filepath.Join(tmpDir, "frame.png")
	if err := c.ffmpeg.DecodeToPNG(ctx, path, pngPath); err != nil {
		return nil, err
	}
	img, err := imaging.Open(pngPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (c *Codec) encodeAVIF(ctx context.Context, img image.Image, path string, opts EncodeOptions) error {
	if c == nil || c.ffmpeg == nil {
		return services.Wrap(services.ErrConfiguration, "codec", "encode avif", "ffmpeg is not configured", nil)
	}
	tmpDir, err := os.MkdirTemp("", "imgutil-avif-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pngPath := filepath.Join(tmpDir, "frame.png")
	if err := imaging.Save(img, pngPath); err != nil {
		return fmt.Errorf("stage avif input: %w", err)
	}

	staged, err := stagingPath(path)
	if err != nil {
		return err
	}
	if err := c.ffmpeg.EncodeAVIF(ctx, pngPath, staged, opts.AVIF); err != nil {
		_ = os.Remove(staged)
		return err
	}
	if err := finalize(staged, path, opts.NoClobber); err != nil {
		_ = os.Remove(staged)
		return err
	}
	return nil
}

// writeAtomic streams into a temp file in the destination directory and
// moves it to path on success.
func writeAtomic(path string, noClobber bool, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".imgutil-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := finalize(tmpName, path, noClobber); err != nil {
		cleanup()
		return err
	}
	return nil
}

// finalize moves a finished temp file to path. With noClobber the file is
// hard-linked into place, so an existing path is reported as fs.ErrExist
// rather than replaced. Filesystems without hard links fall back to a stat
// check before the rename.
func finalize(tmpName, path string, noClobber bool) error {
	if !noClobber {
		if err := os.Rename(tmpName, path); err != nil {
			return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	err := os.Link(tmpName, path)
	switch {
	case err == nil:
		_ = os.Remove(tmpName)
		return nil
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), fs.ErrExist)
	}
	if _, statErr := os.Lstat(path); statErr == nil {
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), fs.ErrExist)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}

// stagingPath reserves a temp file name next to path for tools that write by name.
func stagingPath(path string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".imgutil-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("create temp output: %w", err)
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp output: %w", err)
	}
	return name, nil
}
