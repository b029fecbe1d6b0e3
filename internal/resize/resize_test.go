package resize_test

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgutil/internal/batch"
	"imgutil/internal/codec"
	"imgutil/internal/resize"
)

func solid(w, h int, c color.Color) image.Image {
	return imaging.New(w, h, c)
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, imaging.Save(img, path))
}

func TestApplyPadCentresOnBackground(t *testing.T) {
	src := solid(40, 20, color.NRGBA{R: 255, A: 255})
	out, err := resize.Apply(src, resize.Options{Width: 20, Height: 20, Mode: resize.ModePad, KeepAspect: true, Background: "#0000ff"})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())

	top := color.NRGBAModel.Convert(out.At(10, 0)).(color.NRGBA)
	middle := color.NRGBAModel.Convert(out.At(10, 10)).(color.NRGBA)
	assert.Equal(t, uint8(255), top.B, "padding should use background")
	assert.Equal(t, uint8(255), middle.R, "content should be centred")
}

func TestApplyCropAndStretch(t *testing.T) {
	src := solid(400, 200, color.White)

	out, err := resize.Apply(src, resize.Options{Width: 100, Height: 100, Mode: resize.ModeCrop, KeepAspect: true})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 100, out.Bounds().Dy())

	out, err = resize.Apply(src, resize.Options{Width: 100, Height: 100, Mode: resize.ModeMax})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds(), "KeepAspect=false stretches")
}

func TestResizerJobWritesAndMoves(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	writeImage(t, filepath.Join(srcDir, "a.png"), solid(200, 100, color.White))
	writeImage(t, filepath.Join(srcDir, "b.jpg"), solid(100, 200, color.Black))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "broken.png"), []byte("not an image"), 0o644))

	items, err := batch.Discover(srcDir, batch.DiscoverOptions{})
	require.NoError(t, err)

	r, err := resize.New(codec.New(nil), resize.Options{Width: 50, Height: 50, Mode: resize.ModeMax, KeepAspect: true, Move: true}, nil)
	require.NoError(t, err)

	summary, err := batch.Run(context.Background(), items, r.Job(dstDir, items), batch.Options{Operation: batch.OperationResize, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "1 error(s) occurred", summary.Message())

	img, err := imaging.Open(filepath.Join(dstDir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())

	img, err = imaging.Open(filepath.Join(dstDir, "b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 25, img.Bounds().Dx())

	_, err = os.Stat(filepath.Join(srcDir, "a.png"))
	assert.True(t, os.IsNotExist(err), "moved source should be deleted")
	_, err = os.Stat(filepath.Join(srcDir, "broken.png"))
	assert.NoError(t, err, "failed source must stay")
}

func TestResizerRefusesExistingOutput(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	writeImage(t, filepath.Join(srcDir, "a.png"), solid(20, 20, color.White))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "a.png"), []byte("existing"), 0o644))

	items, err := batch.Discover(srcDir, batch.DiscoverOptions{})
	require.NoError(t, err)
	r, err := resize.New(codec.New(nil), resize.Options{Width: 10, KeepAspect: true}, nil)
	require.NoError(t, err)

	summary, err := batch.Run(context.Background(), items, r.Job(dstDir, items), batch.Options{Operation: batch.OperationResize})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	data, err := os.ReadFile(filepath.Join(dstDir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestResizerRecursiveSameNameWritesOnce(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(srcDir, sub), 0o755))
	}
	writeImage(t, filepath.Join(srcDir, "a", "photo.png"), solid(40, 40, color.White))
	writeImage(t, filepath.Join(srcDir, "b", "photo.png"), solid(60, 60, color.Black))

	items, err := batch.Discover(srcDir, batch.DiscoverOptions{Recursive: true})
	require.NoError(t, err)
	require.Len(t, items, 2)
	r, err := resize.New(codec.New(nil), resize.Options{Width: 20, KeepAspect: true, Move: true}, nil)
	require.NoError(t, err)

	summary, err := batch.Run(context.Background(), items, r.Job(dstDir, items), batch.Options{Operation: batch.OperationResize, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Errors()[0], "duplicates")

	_, err = os.Stat(filepath.Join(srcDir, "b", "photo.png"))
	assert.NoError(t, err, "second source left in place")
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := resize.New(codec.New(nil), resize.Options{}, nil)
	assert.Error(t, err)
	_, err = resize.New(codec.New(nil), resize.Options{Width: 10, Filter: "bicubic"}, nil)
	assert.Error(t, err)
}
