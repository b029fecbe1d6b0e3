package resize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSize(t *testing.T) {
	tests := []struct {
		name          string
		srcW, srcH    int
		width, height int
		mode          Mode
		want          Size
	}{
		{"stretch exact", 400, 200, 100, 100, ModeStretch, Size{100, 100, 100, 100}},
		{"stretch derives height", 400, 200, 100, 0, ModeStretch, Size{100, 50, 100, 50}},
		{"max fits inside", 400, 200, 100, 100, ModeMax, Size{100, 50, 100, 50}},
		{"max upscales", 100, 50, 400, 400, ModeMax, Size{400, 200, 400, 200}},
		{"min covers", 400, 200, 100, 100, ModeMin, Size{200, 100, 200, 100}},
		{"crop covers then crops", 400, 200, 100, 100, ModeCrop, Size{100, 100, 200, 100}},
		{"pad fits on canvas", 400, 200, 100, 100, ModePad, Size{100, 100, 100, 50}},
		{"pad upscales content", 50, 25, 100, 100, ModePad, Size{100, 100, 100, 50}},
		{"fill never upscales", 50, 25, 100, 100, ModeFill, Size{100, 100, 50, 25}},
		{"fill downscales like pad", 400, 200, 100, 100, ModeFill, Size{100, 100, 100, 50}},
		{"derived width", 400, 200, 0, 50, ModeMax, Size{100, 50, 100, 50}},
		{"tiny sides clamp to one", 1000, 1, 10, 10, ModeMax, Size{10, 1, 10, 1}},
		{"unknown mode behaves as max", 400, 200, 100, 100, Mode("zoom"), Size{100, 50, 100, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSize(tt.srcW, tt.srcH, tt.width, tt.height, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.CanvasWidth, 1)
			assert.GreaterOrEqual(t, got.CanvasHeight, 1)
		})
	}
}

func TestCalculateSizeRejectsInvalid(t *testing.T) {
	_, err := CalculateSize(100, 100, 0, 0, ModeMax)
	assert.Error(t, err)
	_, err = CalculateSize(0, 100, 10, 10, ModeMax)
	assert.Error(t, err)
	_, err = CalculateSize(100, 100, -1, 10, ModeMax)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeCrop, ParseMode(" CROP "))
	assert.Equal(t, ModeFill, ParseMode("fill"))
	assert.Equal(t, ModeMax, ParseMode(""))
	assert.Equal(t, ModeMax, ParseMode("bogus"))
}

func TestEffectiveModeWithoutAspect(t *testing.T) {
	assert.Equal(t, ModeStretch, Options{Mode: ModeCrop}.EffectiveMode())
	assert.Equal(t, ModeCrop, Options{Mode: ModeCrop, KeepAspect: true}.EffectiveMode())
}

func TestParseBackground(t *testing.T) {
	c, err := ParseBackground("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(255), c.A)

	c, err = ParseBackground("transparent")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), c.A)

	_, err = ParseBackground("#12")
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	_, err := ParseFilter("")
	require.NoError(t, err)
	_, err = ParseFilter("nearest")
	require.NoError(t, err)
	_, err = ParseFilter("bicubic")
	assert.Error(t, err)
}
