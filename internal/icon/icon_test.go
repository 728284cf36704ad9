// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}

	return img
}

func TestDefaultIcon(t *testing.T) {
	t.Parallel()

	icon := Default()

	assert.True(t, icon.IsDefault())
	assert.Equal(t, image.Rect(0, 0, DefaultSize, DefaultSize), icon.Bounds())

	_, _, _, a := icon.Image().At(0, 0).RGBA()
	assert.Zero(t, a, "corners are transparent")

	_, _, _, a = icon.Image().At(1, 0).RGBA()
	assert.NotZero(t, a, "frame is opaque")

	assert.Same(t, Default().Image(), icon.Image())
	assert.True(t, Icon{}.IsDefault())
}

func TestDecodeBMP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solid(8, 8, color.NRGBA{R: 255, A: 255})))

	icon, err := Decode(&buf)
	require.NoError(t, err)

	assert.False(t, icon.IsDefault())
	assert.Equal(t, 8, icon.Bounds().Dx())
}

func TestLoadPNG(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "icon.png")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, Default().Image()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	icon, err := Load(path)
	require.NoError(t, err)
	assert.False(t, icon.IsDefault())
	assert.Equal(t, DefaultSize, icon.Bounds().Dy())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("not an image"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.bmp"))
	require.Error(t, err)
}

func TestRenderDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cols int
		rows int
	}{
		{name: "small", cols: 4, rows: 2},
		{name: "grid slot", cols: 8, rows: 4},
		{name: "single cell", cols: 1, rows: 1},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			art := Default().Render(testCase.cols, testCase.rows)
			lines := strings.Split(art, "\n")

			require.Len(t, lines, testCase.rows)

			for _, line := range lines {
				assert.Equal(t, testCase.cols, lipgloss.Width(line))
			}
		})
	}

	assert.Empty(t, Default().Render(0, 3))
}

func TestRenderTransparentIsBlank(t *testing.T) {
	t.Parallel()

	icon := Icon{img: solid(4, 4, color.NRGBA{})}

	assert.Equal(t, "    \n    ", icon.Render(4, 2))
}

func TestCellGlyphs(t *testing.T) {
	t.Parallel()

	opaque := color.NRGBA{R: 10, A: 255}
	transparent := color.NRGBA{}

	assert.Contains(t, cell(opaque, opaque), upperHalf)
	assert.Contains(t, cell(opaque, transparent), upperHalf)
	assert.Contains(t, cell(transparent, opaque), lowerHalf)
	assert.Equal(t, " ", cell(transparent, transparent))
}
