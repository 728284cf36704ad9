// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package icon decodes application icons and renders them as terminal
// half-block art.
package icon

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // registers the PNG decoder
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp" // registers the BMP decoder
	xdraw "golang.org/x/image/draw"
)

const (
	upperHalf = "▀"
	lowerHalf = "▄"
)

// Icon is a decoded application image, or the built-in placeholder.
type Icon struct {
	img      image.Image
	fallback bool
}

// Load decodes a BMP or PNG file.
func Load(path string) (Icon, error) {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return Icon{}, fmt.Errorf("failed to open icon: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	return Decode(file)
}

// Decode reads a BMP or PNG image.
func Decode(r io.Reader) (Icon, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Icon{}, fmt.Errorf("failed to decode icon: %w", err)
	}

	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return Icon{}, fmt.Errorf("failed to decode icon: empty image")
	}

	return Icon{img: img}, nil
}

// IsDefault reports whether this is the built-in placeholder.
func (i Icon) IsDefault() bool {
	return i.fallback || i.img == nil
}

// Image returns the underlying image, drawing the placeholder when unset.
func (i Icon) Image() image.Image {
	if i.img == nil {
		return Default().img
	}

	return i.img
}

// Bounds returns the image size in pixels.
func (i Icon) Bounds() image.Rectangle {
	return i.Image().Bounds()
}

// Scale resizes the image to w×h pixels.
func (i Icon) Scale(w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), i.Image(), i.Image().Bounds(), xdraw.Over, nil)

	return dst
}

// Render draws the icon into cols×rows terminal cells. Each cell shows two
// vertically stacked pixels using half-block glyphs; transparent pixels
// leave the terminal background visible.
func (i Icon) Render(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	pixels := i.Scale(cols, rows*2)
	lines := make([]string, rows)

	for row := range rows {
		var b strings.Builder

		for col := range cols {
			top := pixels.NRGBAAt(col, row*2)
			bottom := pixels.NRGBAAt(col, row*2+1)
			b.WriteString(cell(top, bottom))
		}

		lines[row] = b.String()
	}

	return strings.Join(lines, "\n")
}

func cell(top, bottom color.NRGBA) string {
	topOpaque := top.A >= 0x80
	bottomOpaque := bottom.A >= 0x80

	switch {
	case topOpaque && bottomOpaque:
		return lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom)).Render(upperHalf)
	case topOpaque:
		return lipgloss.NewStyle().Foreground(hex(top)).Render(upperHalf)
	case bottomOpaque:
		return lipgloss.NewStyle().Foreground(hex(bottom)).Render(lowerHalf)
	default:
		return " "
	}
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
