// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package icon

import (
	"image"
	"image/color"
	"sync"
)

// DefaultSize is the edge length of the placeholder in pixels.
const DefaultSize = 16

var (
	defaultOnce sync.Once
	defaultImg  *image.Paletted

	defaultPalette = color.Palette{
		color.NRGBA{},                                   // transparent
		color.NRGBA{R: 0x7a, G: 0xa2, B: 0xf7, A: 0xff}, // frame
		color.NRGBA{R: 0x1a, G: 0x1b, B: 0x26, A: 0xff}, // body
		color.NRGBA{R: 0xbb, G: 0x9a, B: 0xf7, A: 0xff}, // lid
		color.NRGBA{R: 0xc0, G: 0xca, B: 0xf5, A: 0xff}, // arrow
	}
)

// Default returns the placeholder icon shown until a real one loads: a
// rounded frame around a jar with a download arrow.
func Default() Icon {
	defaultOnce.Do(func() {
		defaultImg = drawDefault()
	})

	return Icon{img: defaultImg, fallback: true}
}

func drawDefault() *image.Paletted {
	const n = DefaultSize

	img := image.NewPaletted(image.Rect(0, 0, n, n), defaultPalette)

	for y := range n {
		for x := range n {
			edge := x == 0 || y == 0 || x == n-1 || y == n-1
			corner := (x == 0 || x == n-1) && (y == 0 || y == n-1)

			switch {
			case corner:
				img.SetColorIndex(x, y, 0)
			case edge:
				img.SetColorIndex(x, y, 1)
			case y >= 3 && y <= 4 && x >= 4 && x <= n-5:
				img.SetColorIndex(x, y, 3)
			default:
				img.SetColorIndex(x, y, 2)
			}
		}
	}

	// Arrow shaft and head.
	mid := n / 2
	for y := 6; y <= 10; y++ {
		img.SetColorIndex(mid-1, y, 4)
		img.SetColorIndex(mid, y, 4)
	}

	for i := range 3 {
		y := 10 + i
		for x := mid - 3 + i; x <= mid+2-i; x++ {
			img.SetColorIndex(x, y, 4)
		}
	}

	return img
}
