package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Trim removes edges that match the background color, taken from the
// top-left pixel. fuzz is the tolerated color distance as a fraction of
// the full scale, 0 meaning an exact match. An image that is entirely
// background shrinks to a single pixel.
func Trim(img image.Image, fuzz float64) image.Image {
	src := imaging.Clone(img)
	b := src.Bounds()
	if b.Empty() {
		return src
	}
	bg := src.NRGBAAt(0, 0)

	isBackground := func(x, y int) bool {
		return colorDistance(bg, src.NRGBAAt(x, y)) <= fuzz
	}
	rowIsBackground := func(y, x0, x1 int) bool {
		for x := x0; x < x1; x++ {
			if !isBackground(x, y) {
				return false
			}
		}
		return true
	}
	colIsBackground := func(x, y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			if !isBackground(x, y) {
				return false
			}
		}
		return true
	}

	top, bottom := 0, b.Dy()
	for top < bottom && rowIsBackground(top, 0, b.Dx()) {
		top++
	}
	if top == bottom {
		return imaging.Crop(src, image.Rect(0, 0, 1, 1))
	}
	for bottom > top && rowIsBackground(bottom-1, 0, b.Dx()) {
		bottom--
	}
	left, right := 0, b.Dx()
	for left < right && colIsBackground(left, top, bottom) {
		left++
	}
	for right > left && colIsBackground(right-1, top, bottom) {
		right--
	}
	return imaging.Crop(src, image.Rect(left, top, right, bottom))
}

// colorDistance is the RGB distance between two colors scaled to [0,1],
// with fully transparent pixels matching each other whatever their color.
func colorDistance(a, b color.NRGBA) float64 {
	if a.A == 0 && b.A == 0 {
		return 0
	}
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	rgb := ca.DistanceRgb(cb) / math.Sqrt(3)
	alpha := math.Abs(float64(a.A)-float64(b.A)) / 255
	return math.Max(rgb, alpha)
}
