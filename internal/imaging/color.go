package imaging

import (
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// QuantumDepth is the per-channel precision of pixel values returned by Pixels.
const QuantumDepth = 16

// DefaultColors is the palette size Quantize uses when none is requested.
const DefaultColors = 5

// quantizeSample is the longest edge an image is reduced to before its
// colors are counted.
const quantizeSample = 196

// ParseColor reads a color given as a CSS/X11 name, "transparent", or hex
// in #rgb, #rrggbb or #rrggbbaa form (the '#' is optional). Empty yields nil.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	lower := strings.ToLower(s)
	switch lower {
	case "transparent", "none":
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(lower, "#")
	switch len(hex) {
	case 3, 6:
		c, err := colorful.Hex("#" + hex)
		if err != nil {
			return nil, ErrInvalidColor
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, ErrInvalidColor
		}
		return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}
	return nil, ErrInvalidColor
}

// Color is a palette entry reported by Quantize.
type Color struct {
	R   uint8  `json:"r"`   // Red component (0-255)
	G   uint8  `json:"g"`   // Green component (0-255)
	B   uint8  `json:"b"`   // Blue component (0-255)
	Hex string `json:"hex"` // Lowercase "rrggbb", no leading '#'
}

// Quantize reduces an image to at most n representative colors, most
// prevalent first.
//
// The image is first shrunk so its longest edge is at most 196 pixels,
// then every pixel is binned by the top four bits of each channel. Each bin
// reports the mean color of its pixels. Fully transparent pixels are not
// counted unless nothing else is, so a fully transparent image still yields
// a color. Ties are broken by bin order so the result is deterministic.
//
// If n is zero or negative, DefaultColors is used. Fewer than n colors are
// returned when the image has fewer occupied bins.
func Quantize(img image.Image, n int) []Color {
	if n <= 0 {
		n = DefaultColors
	}
	sample := imaging.Fit(img, quantizeSample, quantizeSample, imaging.Box)

	type bin struct {
		key     int
		count   int
		r, g, b int
	}
	binPixels := func(withTransparent bool) map[int]*bin {
		bins := make(map[int]*bin)
		for i := 0; i+3 < len(sample.Pix); i += 4 {
			r, g, b, a := sample.Pix[i], sample.Pix[i+1], sample.Pix[i+2], sample.Pix[i+3]
			if a == 0 && !withTransparent {
				continue
			}
			key := int(r>>4)<<8 | int(g>>4)<<4 | int(b>>4)
			e, ok := bins[key]
			if !ok {
				e = &bin{key: key}
				bins[key] = e
			}
			e.count++
			e.r += int(r)
			e.g += int(g)
			e.b += int(b)
		}
		return bins
	}
	bins := binPixels(false)
	if len(bins) == 0 {
		bins = binPixels(true)
	}

	sorted := make([]*bin, 0, len(bins))
	for _, e := range bins {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	colors := make([]Color, 0, len(sorted))
	for _, e := range sorted {
		r := uint8((e.r + e.count/2) / e.count)
		g := uint8((e.g + e.count/2) / e.count)
		b := uint8((e.b + e.count/2) / e.count)
		colors = append(colors, Color{R: r, G: g, B: b, Hex: hexOf(r, g, b)})
	}
	return colors
}

func hexOf(r, g, b uint8) string {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return strings.TrimPrefix(c.Hex(), "#")
}

// Pixel is a single reading from Pixels on the 16-bit quantum scale.
// Opacity is the inverse of alpha: 0 for an opaque pixel.
type Pixel struct {
	Red     uint16 `json:"red"`
	Green   uint16 `json:"green"`
	Blue    uint16 `json:"blue"`
	Opacity uint16 `json:"opacity"`
}

// Pixels reads the columns x rows region at (x, y) in row-major order.
// The region must lie entirely within the image.
func Pixels(img image.Image, x, y, columns, rows int) ([]Pixel, error) {
	b := img.Bounds()
	r := image.Rect(x, y, x+columns, y+rows).Add(b.Min)
	if x < 0 || y < 0 || columns <= 0 || rows <= 0 || !r.In(b) {
		return nil, ErrInvalidGeometry
	}

	out := make([]Pixel, 0, columns*rows)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			c := color.NRGBA64Model.Convert(img.At(px, py)).(color.NRGBA64)
			out = append(out, Pixel{Red: c.R, Green: c.G, Blue: c.B, Opacity: 0xffff - c.A})
		}
	}
	return out, nil
}
