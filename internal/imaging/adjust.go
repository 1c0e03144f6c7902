package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Colorspace names.
const (
	ColorspaceSRGB = "sRGB"
	ColorspaceRGB  = "RGB"
	ColorspaceGray = "Gray"
	ColorspaceCMYK = "CMYK"
)

// ParseColorspace validates an output colorspace. Empty keeps the source's.
func ParseColorspace(name string) (string, error) {
	switch strings.ToLower(name) {
	case "":
		return "", nil
	case "srgb":
		return ColorspaceSRGB, nil
	case "rgb":
		return ColorspaceRGB, nil
	case "gray", "grey":
		return ColorspaceGray, nil
	}
	return "", ErrUnsupportedColorspace
}

// AutoOrient applies an Exif orientation (1-8) so the image displays
// upright. Other values leave the image unchanged.
func AutoOrient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// Rotate turns img clockwise by degrees. Corners exposed by angles that are
// not a multiple of 90 are filled with bg.
func Rotate(img image.Image, degrees float64, bg color.Color, limit MemoryLimit) (image.Image, error) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return img, nil
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	}

	rad := d * math.Pi / 180
	sz := img.Bounds().Size()
	w := math.Abs(float64(sz.X)*math.Cos(rad)) + math.Abs(float64(sz.Y)*math.Sin(rad))
	h := math.Abs(float64(sz.X)*math.Sin(rad)) + math.Abs(float64(sz.Y)*math.Cos(rad))
	if err := limit.Check(int(math.Ceil(w)), int(math.Ceil(h))); err != nil {
		return nil, err
	}
	if bg == nil {
		bg = color.Transparent
	}
	return imaging.Rotate(img, -d, bg), nil
}

// Flip mirrors img top to bottom.
func Flip(img image.Image) image.Image {
	return imaging.FlipV(img)
}

// Blur applies a Gaussian blur of the given sigma.
func Blur(img image.Image, sigma float64) image.Image {
	if sigma <= 0 {
		return img
	}
	return blur.Gaussian(img, sigma)
}

// BrightnessContrast shifts brightness and contrast, each in -100..100.
func BrightnessContrast(img image.Image, brightness, contrast float64) image.Image {
	if brightness != 0 {
		img = adjust.Brightness(img, clampFloat(brightness, -100, 100)/100)
	}
	if contrast != 0 {
		img = adjust.Contrast(img, clampFloat(contrast, -100, 100)/100)
	}
	return img
}

// Opacity applies a percentage (0-100). Without a tint the alpha channel is
// reduced by that percentage. With a tint, the tint color is laid over the
// image at that strength and the alpha channel is kept.
func Opacity(img image.Image, percent float64, tint color.Color) image.Image {
	percent = clampFloat(percent, 0, 100)
	if percent == 0 {
		return img
	}
	src := imaging.Clone(img)

	if tint == nil {
		keep := 1 - percent/100
		for i := 3; i < len(src.Pix); i += 4 {
			src.Pix[i] = uint8(math.Round(float64(src.Pix[i]) * keep))
		}
		return src
	}

	b := src.Bounds()
	layer := imaging.New(b.Dx(), b.Dy(), tint)
	out := imaging.Clone(blend.Opacity(src, layer, percent/100))
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = src.Pix[i]
	}
	return out
}

// ApplyColorspace converts img to one of the colorspaces ParseColorspace
// returns. Gray images without transparency become single channel.
func ApplyColorspace(img image.Image, cs string) (image.Image, error) {
	switch cs {
	case "":
		return img, nil
	case ColorspaceSRGB, ColorspaceRGB:
		if colorspaceOf(img) == ColorspaceSRGB {
			return img, nil
		}
		return toNRGBA(img), nil
	case ColorspaceGray:
		if Opaque(img) {
			return toGray(img), nil
		}
		return imaging.Grayscale(img), nil
	}
	return nil, ErrUnsupportedColorspace
}

// Flatten composites img over a solid background, removing transparency.
func Flatten(img image.Image, bg color.Color) image.Image {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), bg), img, image.Pt(0, 0), 1.0)
}

// Opaque reports whether img is known to have no transparent pixels.
func Opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func toNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
