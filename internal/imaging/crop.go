package imaging

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// ResizeStyle selects how an image is fitted into a width x height box.
type ResizeStyle string

const (
	// AspectFill keeps the aspect ratio, covers the box and crops the overflow.
	AspectFill ResizeStyle = "aspectfill"
	// AspectFit keeps the aspect ratio and fits inside the box.
	AspectFit ResizeStyle = "aspectfit"
	// Fill stretches to exactly the box.
	Fill ResizeStyle = "fill"
	// CropStyle cuts a box-sized region at an offset without scaling.
	CropStyle ResizeStyle = "crop"
	// AspectWithBackground fits inside the box and pads the rest with a background color.
	AspectWithBackground ResizeStyle = "aspectwithbg"
)

// ParseResizeStyle validates a resize style name. Empty selects AspectFill.
func ParseResizeStyle(name string) (ResizeStyle, error) {
	if name == "" {
		return AspectFill, nil
	}
	switch s := ResizeStyle(strings.ToLower(name)); s {
	case AspectFill, AspectFit, Fill, CropStyle, AspectWithBackground:
		return s, nil
	}
	return "", ErrUnsupportedResizeStyle
}

// Gravity names an anchor point inside a canvas.
type Gravity string

const (
	Center    Gravity = "Center"
	North     Gravity = "North"
	South     Gravity = "South"
	East      Gravity = "East"
	West      Gravity = "West"
	NorthEast Gravity = "NorthEast"
	NorthWest Gravity = "NorthWest"
	SouthEast Gravity = "SouthEast"
	SouthWest Gravity = "SouthWest"
	// GravityNone disables anchoring: no crop after aspectfill, explicit
	// offsets for composite.
	GravityNone Gravity = "None"
)

var gravities = map[string]Gravity{
	"center":    Center,
	"north":     North,
	"south":     South,
	"east":      East,
	"west":      West,
	"northeast": NorthEast,
	"northwest": NorthWest,
	"southeast": SouthEast,
	"southwest": SouthWest,
	"none":      GravityNone,
	"forget":    GravityNone,
}

// ParseGravity resolves a gravity name, case-insensitively and with or
// without a "Gravity" suffix ("NorthGravity"). Empty selects def.
func ParseGravity(name string, def Gravity) (Gravity, error) {
	if name == "" {
		return def, nil
	}
	key := strings.TrimSuffix(strings.ToLower(name), "gravity")
	if g, ok := gravities[key]; ok {
		return g, nil
	}
	return "", ErrUnsupportedGravity
}

var cropModes = map[string]Gravity{
	"top-left":      NorthWest,
	"top-center":    North,
	"top-right":     NorthEast,
	"middle-left":   West,
	"middle-center": Center,
	"middle-right":  East,
	"bottom-left":   SouthWest,
	"bottom-center": South,
	"bottom-right":  SouthEast,
	"none":          GravityNone,
}

// ParseCropMode maps a crop mode such as "top-left" onto the equivalent
// gravity. Empty yields "" so the caller's gravity stands.
func ParseCropMode(mode string) (Gravity, error) {
	if mode == "" {
		return "", nil
	}
	if g, ok := cropModes[strings.ToLower(mode)]; ok {
		return g, nil
	}
	return "", ErrUnsupportedCropMode
}

// anchor returns the top-left position of an inner box placed inside an
// outer box according to g. Offsets may be negative when inner is larger.
func anchor(g Gravity, outer, inner image.Point) image.Point {
	s := string(g)
	var p image.Point
	switch {
	case strings.Contains(s, "West"):
		p.X = 0
	case strings.Contains(s, "East"):
		p.X = outer.X - inner.X
	default:
		p.X = (outer.X - inner.X) / 2
	}
	switch {
	case strings.Contains(s, "North"):
		p.Y = 0
	case strings.Contains(s, "South"):
		p.Y = outer.Y - inner.Y
	default:
		p.Y = (outer.Y - inner.Y) / 2
	}
	return p
}

// ResizeOptions describes a resize request. A zero Width or Height takes
// the source's edge; when both are zero Resize is a no-op except for the
// crop style, which then cuts from the offset to the source edge.
type ResizeOptions struct {
	Width   int
	Height  int
	Style   ResizeStyle
	Gravity Gravity
	Filter  imaging.ResampleFilter

	// XOffset and YOffset position the crop style's region.
	XOffset int
	YOffset int

	// Background pads AspectWithBackground output. Nil means white.
	Background color.Color

	Limit MemoryLimit
}

// Resize fits img to the box described by opt.
func Resize(img image.Image, opt ResizeOptions) (image.Image, error) {
	src := img.Bounds().Size()
	if opt.Width == 0 && opt.Height == 0 && opt.Style != CropStyle {
		return img, nil
	}
	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = src.X
	}
	if h <= 0 {
		h = src.Y
	}
	if opt.Filter.Kernel == nil && opt.Filter.Support == 0 {
		opt.Filter = imaging.Lanczos
	}
	if opt.Gravity == "" {
		opt.Gravity = Center
	}

	switch opt.Style {
	case AspectFill, "":
		return aspectFill(img, w, h, opt)
	case AspectFit:
		fw, fh := fitSize(src, w, h)
		if err := opt.Limit.Check(fw, fh); err != nil {
			return nil, err
		}
		return imaging.Resize(img, fw, fh, opt.Filter), nil
	case Fill:
		if err := opt.Limit.Check(w, h); err != nil {
			return nil, err
		}
		return imaging.Resize(img, w, h, opt.Filter), nil
	case CropStyle:
		r := image.Rect(opt.XOffset, opt.YOffset, opt.XOffset+w, opt.YOffset+h).Intersect(img.Bounds())
		if r.Empty() {
			return nil, ErrInvalidGeometry
		}
		return imaging.Crop(img, r), nil
	case AspectWithBackground:
		return aspectWithBackground(img, w, h, opt)
	}
	return nil, ErrUnsupportedResizeStyle
}

// aspectFill scales so the image covers w x h, one pixel over on the
// scaled edge, then cuts the box out at the gravity anchor.
func aspectFill(img image.Image, w, h int, opt ResizeOptions) (image.Image, error) {
	src := img.Bounds().Size()
	var rw, rh int
	if float64(h)/float64(w) > float64(src.Y)/float64(src.X) {
		rw = int(float64(h)/float64(src.Y)*float64(src.X) + 1)
		rh = h
	} else {
		rw = w
		rh = int(float64(w)/float64(src.X)*float64(src.Y) + 1)
	}
	if err := opt.Limit.Check(rw, rh); err != nil {
		return nil, err
	}
	resized := imaging.Resize(img, rw, rh, opt.Filter)
	if opt.Gravity == GravityNone {
		return resized, nil
	}

	off := anchor(opt.Gravity, image.Pt(rw, rh), image.Pt(w, h))
	// The covered edge always fits; clamp the other axis.
	off.X = clampInt(off.X, 0, max(rw-w, 0))
	off.Y = clampInt(off.Y, 0, max(rh-h, 0))

	return imaging.Crop(resized, image.Rect(off.X, off.Y, off.X+w, off.Y+h)), nil
}

func aspectWithBackground(img image.Image, w, h int, opt ResizeOptions) (image.Image, error) {
	if err := opt.Limit.Check(w, h); err != nil {
		return nil, err
	}
	fw, fh := fitSize(img.Bounds().Size(), w, h)
	fitted := imaging.Resize(img, fw, fh, opt.Filter)

	bg := opt.Background
	if bg == nil {
		bg = color.White
	}
	g := opt.Gravity
	if g == GravityNone {
		g = Center
	}
	canvas := imaging.New(w, h, bg)
	return imaging.Overlay(canvas, fitted, anchor(g, image.Pt(w, h), image.Pt(fw, fh)), 1.0), nil
}

// fitSize scales src to the largest size inside w x h that keeps its
// aspect ratio. It scales up as well as down.
func fitSize(src image.Point, w, h int) (int, int) {
	scale := math.Min(float64(w)/float64(src.X), float64(h)/float64(src.Y))
	fw := max(int(math.Round(float64(src.X)*scale)), 1)
	fh := max(int(math.Round(float64(src.Y)*scale)), 1)
	return min(fw, w), min(fh, h)
}
