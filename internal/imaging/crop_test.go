package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestParseResizeStyle(t *testing.T) {
	tests := []struct {
		in   string
		want ResizeStyle
	}{
		{"", AspectFill},
		{"aspectfill", AspectFill},
		{"AspectFit", AspectFit},
		{"fill", Fill},
		{"crop", CropStyle},
		{"aspectwithbg", AspectWithBackground},
	}
	for _, tt := range tests {
		got, err := ParseResizeStyle(tt.in)
		if err != nil {
			t.Errorf("ParseResizeStyle(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseResizeStyle(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}

	_, err := ParseResizeStyle("stretchy")
	if !errors.Is(err, ErrUnsupportedResizeStyle) {
		t.Fatalf("expected ErrUnsupportedResizeStyle, got %v", err)
	}
	if err.Error() != "resizeStyle not supported" {
		t.Errorf("message: got %q", err.Error())
	}
}

func TestParseGravity(t *testing.T) {
	tests := []struct {
		in   string
		want Gravity
	}{
		{"", Center},
		{"North", North},
		{"southeast", SouthEast},
		{"NorthWestGravity", NorthWest},
		{"None", GravityNone},
		{"Forget", GravityNone},
	}
	for _, tt := range tests {
		got, err := ParseGravity(tt.in, Center)
		if err != nil {
			t.Errorf("ParseGravity(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGravity(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}

	_, err := ParseGravity("Up", Center)
	if !errors.Is(err, ErrUnsupportedGravity) {
		t.Fatalf("expected ErrUnsupportedGravity, got %v", err)
	}
	if err.Error() != "gravity not supported" {
		t.Errorf("message: got %q", err.Error())
	}
}

func TestParseCropMode(t *testing.T) {
	tests := map[string]Gravity{
		"":              "",
		"top-left":      NorthWest,
		"middle-center": Center,
		"bottom-right":  SouthEast,
		"Top-Center":    North,
		"none":          GravityNone,
	}
	for in, want := range tests {
		got, err := ParseCropMode(in)
		if err != nil {
			t.Errorf("ParseCropMode(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCropMode(%q): got %s, want %s", in, got, want)
		}
	}

	if _, err := ParseCropMode("left-top"); !errors.Is(err, ErrUnsupportedCropMode) {
		t.Errorf("expected ErrUnsupportedCropMode, got %v", err)
	}
}

func TestAnchor(t *testing.T) {
	outer, inner := image.Pt(100, 50), image.Pt(20, 10)
	tests := map[Gravity]image.Point{
		Center:    {40, 20},
		NorthWest: {0, 0},
		North:     {40, 0},
		NorthEast: {80, 0},
		West:      {0, 20},
		East:      {80, 20},
		SouthWest: {0, 40},
		South:     {40, 40},
		SouthEast: {80, 40},
	}
	for g, want := range tests {
		if got := anchor(g, outer, inner); got != want {
			t.Errorf("anchor(%s): got %v, want %v", g, got, want)
		}
	}
}

func TestResize_NoBox(t *testing.T) {
	img := createPatternImage(40, 20)

	out, err := Resize(img, ResizeOptions{})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out != image.Image(img) {
		t.Error("Resize without a box should return the input unchanged")
	}
}

func TestResize_AspectFill(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 50, Height: 50})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", b.Dx(), b.Dy())
	}
}

func TestResize_AspectFillGravity(t *testing.T) {
	img := createPatternImage(100, 50)
	red := color.NRGBA{255, 0, 0, 255}
	green := color.NRGBA{0, 255, 0, 255}

	west, err := Resize(img, ResizeOptions{Width: 50, Height: 50, Gravity: West})
	if err != nil {
		t.Fatalf("Resize West failed: %v", err)
	}
	if got := nrgbaAt(west, 10, 10); !nearlyEqual(got, red, 2) {
		t.Errorf("West (10,10): got %v, want red", got)
	}

	east, err := Resize(img, ResizeOptions{Width: 50, Height: 50, Gravity: East})
	if err != nil {
		t.Fatalf("Resize East failed: %v", err)
	}
	if got := nrgbaAt(east, 40, 10); !nearlyEqual(got, green, 2) {
		t.Errorf("East (40,10): got %v, want green", got)
	}
}

func TestResize_AspectFillNoneSkipsCrop(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 50, Height: 50, Gravity: GravityNone})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	// Covering 50x50 from 100x50 scales to 101x50 before the crop.
	if b := out.Bounds(); b.Dx() != 101 || b.Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 101x50", b.Dx(), b.Dy())
	}
}

func TestResize_MissingEdgeDefaultsToSource(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 40})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 40x50", b.Dx(), b.Dy())
	}
}

func TestResize_AspectFit(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 40, Height: 40, Style: AspectFit})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", b.Dx(), b.Dy())
	}

	small := createPatternImage(10, 5)
	out, err = Resize(small, ResizeOptions{Width: 100, Height: 100, Style: AspectFit})
	if err != nil {
		t.Fatalf("Resize up failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("scaled up dimensions: got %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestResize_Fill(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 30, Height: 70, Style: Fill})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 30 || b.Dy() != 70 {
		t.Errorf("dimensions: got %dx%d, want 30x70", b.Dx(), b.Dy())
	}
}

func TestResize_Crop(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 20, Height: 20, Style: CropStyle, XOffset: 60, YOffset: 5})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 20x20", b.Dx(), b.Dy())
	}
	if got := nrgbaAt(out, 0, 0); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("pixel (0,0): got %v, want green", got)
	}
}

func TestResize_CropClipsToImage(t *testing.T) {
	img := createPatternImage(100, 50)

	out, err := Resize(img, ResizeOptions{Width: 20, Height: 20, Style: CropStyle, XOffset: 90, YOffset: 40})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("dimensions: got %dx%d, want 10x10", b.Dx(), b.Dy())
	}

	_, err = Resize(img, ResizeOptions{Width: 20, Height: 20, Style: CropStyle, XOffset: 200})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestResize_AspectWithBackground(t *testing.T) {
	img := createPatternImage(100, 50)
	blue := color.NRGBA{0, 0, 255, 255}

	out, err := Resize(img, ResizeOptions{Width: 60, Height: 60, Style: AspectWithBackground, Background: blue})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 60 || b.Dy() != 60 {
		t.Fatalf("dimensions: got %dx%d, want 60x60", b.Dx(), b.Dy())
	}
	// The 60x30 fitted image is centered, leaving 15 rows of padding above.
	if got := nrgbaAt(out, 30, 5); got != blue {
		t.Errorf("padding (30,5): got %v, want blue", got)
	}
	if got := nrgbaAt(out, 45, 20); !nearlyEqual(got, color.NRGBA{0, 255, 0, 255}, 2) {
		t.Errorf("image (45,20): got %v, want green", got)
	}

	white, err := Resize(img, ResizeOptions{Width: 60, Height: 60, Style: AspectWithBackground})
	if err != nil {
		t.Fatalf("Resize with default background failed: %v", err)
	}
	if got := nrgbaAt(white, 30, 5); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("default padding: got %v, want white", got)
	}
}

func TestResize_MemoryLimit(t *testing.T) {
	img := createPatternImage(10, 10)

	_, err := Resize(img, ResizeOptions{Width: 1000, Height: 1000, Style: Fill, Limit: 1000})
	if !errors.Is(err, ErrCacheExhausted) {
		t.Errorf("expected ErrCacheExhausted, got %v", err)
	}
}
