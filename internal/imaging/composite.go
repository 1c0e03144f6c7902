package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// CompositeOptions places an overlay on a base image.
type CompositeOptions struct {
	// Gravity anchors the overlay inside the base. GravityNone (or empty)
	// places it at XOffset, YOffset instead.
	Gravity Gravity
	XOffset int
	YOffset int

	Limit MemoryLimit
}

// Composite draws overlay over base and returns a new image the size of
// base. Overlay pixels falling outside base are clipped.
func Composite(base, overlay image.Image, opt CompositeOptions) (image.Image, error) {
	bs := base.Bounds().Size()
	if err := opt.Limit.Check(bs.X, bs.Y); err != nil {
		return nil, err
	}

	pos := image.Pt(opt.XOffset, opt.YOffset)
	if opt.Gravity != "" && opt.Gravity != GravityNone {
		pos = anchor(opt.Gravity, bs, overlay.Bounds().Size())
	}
	return imaging.Overlay(base, overlay, pos, 1.0), nil
}
