package magick

import (
	"image"
	"image/color"

	"github.com/ironsheep/image-magick-go/internal/imaging"
	"github.com/sirupsen/logrus"
)

// convertPlan holds a request's enumerations and colors, parsed before any
// pixel work so that a bad value fails fast.
type convertPlan struct {
	format     string
	resize     imaging.ResizeOptions
	background color.Color
	tint       color.Color
	colorspace string
}

func parseConvert(o *Options) (*convertPlan, error) {
	var p convertPlan
	var err error

	if p.format, err = imaging.ParseOutputFormat(o.Format); err != nil {
		return nil, err
	}
	style, err := imaging.ParseResizeStyle(o.ResizeStyle)
	if err != nil {
		return nil, err
	}
	gravity, err := imaging.ParseGravity(o.Gravity, imaging.Center)
	if err != nil {
		return nil, err
	}
	mode, err := imaging.ParseCropMode(o.CropMode)
	if err != nil {
		return nil, err
	}
	if mode != "" {
		gravity = mode
	}
	filter, err := imaging.ParseFilter(o.Filter)
	if err != nil {
		return nil, err
	}
	if p.background, err = imaging.ParseColor(o.Background); err != nil {
		return nil, err
	}
	if p.tint, err = imaging.ParseColor(o.OpacityColor); err != nil {
		return nil, err
	}
	if p.colorspace, err = imaging.ParseColorspace(o.Colorspace); err != nil {
		return nil, err
	}

	p.resize = imaging.ResizeOptions{
		Width:      o.Width,
		Height:     o.Height,
		Style:      style,
		Gravity:    gravity,
		Filter:     filter,
		XOffset:    o.XOffset,
		YOffset:    o.YOffset,
		Background: p.background,
	}
	return &p, nil
}

// Convert decodes SrcData, applies the requested transforms and encodes the
// result. The transforms run in a fixed order: auto-orient, resize, rotate,
// flip, trim, blur, brightness/contrast, opacity, colorspace and background
// flatten. Output keeps the source format unless Format is set.
func (m *Magick) Convert(o *Options) ([]byte, error) {
	if err := validate(OpConvert, o); err != nil {
		return nil, err
	}
	log := m.logger(OpConvert, o)
	out, err := m.convert(o, log)
	if err != nil {
		log.WithError(err).Debug("convert failed")
		return nil, classify(OpConvert, err)
	}
	return out, nil
}

func (m *Magick) convert(o *Options, log *logrus.Entry) ([]byte, error) {
	p, err := parseConvert(o)
	if err != nil {
		return nil, err
	}
	ro := m.readOptions(o, log)
	src, err := imaging.Decode(o.SrcData, ro)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"format": src.Format,
		"width":  src.Image.Bounds().Dx(),
		"height": src.Image.Bounds().Dy(),
	}).Debug("decoded")

	img := src.Image
	if o.AutoOrient {
		img = imaging.AutoOrient(img, src.Orientation)
	}

	p.resize.Limit = ro.Limit
	if img, err = imaging.Resize(img, p.resize); err != nil {
		return nil, err
	}
	if o.Rotate != 0 {
		if img, err = imaging.Rotate(img, o.Rotate, p.background, ro.Limit); err != nil {
			return nil, err
		}
	}
	if o.Flip {
		img = imaging.Flip(img)
	}
	if o.Trim {
		img = imaging.Trim(img, o.TrimFuzz)
	}
	img = imaging.Blur(img, o.Blur)
	img = imaging.BrightnessContrast(img, o.Brightness, o.Contrast)
	img = imaging.Opacity(img, o.Opacity, p.tint)
	if img, err = imaging.ApplyColorspace(img, p.colorspace); err != nil {
		return nil, err
	}

	format := p.format
	if format == "" {
		format = src.Format
		if !imaging.CanEncode(format) {
			format = imaging.FormatPNG
		}
	}
	img, err = flatten(img, format, p)
	if err != nil {
		return nil, err
	}

	enc := imaging.EncodeOptions{Format: format, Quality: o.Quality, Density: o.Density}
	if enc.Density == 0 && !o.Strip {
		enc.Density = src.Density.Width
	}
	if format == imaging.FormatJPEG && src.Format == imaging.FormatJPEG && !o.Strip && !o.AutoOrient {
		enc.Exif = src.Exif
	}

	log.WithFields(logrus.Fields{
		"format":  format,
		"width":   img.Bounds().Dx(),
		"height":  img.Bounds().Dy(),
		"quality": o.Quality,
	}).Debug("encoding")
	return imaging.Encode(img, enc)
}

// flatten removes transparency when a background is requested, or when the
// output format cannot carry an alpha channel.
func flatten(img image.Image, format string, p *convertPlan) (image.Image, error) {
	bg := p.background
	if bg == nil && format == imaging.FormatJPEG && !imaging.Opaque(img) {
		bg = color.White
	}
	if bg == nil {
		return img, nil
	}
	img = imaging.Flatten(img, bg)
	if p.colorspace == imaging.ColorspaceGray {
		return imaging.ApplyColorspace(img, imaging.ColorspaceGray)
	}
	return img, nil
}
