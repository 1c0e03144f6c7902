package magick

import (
	"image/color"

	"github.com/ironsheep/image-magick-go/internal/imaging"
	"github.com/sirupsen/logrus"
)

// Identify describes SrcData without transforming it.
func (m *Magick) Identify(o *Options) (*IdentifyResult, error) {
	if err := validate(OpIdentify, o); err != nil {
		return nil, err
	}
	log := m.logger(OpIdentify, o)
	info, err := imaging.Identify(o.SrcData, m.readOptions(o, log))
	if err != nil {
		log.WithError(err).Debug("identify failed")
		return nil, classify(OpIdentify, err)
	}
	log.WithFields(logrus.Fields{
		"format": info.Format,
		"width":  info.Width,
		"height": info.Height,
	}).Debug("identified")
	return info, nil
}

// Composite draws CompositeData over SrcData.
//
// With a Gravity the overlay is anchored inside the source; without one
// (or with "None"/"Forget") it is placed at XOffset, YOffset. The result has
// the source's dimensions and, unless Format is set, its format.
func (m *Magick) Composite(o *Options) ([]byte, error) {
	if err := validate(OpComposite, o); err != nil {
		return nil, err
	}
	log := m.logger(OpComposite, o)
	out, err := m.composite(o, log)
	if err != nil {
		log.WithError(err).Debug("composite failed")
		return nil, classify(OpComposite, err)
	}
	return out, nil
}

func (m *Magick) composite(o *Options, log *logrus.Entry) ([]byte, error) {
	gravity, err := imaging.ParseGravity(o.Gravity, imaging.GravityNone)
	if err != nil {
		return nil, err
	}
	format, err := imaging.ParseOutputFormat(o.Format)
	if err != nil {
		return nil, err
	}

	ro := m.readOptions(o, log)
	base, err := imaging.Decode(o.SrcData, ro)
	if err != nil {
		return nil, err
	}
	overlayOpts := ro
	overlayOpts.Format = ""
	overlay, err := imaging.Decode(o.CompositeData, overlayOpts)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Composite(base.Image, overlay.Image, imaging.CompositeOptions{
		Gravity: gravity,
		XOffset: o.XOffset,
		YOffset: o.YOffset,
		Limit:   ro.Limit,
	})
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = base.Format
		if !imaging.CanEncode(format) {
			format = imaging.FormatPNG
		}
	}
	if format == imaging.FormatJPEG && !imaging.Opaque(img) {
		img = imaging.Flatten(img, color.White)
	}
	log.WithFields(logrus.Fields{"gravity": gravity, "format": format}).Debug("composited")
	return imaging.Encode(img, imaging.EncodeOptions{Format: format, Quality: o.Quality})
}

// QuantizeColors returns up to Colors dominant colors of SrcData, most
// prevalent first. Transparent pixels only count when the image has no
// other pixels, so the result is never empty.
func (m *Magick) QuantizeColors(o *Options) ([]Color, error) {
	if err := validate(OpQuantizeColors, o); err != nil {
		return nil, err
	}
	log := m.logger(OpQuantizeColors, o)
	src, err := imaging.Decode(o.SrcData, m.readOptions(o, log))
	if err != nil {
		log.WithError(err).Debug("quantize failed")
		return nil, classify(OpQuantizeColors, err)
	}
	colors := imaging.Quantize(src.Image, o.Colors)
	log.WithField("colors", len(colors)).Debug("quantized")
	return colors, nil
}

// GetConstPixels reads the region at X, Y of Columns x Rows pixels, row by
// row. A zero Columns or Rows counts as one.
func (m *Magick) GetConstPixels(o *Options) ([]Pixel, error) {
	if err := validate(OpGetConstPixels, o); err != nil {
		return nil, err
	}
	log := m.logger(OpGetConstPixels, o)
	src, err := imaging.Decode(o.SrcData, m.readOptions(o, log))
	if err != nil {
		log.WithError(err).Debug("getConstPixels failed")
		return nil, classify(OpGetConstPixels, err)
	}
	columns, rows := o.Columns, o.Rows
	if columns == 0 {
		columns = 1
	}
	if rows == 0 {
		rows = 1
	}
	pixels, err := imaging.Pixels(src.Image, o.X, o.Y, columns, rows)
	if err != nil {
		log.WithError(err).Debug("getConstPixels failed")
		return nil, classify(OpGetConstPixels, err)
	}
	return pixels, nil
}
