package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
)

// MemoryLimit is a ceiling, in bytes, on any single decoded or intermediate
// canvas. Each pixel is counted as four bytes. Zero means unlimited.
type MemoryLimit int64

// Check returns ErrCacheExhausted when a width x height canvas would exceed the limit.
func (m MemoryLimit) Check(width, height int) error {
	if m > 0 && int64(width)*int64(height)*4 > int64(m) {
		return ErrCacheExhausted
	}
	return nil
}

// ReadOptions controls how input bytes are decoded.
type ReadOptions struct {
	// Format is an optional source format hint. It is required for
	// formats without a signature (TGA).
	Format string

	// Limit bounds the decoded canvas.
	Limit MemoryLimit

	// IgnoreWarnings lets a read succeed despite non-fatal problems such
	// as a malformed Exif block.
	IgnoreWarnings bool

	// Warn, if set, receives each warning that was ignored.
	Warn func(error)
}

// Source is a decoded image together with the metadata read alongside it.
//
// Image always has its origin at (0,0). Orientation is the raw Exif value
// (1-8), or 0 when the input carries none. Exif holds the raw APP1 payload
// for JPEG input so that it can be written back out unchanged.
type Source struct {
	Image       image.Image
	Format      string
	Orientation int
	Density     Density
	Exif        []byte
}

// Decode reads data into a Source.
//
// # Format Detection
//
// When opt.Format is empty the format is detected from the data's
// signature. When it is set, the hinted decoder is used regardless of the
// signature, so a mismatched hint fails with an improper-header error.
//
// # Errors
//
//   - *ReadError for unrecognised, truncated or corrupt data
//   - ErrCacheExhausted when the image would exceed opt.Limit
func Decode(data []byte, opt ReadOptions) (*Source, error) {
	format, cfg, err := detect(data, opt.Format)
	if err != nil {
		return nil, err
	}
	if err := opt.Limit.Check(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, err := codecs[format].decode(bytes.NewReader(data))
	if err != nil {
		return nil, classifyReadError(format, err)
	}
	if b := img.Bounds(); b.Min != (image.Point{}) {
		img = cloneAtOrigin(img)
	}

	src := &Source{
		Image:   img,
		Format:  format,
		Density: readDensity(format, data),
	}
	if format == FormatJPEG {
		if err := src.readExif(data, opt); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func (s *Source) readExif(data []byte, opt ReadOptions) error {
	raw := extractExif(data)
	if raw == nil {
		return nil
	}
	o, err := exifOrientation(raw)
	if err == nil {
		s.Orientation = o
		s.Exif = raw
		return nil
	}

	warning := &ReadError{Phrase: PhraseCorrupt, Format: s.Format, Warning: true, Err: fmt.Errorf("exif: %w", err)}
	if !opt.IgnoreWarnings {
		return warning
	}
	if opt.Warn != nil {
		opt.Warn(warning)
	}
	return nil
}

// detect settles the format of data and reads its header.
func detect(data []byte, hint string) (string, image.Config, error) {
	if len(data) == 0 {
		return "", image.Config{}, &ReadError{Phrase: PhraseInsufficientData}
	}
	if hint == "" {
		format, cfg, err := sniff(data)
		if err != nil {
			return "", cfg, classifyReadError("", err)
		}
		return format, cfg, nil
	}

	format, ok := NormalizeFormat(hint)
	if !ok {
		return "", image.Config{}, &ReadError{Phrase: PhraseNoDecodeDelegate, Format: hint}
	}
	cfg, err := codecs[format].decodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", cfg, classifyReadError(format, err)
	}
	return format, cfg, nil
}

// classifyReadError maps a decoder error onto one of DecodePhrases.
func classifyReadError(format string, err error) error {
	var re *ReadError
	if errors.As(err, &re) {
		return err
	}

	phrase := PhraseCorrupt
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, image.ErrFormat):
		phrase = PhraseNoDecodeDelegate
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF), strings.Contains(msg, "unexpected eof"):
		phrase = PhraseInsufficientData
	case errors.Is(err, errTGAHeader), errors.Is(err, errTGAUnsupported):
		phrase = PhraseImproperHeader
	case strings.Contains(msg, "checksum"), strings.Contains(msg, "crc"):
		phrase = PhraseCRC
	case strings.Contains(msg, "not a png"), strings.Contains(msg, "missing soi"),
		strings.Contains(msg, "bad header"), strings.Contains(msg, "invalid header"),
		strings.Contains(msg, "malformed header"), strings.Contains(msg, "riff"):
		phrase = PhraseImproperHeader
	}
	return &ReadError{Phrase: phrase, Format: format, Err: err}
}

func cloneAtOrigin(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return toGray(img)
	}
	return toNRGBA(img)
}

// Info describes an image as reported by Identify.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Depth is the bit depth per channel: 8 or 16.
	Depth int `json:"depth"`

	// Format is the canonical format tag, e.g. "PNG" or "JPEG".
	Format string `json:"format"`

	// Colorspace is "sRGB", "Gray" or "CMYK".
	Colorspace string `json:"colorspace"`

	// Density is the recorded resolution, zero when absent.
	Density Density `json:"density"`

	// Exif carries the fields read from an Exif block.
	Exif ExifInfo `json:"exif"`
}

// ExifInfo holds the Exif fields Identify reports.
type ExifInfo struct {
	// Orientation is 1-8, or 0 when the image has no orientation tag.
	Orientation int `json:"orientation"`
}

// Identify decodes data and describes it.
//
// The whole image is decoded, not just its header, so truncated or corrupt
// input fails here exactly as it would in a conversion.
func Identify(data []byte, opt ReadOptions) (*Info, error) {
	src, err := Decode(data, opt)
	if err != nil {
		return nil, err
	}
	b := src.Image.Bounds()
	return &Info{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Depth:      depthOf(src.Image),
		Format:     src.Format,
		Colorspace: colorspaceOf(src.Image),
		Density:    src.Density,
		Exif:       ExifInfo{Orientation: src.Orientation},
	}, nil
}

func depthOf(img image.Image) int {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return 16
	}
	return 8
}

func colorspaceOf(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ColorspaceGray
	case *image.CMYK:
		return ColorspaceCMYK
	}
	return ColorspaceSRGB
}
