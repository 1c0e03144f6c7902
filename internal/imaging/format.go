package imaging

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Canonical format tags, as reported by Identify and accepted as hints.
const (
	FormatPNG  = "PNG"
	FormatJPEG = "JPEG"
	FormatGIF  = "GIF"
	FormatBMP  = "BMP"
	FormatTIFF = "TIFF"
	FormatWEBP = "WEBP"
	FormatTGA  = "TGA"
)

// DefaultJPEGQuality is used when no quality is requested.
const DefaultJPEGQuality = 92

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
	// encode is nil for read-only formats.
	encode func(w io.Writer, img image.Image, quality int) error
	mime   string
}

var codecs = map[string]codec{
	FormatPNG:  {png.Decode, png.DecodeConfig, encodePNG, "image/png"},
	FormatJPEG: {jpeg.Decode, jpeg.DecodeConfig, encodeJPEG, "image/jpeg"},
	FormatGIF:  {gif.Decode, gif.DecodeConfig, encodeGIF, "image/gif"},
	FormatBMP:  {bmp.Decode, bmp.DecodeConfig, encodeAs(imaging.BMP), "image/bmp"},
	FormatTIFF: {tiff.Decode, tiff.DecodeConfig, encodeAs(imaging.TIFF), "image/tiff"},
	FormatWEBP: {webp.Decode, webp.DecodeConfig, nil, "image/webp"},
	FormatTGA:  {decodeTGA, decodeTGAConfig, encodeTGA, "image/x-tga"},
}

var formatAliases = map[string]string{
	"JPG":  FormatJPEG,
	"JPE":  FormatJPEG,
	"TIF":  FormatTIFF,
	"ICB":  FormatTGA,
	"VDA":  FormatTGA,
	"VST":  FormatTGA,
	"DIB":  FormatBMP,
	"PNG8": FormatPNG,
}

// NormalizeFormat maps a user supplied format tag (any case, common
// aliases, optional leading dot) to its canonical tag.
func NormalizeFormat(tag string) (string, bool) {
	t := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), "."))
	if alias, ok := formatAliases[t]; ok {
		t = alias
	}
	if _, ok := codecs[t]; !ok {
		return "", false
	}
	return t, true
}

// CanEncode reports whether the canonical format can be written.
func CanEncode(format string) bool {
	c, ok := codecs[format]
	return ok && c.encode != nil
}

// MimeType returns the media type for a canonical format tag.
func MimeType(format string) string {
	if c, ok := codecs[format]; ok {
		return c.mime
	}
	return "application/octet-stream"
}

// ParseOutputFormat validates an output format tag. An empty tag means
// "keep the source format" and yields "".
func ParseOutputFormat(tag string) (string, error) {
	if tag == "" {
		return "", nil
	}
	f, ok := NormalizeFormat(tag)
	if !ok {
		return "", unknownFormat(tag)
	}
	if !CanEncode(f) {
		return "", ErrNoEncodeDelegate
	}
	return f, nil
}

// DetectFormat returns the canonical format of data from its signature,
// or "" when it has none that is recognised.
func DetectFormat(data []byte) string {
	format, _, err := sniff(data)
	if err != nil {
		return ""
	}
	return format
}

// sniff detects the format of data from its signature using the decoders
// registered with the image package. Formats without a signature (TGA) are
// never detected.
func sniff(data []byte) (string, image.Config, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", cfg, err
	}
	format, ok := NormalizeFormat(name)
	if !ok {
		return "", cfg, image.ErrFormat
	}
	return format, cfg, nil
}

// EncodeOptions controls how an image is written.
type EncodeOptions struct {
	// Format is a canonical format tag.
	Format string

	// Quality is 1-100. Zero selects the format's default.
	Quality int

	// Density is the resolution in pixels per inch to record. Zero writes none.
	Density int

	// Exif is a raw APP1 payload to carry into JPEG output. Nil drops metadata.
	Exif []byte
}

// Encode writes img in the requested format and returns the bytes.
func Encode(img image.Image, opt EncodeOptions) ([]byte, error) {
	c, ok := codecs[opt.Format]
	if !ok {
		return nil, unknownFormat(opt.Format)
	}
	if c.encode == nil {
		return nil, ErrNoEncodeDelegate
	}

	var buf bytes.Buffer
	if err := c.encode(&buf, img, opt.Quality); err != nil {
		return nil, err
	}
	out := buf.Bytes()

	switch opt.Format {
	case FormatJPEG:
		if opt.Exif != nil {
			out = insertJPEGSegment(out, markerAPP1, opt.Exif)
		}
		if opt.Density > 0 {
			out = insertJPEGSegment(out, markerAPP0, jfifSegment(opt.Density))
		}
	case FormatPNG:
		if opt.Density > 0 {
			out = insertPNGChunk(out, "pHYs", physChunk(opt.Density))
		}
	}
	return out, nil
}

func encodePNG(w io.Writer, img image.Image, quality int) error {
	level := png.DefaultCompression
	if quality > 0 {
		switch z := quality / 10; {
		case z == 0:
			level = png.NoCompression
		case z <= 3:
			level = png.BestSpeed
		case z <= 6:
			level = png.DefaultCompression
		default:
			level = png.BestCompression
		}
	}
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if quality > 100 {
		quality = 100
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

func encodeGIF(w io.Writer, img image.Image, _ int) error {
	return imaging.Encode(w, img, imaging.GIF, imaging.GIFNumColors(256))
}

func encodeAs(f imaging.Format) func(io.Writer, image.Image, int) error {
	return func(w io.Writer, img image.Image, _ int) error {
		return imaging.Encode(w, img, f)
	}
}
