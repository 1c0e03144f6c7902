package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// encodeFixture encodes img in the given format and fails the test on error.
func encodeFixture(t *testing.T, img image.Image, opt EncodeOptions) []byte {
	t.Helper()
	data, err := Encode(img, opt)
	if err != nil {
		t.Fatalf("failed to encode %s fixture: %v", opt.Format, err)
	}
	return data
}

// exifPayload builds a minimal big-endian Exif block holding one
// orientation tag.
func exifPayload(orientation uint16) []byte {
	b := []byte("Exif\x00\x00")
	b = append(b, 'M', 'M', 0, 42, 0, 0, 0, 8) // TIFF header, IFD0 at 8
	b = append(b, 0, 1)                        // one entry
	b = append(b, 0x01, 0x12, 0, 3, 0, 0, 0, 1, byte(orientation>>8), byte(orientation), 0, 0)
	return append(b, 0, 0, 0, 0) // no next IFD
}

func nearlyEqual(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		diff := int(x) - int(y)
		return diff <= tol && diff >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func readErrorPhrase(t *testing.T, err error) string {
	t.Helper()
	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ReadError, got %T: %v", err, err)
	}
	return re.Phrase
}

func TestDecode_PNG(t *testing.T) {
	data := encodeFixture(t, createPatternImage(40, 20), EncodeOptions{Format: FormatPNG})

	src, err := Decode(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Format != FormatPNG {
		t.Errorf("Format: got %s, want PNG", src.Format)
	}
	if b := src.Image.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", b.Dx(), b.Dy())
	}
	if src.Orientation != 0 {
		t.Errorf("Orientation: got %d, want 0", src.Orientation)
	}
}

func TestDecode_UnknownData(t *testing.T) {
	_, err := Decode([]byte("this is not an image at all"), ReadOptions{})
	if err == nil {
		t.Fatal("expected error for unknown data")
	}
	if phrase := readErrorPhrase(t, err); phrase != PhraseNoDecodeDelegate {
		t.Errorf("phrase: got %q, want %q", phrase, PhraseNoDecodeDelegate)
	}
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil, ReadOptions{})
	if phrase := readErrorPhrase(t, err); phrase != PhraseInsufficientData {
		t.Errorf("phrase: got %q, want %q", phrase, PhraseInsufficientData)
	}
}

func TestDecode_BrokenPNG(t *testing.T) {
	data := encodeFixture(t, createPatternImage(16, 16), EncodeOptions{Format: FormatPNG})

	// Corrupt the CRC of the first IDAT chunk.
	i := bytes.Index(data, []byte("IDAT"))
	if i < 4 {
		t.Fatal("fixture has no IDAT chunk")
	}
	n := int(data[i-4])<<24 | int(data[i-3])<<16 | int(data[i-2])<<8 | int(data[i-1])
	data[i+4+n] ^= 0xff

	_, err := Decode(data, ReadOptions{})
	if err == nil {
		t.Fatal("expected error for broken PNG")
	}
	phrase := readErrorPhrase(t, err)
	if phrase != PhraseCRC && phrase != PhraseCorrupt {
		t.Errorf("phrase: got %q, want CRC error or corrupt image", phrase)
	}
}

func TestDecode_Truncated(t *testing.T) {
	data := encodeFixture(t, createPatternImage(32, 32), EncodeOptions{Format: FormatJPEG})

	_, err := Decode(data[:len(data)/2], ReadOptions{})
	if err == nil {
		t.Fatal("expected error for truncated JPEG")
	}
	if phrase := readErrorPhrase(t, err); phrase != PhraseInsufficientData && phrase != PhraseCorrupt {
		t.Errorf("phrase: got %q", phrase)
	}
}

func TestDecode_TGARequiresHint(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 6), EncodeOptions{Format: FormatTGA})

	_, err := Decode(data, ReadOptions{})
	if phrase := readErrorPhrase(t, err); phrase != PhraseNoDecodeDelegate {
		t.Errorf("without hint: got %q, want %q", phrase, PhraseNoDecodeDelegate)
	}

	src, err := Decode(data, ReadOptions{Format: "tga"})
	if err != nil {
		t.Fatalf("Decode with hint failed: %v", err)
	}
	if src.Format != FormatTGA {
		t.Errorf("Format: got %s, want TGA", src.Format)
	}
	if got := nrgbaAt(src.Image, 0, 0); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel (0,0): got %v, want red", got)
	}
	if got := nrgbaAt(src.Image, 7, 5); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel (7,5): got %v, want white", got)
	}
}

func TestDecode_UnknownHint(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatPNG})

	_, err := Decode(data, ReadOptions{Format: "XYZ"})
	if phrase := readErrorPhrase(t, err); phrase != PhraseNoDecodeDelegate {
		t.Errorf("phrase: got %q, want %q", phrase, PhraseNoDecodeDelegate)
	}
}

func TestDecode_MismatchedHint(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatPNG})

	if _, err := Decode(data, ReadOptions{Format: "JPEG"}); err == nil {
		t.Fatal("expected error when hint does not match data")
	}
}

func TestDecode_MemoryLimit(t *testing.T) {
	data := encodeFixture(t, createPatternImage(100, 100), EncodeOptions{Format: FormatPNG})

	_, err := Decode(data, ReadOptions{Limit: 100*100*4 - 1})
	if !errors.Is(err, ErrCacheExhausted) {
		t.Errorf("expected ErrCacheExhausted, got %v", err)
	}
	if err.Error() != "cache resources exhausted" {
		t.Errorf("message: got %q", err.Error())
	}

	if _, err := Decode(data, ReadOptions{Limit: 100 * 100 * 4}); err != nil {
		t.Errorf("Decode at exact limit failed: %v", err)
	}
}

func TestMemoryLimit_Check(t *testing.T) {
	var unlimited MemoryLimit
	if err := unlimited.Check(1<<20, 1<<20); err != nil {
		t.Errorf("zero limit should be unlimited, got %v", err)
	}
	if err := MemoryLimit(400).Check(10, 10); err != nil {
		t.Errorf("10x10 fits in 400 bytes, got %v", err)
	}
	if err := MemoryLimit(399).Check(10, 10); !errors.Is(err, ErrCacheExhausted) {
		t.Errorf("expected ErrCacheExhausted, got %v", err)
	}
}

func TestDecode_ExifOrientation(t *testing.T) {
	payload := exifPayload(6)
	data := encodeFixture(t, createPatternImage(30, 20), EncodeOptions{Format: FormatJPEG, Exif: payload})

	src, err := Decode(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Orientation != 6 {
		t.Errorf("Orientation: got %d, want 6", src.Orientation)
	}
	if !bytes.Equal(src.Exif, payload) {
		t.Error("Exif payload was not preserved")
	}
}

func TestDecode_MalformedExif(t *testing.T) {
	payload := append([]byte("Exif\x00\x00"), "XXXXXXXX"...)
	data := encodeFixture(t, createPatternImage(16, 16), EncodeOptions{Format: FormatJPEG, Exif: payload})

	_, err := Decode(data, ReadOptions{})
	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if !re.Warning {
		t.Error("malformed Exif should be reported as a warning")
	}

	var warned []error
	src, err := Decode(data, ReadOptions{IgnoreWarnings: true, Warn: func(err error) { warned = append(warned, err) }})
	if err != nil {
		t.Fatalf("Decode with IgnoreWarnings failed: %v", err)
	}
	if src.Orientation != 0 {
		t.Errorf("Orientation: got %d, want 0", src.Orientation)
	}
	if len(warned) != 1 {
		t.Errorf("expected one ignored warning, got %d", len(warned))
	}
}

func TestIdentify(t *testing.T) {
	data := encodeFixture(t, createPatternImage(64, 48), EncodeOptions{Format: FormatPNG, Density: 300})

	info, err := Identify(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", info.Width, info.Height)
	}
	if info.Format != FormatPNG {
		t.Errorf("Format: got %s, want PNG", info.Format)
	}
	if info.Depth != 8 {
		t.Errorf("Depth: got %d, want 8", info.Depth)
	}
	if info.Colorspace != ColorspaceSRGB {
		t.Errorf("Colorspace: got %s, want sRGB", info.Colorspace)
	}
	if info.Density != (Density{300, 300}) {
		t.Errorf("Density: got %+v, want 300x300", info.Density)
	}
	if info.Exif.Orientation != 0 {
		t.Errorf("Exif.Orientation: got %d, want 0", info.Exif.Orientation)
	}
}

func TestIdentify_GrayAndDeep(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		t.Fatalf("failed to encode gray fixture: %v", err)
	}
	info, err := Identify(buf.Bytes(), ReadOptions{})
	if err != nil {
		t.Fatalf("Identify gray failed: %v", err)
	}
	if info.Colorspace != ColorspaceGray {
		t.Errorf("Colorspace: got %s, want Gray", info.Colorspace)
	}

	deep := image.NewNRGBA64(image.Rect(0, 0, 4, 4))
	for i := range deep.Pix {
		deep.Pix[i] = byte(i * 7)
	}
	buf.Reset()
	if err := png.Encode(&buf, deep); err != nil {
		t.Fatalf("failed to encode 16-bit fixture: %v", err)
	}
	info, err = Identify(buf.Bytes(), ReadOptions{})
	if err != nil {
		t.Fatalf("Identify 16-bit failed: %v", err)
	}
	if info.Depth != 16 {
		t.Errorf("Depth: got %d, want 16", info.Depth)
	}
}

func TestIdentify_JPEGOrientation(t *testing.T) {
	data := encodeFixture(t, createPatternImage(30, 20), EncodeOptions{Format: FormatJPEG, Exif: exifPayload(3), Density: 72})

	info, err := Identify(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if info.Format != FormatJPEG {
		t.Errorf("Format: got %s, want JPEG", info.Format)
	}
	if info.Exif.Orientation != 3 {
		t.Errorf("Exif.Orientation: got %d, want 3", info.Exif.Orientation)
	}
	if info.Density != (Density{72, 72}) {
		t.Errorf("Density: got %+v, want 72x72", info.Density)
	}
}
