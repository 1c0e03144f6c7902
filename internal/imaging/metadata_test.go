package imaging

import (
	"bytes"
	"testing"
)

func TestDensity_PNG(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatPNG, Density: 300})

	if got := readDensity(FormatPNG, data); got != (Density{300, 300}) {
		t.Errorf("density: got %+v, want 300x300", got)
	}
	// The inserted chunk must not break decoding.
	if _, err := Decode(data, ReadOptions{}); err != nil {
		t.Errorf("Decode failed after pHYs insertion: %v", err)
	}
}

func TestDensity_JPEG(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatJPEG, Density: 150})

	if got := readDensity(FormatJPEG, data); got != (Density{150, 150}) {
		t.Errorf("density: got %+v, want 150x150", got)
	}
}

func TestDensity_Absent(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatPNG})

	if got := readDensity(FormatPNG, data); got != (Density{}) {
		t.Errorf("density: got %+v, want zero", got)
	}
}

func TestJPEGSegmentOrder(t *testing.T) {
	payload := exifPayload(1)
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatJPEG, Density: 72, Exif: payload})

	var markers []byte
	jpegSegments(data, func(marker byte, _ []byte) bool {
		markers = append(markers, marker)
		return true
	})
	if len(markers) < 2 || markers[0] != markerAPP0 || markers[1] != markerAPP1 {
		t.Errorf("expected JFIF then Exif after SOI, got markers %x", markers)
	}
	if !bytes.Equal(extractExif(data), payload) {
		t.Error("extractExif did not return the inserted payload")
	}
}

func TestExtractExif_None(t *testing.T) {
	data := encodeFixture(t, createPatternImage(8, 8), EncodeOptions{Format: FormatJPEG})

	if raw := extractExif(data); raw != nil {
		t.Errorf("expected no Exif, got %d bytes", len(raw))
	}
}

func TestExifOrientation(t *testing.T) {
	for o := uint16(1); o <= 8; o++ {
		got, err := exifOrientation(exifPayload(o))
		if err != nil {
			t.Errorf("orientation %d: %v", o, err)
			continue
		}
		if got != int(o) {
			t.Errorf("orientation: got %d, want %d", got, o)
		}
	}
}

func TestInsertJPEGSegment_TooLarge(t *testing.T) {
	jpg := []byte{0xff, markerSOI, 0xff, 0xd9}

	out := insertJPEGSegment(jpg, markerAPP1, make([]byte, 70000))
	if !bytes.Equal(out, jpg) {
		t.Error("oversized payload should be dropped")
	}
}
