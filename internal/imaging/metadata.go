package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"

	"github.com/rwcarlsen/goexif/exif"
)

const (
	markerSOI  = 0xd8
	markerSOS  = 0xda
	markerAPP0 = 0xe0
	markerAPP1 = 0xe1
)

var (
	exifHeader = []byte("Exif\x00\x00")
	jfifHeader = []byte("JFIF\x00")
	pngMagic   = []byte("\x89PNG\r\n\x1a\n")
)

// Density is an image resolution in pixels per inch.
type Density struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// jpegSegments calls fn for every marker segment before the scan data.
// fn returns false to stop early.
func jpegSegments(data []byte, fn func(marker byte, payload []byte) bool) {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return
	}
	for i := 2; i+4 <= len(data); {
		if data[i] != 0xff {
			return
		}
		marker := data[i+1]
		if marker == 0xff {
			i++
			continue
		}
		if marker == markerSOS {
			return
		}
		n := int(binary.BigEndian.Uint16(data[i+2:]))
		if n < 2 || i+2+n > len(data) {
			return
		}
		if !fn(marker, data[i+4:i+2+n]) {
			return
		}
		i += 2 + n
	}
}

// insertJPEGSegment places a marker segment directly after SOI. Payloads too
// large for a single segment are dropped.
func insertJPEGSegment(jpg []byte, marker byte, payload []byte) []byte {
	if len(jpg) < 2 || len(payload)+2 > math.MaxUint16 {
		return jpg
	}
	seg := make([]byte, 4, 4+len(payload))
	seg[0], seg[1] = 0xff, marker
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

func jfifSegment(dpi int) []byte {
	b := make([]byte, 0, 14)
	b = append(b, jfifHeader...)
	b = append(b, 1, 1, 1) // version 1.01, units dpi
	b = binary.BigEndian.AppendUint16(b, uint16(clampInt(dpi, 1, math.MaxUint16)))
	b = binary.BigEndian.AppendUint16(b, uint16(clampInt(dpi, 1, math.MaxUint16)))
	return append(b, 0, 0)
}

// insertPNGChunk places a chunk directly after IHDR.
func insertPNGChunk(p []byte, typ string, data []byte) []byte {
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	if len(p) < ihdrEnd || !bytes.HasPrefix(p, pngMagic) {
		return p
	}
	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	chunk = append(chunk, typ...)
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(p)+len(chunk))
	out = append(out, p[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, p[ihdrEnd:]...)
}

func physChunk(dpi int) []byte {
	ppm := uint32(math.Round(float64(dpi) / 0.0254))
	b := binary.BigEndian.AppendUint32(nil, ppm)
	b = binary.BigEndian.AppendUint32(b, ppm)
	return append(b, 1) // unit: metre
}

// readDensity reports the resolution recorded in a JPEG JFIF header or a PNG
// pHYs chunk. Images without one report zero.
func readDensity(format string, data []byte) Density {
	var d Density
	switch format {
	case FormatJPEG:
		jpegSegments(data, func(marker byte, payload []byte) bool {
			if marker != markerAPP0 || len(payload) < 12 || !bytes.HasPrefix(payload, jfifHeader) {
				return true
			}
			x := float64(binary.BigEndian.Uint16(payload[8:]))
			y := float64(binary.BigEndian.Uint16(payload[10:]))
			switch payload[7] {
			case 1:
				d = Density{int(x), int(y)}
			case 2:
				d = Density{int(math.Round(x * 2.54)), int(math.Round(y * 2.54))}
			}
			return false
		})
	case FormatPNG:
		if !bytes.HasPrefix(data, pngMagic) {
			return d
		}
		for i := len(pngMagic); i+12 <= len(data); {
			n := int(binary.BigEndian.Uint32(data[i:]))
			typ := string(data[i+4 : i+8])
			if n < 0 || i+12+n > len(data) || typ == "IDAT" {
				break
			}
			if typ == "pHYs" && n == 9 && data[i+16] == 1 {
				x := float64(binary.BigEndian.Uint32(data[i+8:]))
				y := float64(binary.BigEndian.Uint32(data[i+12:]))
				d = Density{int(math.Round(x * 0.0254)), int(math.Round(y * 0.0254))}
				break
			}
			i += 12 + n
		}
	}
	return d
}

// extractExif returns the APP1 Exif payload of a JPEG, or nil.
func extractExif(data []byte) []byte {
	var raw []byte
	jpegSegments(data, func(marker byte, payload []byte) bool {
		if marker == markerAPP1 && bytes.HasPrefix(payload, exifHeader) {
			raw = bytes.Clone(payload)
			return false
		}
		return true
	})
	return raw
}

// exifOrientation reads the orientation tag (1-8) from an Exif payload.
// A missing tag yields 0; an unreadable block is an error.
func exifOrientation(raw []byte) (int, error) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		var missing exif.TagNotPresentError
		if errors.As(err, &missing) {
			return 0, nil
		}
		return 0, err
	}
	o, err := tag.Int(0)
	if err != nil {
		return 0, err
	}
	if o < 1 || o > 8 {
		return 0, nil
	}
	return o, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
