package imaging

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// Truevision TGA has no file signature, so it is not registered with the
// image package and can only be read with an explicit format hint.

const tgaHeaderLen = 18

const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

var (
	errTGAHeader      = errors.New("tga: invalid header")
	errTGAUnsupported = errors.New("tga: unsupported image type")
	errTGACorrupt     = errors.New("tga: run-length packet overflows image")
	errTGATooLarge    = errors.New("tga: image dimensions exceed 65535")
)

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	cmapLength   int
	cmapDepth    int
	width        int
	height       int
	depth        int
	descriptor   byte
}

func (h tgaHeader) colorMapBytes() int {
	if h.colorMapType == 0 {
		return 0
	}
	return h.cmapLength * ((h.cmapDepth + 7) / 8)
}

func (h tgaHeader) gray() bool {
	return h.imageType == tgaGray || h.imageType == tgaGrayRLE
}

func (h tgaHeader) rle() bool {
	return h.imageType == tgaTrueColorRLE || h.imageType == tgaGrayRLE
}

func readTGAHeader(r io.Reader) (tgaHeader, error) {
	var b [tgaHeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return tgaHeader{}, err
	}
	h := tgaHeader{
		idLength:     int(b[0]),
		colorMapType: b[1],
		imageType:    b[2],
		cmapLength:   int(binary.LittleEndian.Uint16(b[5:])),
		cmapDepth:    int(b[7]),
		width:        int(binary.LittleEndian.Uint16(b[12:])),
		height:       int(binary.LittleEndian.Uint16(b[14:])),
		depth:        int(b[16]),
		descriptor:   b[17],
	}
	if h.colorMapType > 1 || h.width == 0 || h.height == 0 {
		return h, errTGAHeader
	}
	switch h.imageType {
	case tgaTrueColor, tgaTrueColorRLE:
		if h.depth != 24 && h.depth != 32 {
			return h, errTGAUnsupported
		}
	case tgaGray, tgaGrayRLE:
		if h.depth != 8 {
			return h, errTGAUnsupported
		}
	default:
		return h, errTGAUnsupported
	}
	return h, nil
}

func decodeTGAConfig(r io.Reader) (image.Config, error) {
	h, err := readTGAHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	model := color.NRGBAModel
	if h.gray() {
		model = color.GrayModel
	}
	return image.Config{ColorModel: model, Width: h.width, Height: h.height}, nil
}

func decodeTGA(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	h, err := readTGAHeader(br)
	if err != nil {
		return nil, err
	}
	if _, err := br.Discard(h.idLength + h.colorMapBytes()); err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}

	bpp := h.depth / 8
	n := h.width * h.height
	if n > tgaMaxPixels(len(body), bpp, h.rle()) {
		return nil, io.ErrUnexpectedEOF
	}

	raw := body
	if h.rle() {
		raw = make([]byte, n*bpp)
		if err := readTGARLE(bytes.NewReader(body), raw, bpp); err != nil {
			return nil, err
		}
	}

	topDown := h.descriptor&0x20 != 0
	rightToLeft := h.descriptor&0x10 != 0
	hasAlpha := bpp == 4 && h.descriptor&0x0f != 0

	var dst draw8
	if h.gray() {
		dst = image.NewGray(image.Rect(0, 0, h.width, h.height))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	}

	for i := 0; i < h.width*h.height; i++ {
		x, y := i%h.width, i/h.width
		if !topDown {
			y = h.height - 1 - y
		}
		if rightToLeft {
			x = h.width - 1 - x
		}
		p := raw[i*bpp : i*bpp+bpp]
		switch bpp {
		case 1:
			dst.Set(x, y, color.Gray{Y: p[0]})
		case 3:
			dst.Set(x, y, color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xff})
		case 4:
			a := byte(0xff)
			if hasAlpha {
				a = p[3]
			}
			dst.Set(x, y, color.NRGBA{R: p[2], G: p[1], B: p[0], A: a})
		}
	}
	return dst, nil
}

// tgaMaxPixels is the most pixels size bytes of pixel data can describe.
// A run-length packet covers at most 128 pixels.
func tgaMaxPixels(size, bpp int, rle bool) int {
	if rle {
		return size / (1 + bpp) * 128
	}
	return size / bpp
}

// draw8 is the subset of the 8-bit image types decodeTGA writes into.
type draw8 interface {
	image.Image
	Set(x, y int, c color.Color)
}

func readTGARLE(r *bytes.Reader, dst []byte, bpp int) error {
	for off := 0; off < len(dst); {
		hdr, err := r.ReadByte()
		if err != nil {
			return io.ErrUnexpectedEOF
		}
		count := int(hdr&0x7f) + 1
		size := count * bpp
		if off+size > len(dst) {
			return errTGACorrupt
		}
		if hdr&0x80 != 0 {
			px := dst[off : off+bpp]
			if _, err := io.ReadFull(r, px); err != nil {
				return io.ErrUnexpectedEOF
			}
			for i := 1; i < count; i++ {
				copy(dst[off+i*bpp:], px)
			}
		} else if _, err := io.ReadFull(r, dst[off:off+size]); err != nil {
			return io.ErrUnexpectedEOF
		}
		off += size
	}
	return nil
}

// encodeTGA writes an uncompressed 32-bit top-left TGA.
func encodeTGA(w io.Writer, img image.Image, _ int) error {
	src := imaging.Clone(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	if width > 0xffff || height > 0xffff {
		return errTGATooLarge
	}

	var hdr [tgaHeaderLen]byte
	hdr[2] = tgaTrueColor
	binary.LittleEndian.PutUint16(hdr[12:], uint16(width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(height))
	hdr[16] = 32
	hdr[17] = 0x28 // 8 alpha bits, top-left origin

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	row := make([]byte, width*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*src.Stride + x*4
			row[x*4+0] = src.Pix[i+2]
			row[x*4+1] = src.Pix[i+1]
			row[x*4+2] = src.Pix[i+0]
			row[x*4+3] = src.Pix[i+3]
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
