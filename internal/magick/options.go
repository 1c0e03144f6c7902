package magick

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Options is the request record shared by every operation. Each operation
// reads the fields it understands and ignores the rest.
type Options struct {
	// SrcData is the source image. Required by every operation.
	SrcData []byte `mapstructure:"srcData"`

	// CompositeData is the overlay image. Required by Composite.
	CompositeData []byte `mapstructure:"compositeData"`

	// SrcFormat is a source format hint that bypasses detection.
	SrcFormat string `mapstructure:"srcFormat"`

	// Width and Height are the target box. A zero edge takes the source's.
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	// ResizeStyle is aspectfill (default), aspectfit, fill, crop or aspectwithbg.
	ResizeStyle string `mapstructure:"resizeStyle"`

	// CropMode refines the aspectfill crop anchor, e.g. "top-left" or "none".
	CropMode string `mapstructure:"cropMode"`

	// Gravity anchors crops and composites.
	Gravity string `mapstructure:"gravity"`

	// XOffset and YOffset place the crop style's region and offset-based composites.
	XOffset int `mapstructure:"xoffset"`
	YOffset int `mapstructure:"yoffset"`

	Quality int    `mapstructure:"quality"`
	Format  string `mapstructure:"format"`
	Filter  string `mapstructure:"filter"`
	Density int    `mapstructure:"density"`

	Blur         float64 `mapstructure:"blur"`
	Brightness   float64 `mapstructure:"brightness"`
	Contrast     float64 `mapstructure:"contrast"`
	Opacity      float64 `mapstructure:"opacity"`
	OpacityColor string  `mapstructure:"opacityColor"`
	Rotate       float64 `mapstructure:"rotate"`
	Flip         bool    `mapstructure:"flip"`
	Background   string  `mapstructure:"background"`
	Colorspace   string  `mapstructure:"colorspace"`

	Strip      bool    `mapstructure:"strip"`
	Trim       bool    `mapstructure:"trim"`
	TrimFuzz   float64 `mapstructure:"trimFuzz"`
	AutoOrient bool    `mapstructure:"autoOrient"`

	// MaxMemory caps any single canvas, in bytes. Zero uses the facade default.
	MaxMemory      int64 `mapstructure:"maxMemory"`
	IgnoreWarnings bool  `mapstructure:"ignoreWarnings"`
	Debug          bool  `mapstructure:"debug"`

	// Colors is the QuantizeColors palette size. Zero means 5.
	Colors int `mapstructure:"colors"`

	// X, Y, Columns and Rows select the GetConstPixels region. A zero
	// Columns or Rows reads one pixel.
	X       int `mapstructure:"x"`
	Y       int `mapstructure:"y"`
	Columns int `mapstructure:"columns"`
	Rows    int `mapstructure:"rows"`
}

var bufferKeys = []string{"srcData", "compositeData"}

// OptionsFromRecord decodes a loosely typed record, as received by a
// transport, into Options. Keys match case-insensitively and scalar values
// are converted weakly ("200" becomes 200, 1 becomes true).
//
// Binary fields must be a []byte or a Buffer object of the form
// {"type": "Buffer", "data": <base64 string or byte array>}. Any other
// value for them, strings included, is an ArgumentError. A nil record is
// an ArgumentError too.
func OptionsFromRecord(op string, rec map[string]interface{}) (*Options, error) {
	if rec == nil {
		return nil, argumentError(op, requiresMessage(op))
	}

	rest := make(map[string]interface{}, len(rec))
	buffers := make(map[string][]byte, len(bufferKeys))
	for k, v := range rec {
		key := canonicalBufferKey(k)
		if key == "" {
			rest[k] = v
			continue
		}
		if v == nil {
			continue
		}
		b, ok := toBuffer(v)
		if !ok {
			return nil, argumentError(op, bufferMessage(op, key))
		}
		buffers[key] = b
	}

	o := &Options{SrcData: buffers["srcData"], CompositeData: buffers["compositeData"]}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           o,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(rest); err != nil {
		return nil, &Error{Op: op, Kind: ErrConfiguration, Err: err}
	}
	return o, nil
}

func canonicalBufferKey(k string) string {
	for _, b := range bufferKeys {
		if strings.EqualFold(k, b) {
			return b
		}
	}
	return ""
}

// toBuffer accepts the binary shapes a record may carry.
func toBuffer(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case map[string]interface{}:
		if t, _ := b["type"].(string); t != "Buffer" {
			return nil, false
		}
		switch data := b["data"].(type) {
		case string:
			raw, err := base64.StdEncoding.DecodeString(data)
			return raw, err == nil
		case []interface{}:
			return byteArray(data)
		case []byte:
			return data, true
		case nil:
			return []byte{}, true
		}
	}
	return nil, false
}

func byteArray(items []interface{}) ([]byte, bool) {
	out := make([]byte, len(items))
	for i, item := range items {
		var f float64
		switch n := item.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		case json.Number:
			v, err := n.Float64()
			if err != nil {
				return nil, false
			}
			f = v
		default:
			return nil, false
		}
		if f < 0 || f > 255 || f != math.Trunc(f) {
			return nil, false
		}
		out[i] = byte(f)
	}
	return out, true
}

// BufferRecord renders data as the Buffer object form OptionsFromRecord accepts.
func BufferRecord(data []byte) map[string]interface{} {
	return map[string]interface{}{"type": "Buffer", "data": base64.StdEncoding.EncodeToString(data)}
}

func requiresMessage(op string) string {
	return fmt.Sprintf("%s() requires 1 (option) argument!", op)
}

func bufferMessage(op, key string) string {
	return fmt.Sprintf("%s()'s 1st argument should have \"%s\" key with a Buffer instance", op, key)
}

func callbackMessage(op string) string {
	return fmt.Sprintf("%s()'s 2nd argument should be a function", op)
}
