package imaging

import (
	"errors"
	"fmt"
)

// Option errors. Their messages are part of the public contract and must not change.
var (
	ErrUnsupportedResizeStyle = errors.New("resizeStyle not supported")
	ErrUnsupportedFilter      = errors.New("filter not supported")
	ErrUnsupportedGravity     = errors.New("gravity not supported")
	ErrUnsupportedCropMode    = errors.New("cropMode not supported")
	ErrUnsupportedColorspace  = errors.New("colorspace not supported")
	ErrInvalidColor           = errors.New("unrecognized color")
	ErrInvalidGeometry        = errors.New("x/y/columns/rows values are beyond the image's dimensions")
	ErrNoEncodeDelegate       = errors.New("no encode delegate for this image format")
	ErrUnknownFormat          = errors.New(PhraseNoDecodeDelegate)
)

// ErrCacheExhausted is returned when an image or an intermediate canvas would
// exceed the configured memory ceiling.
var ErrCacheExhausted = errors.New("cache resources exhausted")

// Decode failure phrases reported in ReadError messages.
const (
	PhraseNoDecodeDelegate = "no decode delegate for this image format"
	PhraseImproperHeader   = "improper image header"
	PhraseCRC              = "CRC error"
	PhraseCorrupt          = "corrupt image"
	PhraseInsufficientData = "insufficient image data"
)

// DecodePhrases lists every phrase a ReadError message can carry.
var DecodePhrases = []string{
	PhraseNoDecodeDelegate,
	PhraseImproperHeader,
	PhraseCRC,
	PhraseCorrupt,
	PhraseInsufficientData,
}

// ReadError reports input bytes that cannot be interpreted as an image
// (or as the hinted format).
type ReadError struct {
	// Phrase is one of DecodePhrases.
	Phrase string
	// Format is the detected or hinted format tag, if known.
	Format string
	// Warning is set when the failure is a non-fatal condition promoted to an error.
	Warning bool
	Err     error
}

func (e *ReadError) Error() string {
	msg := "image.read failed with error: " + e.Phrase
	if e.Format != "" {
		msg += fmt.Sprintf(" `%s'", e.Format)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReadError) Unwrap() error { return e.Err }

// unknownFormat reports an output or hint tag that names no known format.
func unknownFormat(tag string) error {
	return fmt.Errorf("%w `%s'", ErrUnknownFormat, tag)
}
