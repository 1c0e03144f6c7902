package magick

import (
	"errors"

	"github.com/ironsheep/image-magick-go/internal/imaging"
)

// Error kinds. Match them with errors.Is:
//
//	if errors.Is(err, magick.ErrDecode) { ... }
var (
	// ErrArgument reports a missing or malformed call argument, such as a
	// nil options record or srcData that is not binary.
	ErrArgument = errors.New("ArgumentError")

	// ErrConfiguration reports a recognised option holding an invalid value.
	ErrConfiguration = errors.New("ConfigurationError")

	// ErrDecode reports input bytes that cannot be read as an image.
	ErrDecode = errors.New("DecodeError")

	// ErrResourceExhausted reports an operation that exceeded its memory ceiling.
	ErrResourceExhausted = errors.New("ResourceExhaustedError")
)

// Error is returned by every facade operation. Its message is the
// underlying message, unchanged; Kind classifies it.
type Error struct {
	// Op is the operation name, e.g. "convert".
	Op string
	// Kind is one of the Err* kinds, or nil when the failure is unclassified.
	Kind error
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is e's kind.
func (e *Error) Is(target error) bool { return e.Kind != nil && target == e.Kind }

// KindOf returns the name of err's kind ("ArgumentError", "DecodeError", ...)
// or "" when err is not a classified facade error.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind.Error()
	}
	return ""
}

func argumentError(op, msg string) error {
	return &Error{Op: op, Kind: ErrArgument, Err: errors.New(msg)}
}

var configurationErrors = []error{
	imaging.ErrUnsupportedResizeStyle,
	imaging.ErrUnsupportedFilter,
	imaging.ErrUnsupportedGravity,
	imaging.ErrUnsupportedCropMode,
	imaging.ErrUnsupportedColorspace,
	imaging.ErrInvalidColor,
	imaging.ErrInvalidGeometry,
	imaging.ErrNoEncodeDelegate,
	imaging.ErrUnknownFormat,
}

// classify wraps an engine error in an *Error of the matching kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	var kind error
	var re *imaging.ReadError
	switch {
	case errors.As(err, &re):
		kind = ErrDecode
	case errors.Is(err, imaging.ErrCacheExhausted):
		kind = ErrResourceExhausted
	default:
		for _, c := range configurationErrors {
			if errors.Is(err, c) {
				kind = ErrConfiguration
				break
			}
		}
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
