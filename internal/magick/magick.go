// Package magick is the image conversion facade.
//
// A *Magick is built once with New and shared by every adapter and
// transport. Each operation takes an *Options record, validates it, runs
// the engine in internal/imaging and returns either a complete result or
// an *Error. Nothing is cached between calls, so a *Magick is safe for
// concurrent use.
//
// Every operation has a synchronous form (Convert) and an asynchronous form
// (ConvertAsync) that returns argument errors at once and delivers the
// result to a completion handler from another goroutine.
package magick

import (
	"sync"

	"github.com/ironsheep/image-magick-go/internal/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Operation names, as used in error messages and log fields.
const (
	OpConvert        = "convert"
	OpIdentify       = "identify"
	OpComposite      = "composite"
	OpQuantizeColors = "quantizeColors"
	OpGetConstPixels = "getConstPixels"
)

// Result types.
type (
	IdentifyResult = imaging.Info
	Color          = imaging.Color
	Pixel          = imaging.Pixel
)

// Magick runs conversion requests.
type Magick struct {
	log            *logrus.Logger
	sem            *semaphore.Weighted
	maxMemory      int64
	ignoreWarnings bool
	inflight       sync.WaitGroup
}

// Option configures a Magick.
type Option func(*Magick)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Magick) { m.log = l }
}

// WithMaxConcurrency bounds how many asynchronous operations run at once.
// Zero or less means unbounded.
func WithMaxConcurrency(n int64) Option {
	return func(m *Magick) {
		if n > 0 {
			m.sem = semaphore.NewWeighted(n)
		} else {
			m.sem = nil
		}
	}
}

// WithMaxMemory sets the memory ceiling, in bytes, applied when a request
// does not set its own.
func WithMaxMemory(bytes int64) Option {
	return func(m *Magick) { m.maxMemory = bytes }
}

// WithIgnoreWarnings makes every request tolerate non-fatal read problems.
func WithIgnoreWarnings(ignore bool) Option {
	return func(m *Magick) { m.ignoreWarnings = ignore }
}

// New creates a Magick.
func New(opts ...Option) *Magick {
	m := &Magick{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// QuantumDepth reports the per-channel precision of GetConstPixels values.
func (m *Magick) QuantumDepth() int {
	return imaging.QuantumDepth
}

// Version reports the engine version, dot-delimited.
func (m *Magick) Version() string {
	return imaging.Version()
}

// Wait blocks until every asynchronous operation started so far has
// delivered its result.
func (m *Magick) Wait() {
	m.inflight.Wait()
}

// logger returns the entry an operation logs through. A request with Debug
// set logs at debug level even when the shared logger is quieter.
func (m *Magick) logger(op string, o *Options) *logrus.Entry {
	l := m.log
	if o.Debug && !l.IsLevelEnabled(logrus.DebugLevel) {
		dl := logrus.New()
		dl.SetOutput(l.Out)
		dl.SetFormatter(l.Formatter)
		dl.SetLevel(logrus.DebugLevel)
		l = dl
	}
	return l.WithField("op", op)
}

func (m *Magick) readOptions(o *Options, log *logrus.Entry) imaging.ReadOptions {
	limit := o.MaxMemory
	if limit <= 0 {
		limit = m.maxMemory
	}
	return imaging.ReadOptions{
		Format:         o.SrcFormat,
		Limit:          imaging.MemoryLimit(limit),
		IgnoreWarnings: o.IgnoreWarnings || m.ignoreWarnings,
		Warn: func(err error) {
			log.WithError(err).Debug("ignoring warning")
		},
	}
}

// OutputFormat reports the canonical format of out, the bytes a Convert or
// Composite call with o produced.
func OutputFormat(o *Options, out []byte) string {
	if f, ok := imaging.NormalizeFormat(o.Format); ok {
		return f
	}
	if f := imaging.DetectFormat(out); f != "" {
		return f
	}
	if f, ok := imaging.NormalizeFormat(o.SrcFormat); ok {
		return f
	}
	return ""
}

// MimeType returns the media type of a canonical format tag.
func MimeType(format string) string {
	return imaging.MimeType(format)
}
