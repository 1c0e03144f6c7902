// Package stream adapts the conversion facade to io interfaces.
//
// A stream is single pass. Bytes written to it are buffered in full until
// Close, which runs exactly one facade call with the buffer as SrcData. The
// result (bytes for Convert, a record for Identify) is then readable once.
// There is no incremental decoding.
//
//	c := stream.NewConvert(m, magick.Options{Width: 100, Format: "PNG"})
//	io.Copy(c, file)
//	c.Close()
//	io.Copy(out, c)
package stream

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/ironsheep/image-magick-go/internal/magick"
)

var (
	// ErrNotFlushed is returned by reads before Close has run the conversion.
	ErrNotFlushed = errors.New("stream: read before close")
	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("stream: write after close")
)

// Converter is the facade call a Convert stream runs.
type Converter interface {
	Convert(o *magick.Options) ([]byte, error)
}

// Identifier is the facade call an Identify stream runs.
type Identifier interface {
	Identify(o *magick.Options) (*magick.IdentifyResult, error)
}

// Transform is a write-then-close stage whose output can be read back.
type Transform interface {
	io.WriteCloser
	io.Reader
}

// sink buffers the writable side of a stream and records whether it has
// been closed.
type sink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (s *sink) write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.buf.Write(p)
}

func (s *sink) readFrom(r io.Reader) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.buf.ReadFrom(r)
}

// close marks the sink closed and returns the buffered bytes. ok is false
// when it was already closed.
func (s *sink) close() (data []byte, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	s.closed = true
	data = bytes.Clone(s.buf.Bytes())
	if data == nil {
		data = []byte{}
	}
	s.buf.Reset()
	return data, true
}

// Convert is a byte-mode conversion stream.
type Convert struct {
	conv Converter
	opts magick.Options
	in   sink

	mu   sync.Mutex
	out  *bytes.Reader
	err  error
	done bool
}

// NewConvert returns a stream that converts everything written to it with
// opts. opts.SrcData is replaced by the written bytes.
func NewConvert(conv Converter, opts magick.Options) *Convert {
	return &Convert{conv: conv, opts: opts}
}

// Write buffers p.
func (c *Convert) Write(p []byte) (int, error) {
	return c.in.write(p)
}

// ReadFrom buffers everything r yields.
func (c *Convert) ReadFrom(r io.Reader) (int64, error) {
	return c.in.readFrom(r)
}

// Close runs the conversion and returns its error, if any. Closing twice is
// a no-op that returns the first result's error.
func (c *Convert) Close() error {
	data, ok := c.in.close()
	if !ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.err
	}

	o := c.opts
	o.SrcData = data
	out, err := c.conv.Convert(&o)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	c.err = err
	if err == nil {
		c.out = bytes.NewReader(out)
	}
	return err
}

// Read reads the converted bytes, then io.EOF.
func (c *Convert) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		return 0, ErrNotFlushed
	}
	if c.err != nil {
		return 0, c.err
	}
	return c.out.Read(p)
}

// WriteTo writes the converted bytes to w.
func (c *Convert) WriteTo(w io.Writer) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		return 0, ErrNotFlushed
	}
	if c.err != nil {
		return 0, c.err
	}
	return c.out.WriteTo(w)
}

// Identify is an object-mode stream yielding one *magick.IdentifyResult.
type Identify struct {
	ident Identifier
	opts  magick.Options
	in    sink

	mu       sync.Mutex
	result   *magick.IdentifyResult
	err      error
	done     bool
	consumed bool
}

// NewIdentify returns a stream that identifies everything written to it.
func NewIdentify(ident Identifier, opts magick.Options) *Identify {
	return &Identify{ident: ident, opts: opts}
}

// Write buffers p.
func (s *Identify) Write(p []byte) (int, error) {
	return s.in.write(p)
}

// ReadFrom buffers everything r yields.
func (s *Identify) ReadFrom(r io.Reader) (int64, error) {
	return s.in.readFrom(r)
}

// Close runs the identification.
func (s *Identify) Close() error {
	data, ok := s.in.close()
	if !ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.err
	}

	o := s.opts
	o.SrcData = data
	res, err := s.ident.Identify(&o)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.result, s.err = res, err
	return err
}

// Next returns the result on the first call after Close and io.EOF after that.
func (s *Identify) Next() (*magick.IdentifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.done:
		return nil, ErrNotFlushed
	case s.err != nil:
		return nil, s.err
	case s.consumed:
		return nil, io.EOF
	}
	s.consumed = true
	return s.result, nil
}

// Pipe copies src through t into dst: everything from src is written to t,
// t is closed, and its output is copied to dst.
func Pipe(dst io.Writer, src io.Reader, t Transform) error {
	if _, err := io.Copy(t, src); err != nil {
		return err
	}
	if err := t.Close(); err != nil {
		return err
	}
	_, err := io.Copy(dst, t)
	return err
}
