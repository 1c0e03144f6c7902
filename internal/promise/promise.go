// Package promise adapts the asynchronous facade calls to futures.
//
// Each call returns a *Future at once. The future settles exactly once,
// with either a value or an error, when the facade delivers the outcome.
// Argument errors produce a future that is already rejected. There is no
// retry, timeout or cancellation of the work itself; a context passed to
// Await only bounds how long the caller waits.
package promise

import (
	"context"

	"github.com/ironsheep/image-magick-go/internal/magick"
)

// Future is the pending outcome of one operation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Rejected returns a future that has already failed with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.settle(*new(T), err)
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done, whichever is first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settled outcome without blocking. ok is false while
// the future is still pending.
func (f *Future[T]) Result() (v T, ok bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		return v, false, nil
	}
}

// Promises wraps a facade.
type Promises struct {
	m *magick.Magick
}

// New returns promise-style wrappers around m.
func New(m *magick.Magick) *Promises {
	return &Promises{m: m}
}

func start[T any](run func(*magick.Options, func(T, error)) error, o *magick.Options) *Future[T] {
	f := newFuture[T]()
	if err := run(o, f.settle); err != nil {
		return Rejected[T](err)
	}
	return f
}

// Convert starts a conversion.
func (p *Promises) Convert(o *magick.Options) *Future[[]byte] {
	return start(p.m.ConvertAsync, o)
}

// Identify starts an identification.
func (p *Promises) Identify(o *magick.Options) *Future[*magick.IdentifyResult] {
	return start(p.m.IdentifyAsync, o)
}

// Composite starts a composite.
func (p *Promises) Composite(o *magick.Options) *Future[[]byte] {
	return start(p.m.CompositeAsync, o)
}

// QuantizeColors starts a palette extraction.
func (p *Promises) QuantizeColors(o *magick.Options) *Future[[]magick.Color] {
	return start(p.m.QuantizeColorsAsync, o)
}

// GetConstPixels starts a pixel read.
func (p *Promises) GetConstPixels(o *magick.Options) *Future[[]magick.Pixel] {
	return start(p.m.GetConstPixelsAsync, o)
}
