package magick

import (
	"context"
)

// runAsync validates the call, then runs work on its own goroutine and hands
// the outcome to done. Argument errors are returned at once and done is not
// called for them.
func runAsync[T any](m *Magick, op string, o *Options, done func(T, error), work func(*Options) (T, error)) error {
	if err := validateAsync(op, o, done != nil); err != nil {
		return err
	}

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		if m.sem != nil {
			// Acquire only fails when the context is done; Background never is.
			_ = m.sem.Acquire(context.Background(), 1)
			defer m.sem.Release(1)
		}
		done(work(o))
	}()
	return nil
}

// ConvertAsync is the asynchronous form of Convert.
func (m *Magick) ConvertAsync(o *Options, done func([]byte, error)) error {
	return runAsync(m, OpConvert, o, done, m.Convert)
}

// IdentifyAsync is the asynchronous form of Identify.
func (m *Magick) IdentifyAsync(o *Options, done func(*IdentifyResult, error)) error {
	return runAsync(m, OpIdentify, o, done, m.Identify)
}

// CompositeAsync is the asynchronous form of Composite.
func (m *Magick) CompositeAsync(o *Options, done func([]byte, error)) error {
	return runAsync(m, OpComposite, o, done, m.Composite)
}

// QuantizeColorsAsync is the asynchronous form of QuantizeColors.
func (m *Magick) QuantizeColorsAsync(o *Options, done func([]Color, error)) error {
	return runAsync(m, OpQuantizeColors, o, done, m.QuantizeColors)
}

// GetConstPixelsAsync is the asynchronous form of GetConstPixels.
func (m *Magick) GetConstPixelsAsync(o *Options, done func([]Pixel, error)) error {
	return runAsync(m, OpGetConstPixels, o, done, m.GetConstPixels)
}
