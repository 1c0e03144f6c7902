package promise

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/ironsheep/image-magick-go/internal/magick"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newPromises(opts ...magick.Option) *Promises {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(magick.New(append([]magick.Option{magick.WithLogger(l)}, opts...)...))
}

func TestConvertResolves(t *testing.T) {
	p := newPromises()
	f := p.Convert(&magick.Options{SrcData: createPNG(t, 8, 8), Width: 4, Height: 4, Format: "GIF"})

	out, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GIF8", string(out[:4]))

	_, ok, err := f.Result()
	assert.True(t, ok)
	assert.NoError(t, err)
	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed after Await returns")
	}
}

func TestArgumentErrorRejectsImmediately(t *testing.T) {
	p := newPromises()

	f := p.Identify(nil)
	_, ok, err := f.Result()
	require.True(t, ok, "argument errors settle the future at once")
	assert.True(t, errors.Is(err, magick.ErrArgument))
	assert.Equal(t, "identify() requires 1 (option) argument!", err.Error())

	c := p.Composite(&magick.Options{SrcData: createPNG(t, 2, 2)})
	_, err = c.Await(context.Background())
	assert.Equal(t, `composite()'s 1st argument should have "compositeData" key with a Buffer instance`, err.Error())
}

func TestDecodeErrorRejects(t *testing.T) {
	p := newPromises()
	_, err := p.QuantizeColors(&magick.Options{SrcData: []byte("nope")}).Await(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, magick.ErrDecode))
}

func TestAllOperations(t *testing.T) {
	p := newPromises(magick.WithMaxConcurrency(1))
	src := createPNG(t, 6, 4)
	ctx := context.Background()

	info, err := p.Identify(&magick.Options{SrcData: src}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, info.Width)

	colors, err := p.QuantizeColors(&magick.Options{SrcData: src, Colors: 3}).Await(ctx)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Equal(t, "ff0000", colors[0].Hex)

	pixels, err := p.GetConstPixels(&magick.Options{SrcData: src, Columns: 2, Rows: 1}).Await(ctx)
	require.NoError(t, err)
	require.Len(t, pixels, 2)
	assert.Equal(t, uint16(65535), pixels[1].Red)

	out, err := p.Composite(&magick.Options{SrcData: src, CompositeData: createPNG(t, 2, 2), Gravity: "Center"}).Await(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestAwaitHonoursContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok, _ := f.Result()
	assert.False(t, ok)

	f.settle(42, nil)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
