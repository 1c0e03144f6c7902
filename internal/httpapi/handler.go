package httpapi

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironsheep/image-magick-go/internal/magick"
	"github.com/ironsheep/image-magick-go/internal/stream"
)

// Handler serves the facade operations.
type Handler struct {
	magick  *magick.Magick
	maxBody int64
}

// NewHandler returns a Handler. maxBody caps request bodies in bytes; zero
// means no cap.
func NewHandler(m *magick.Magick, maxBody int64) *Handler {
	return &Handler{magick: m, maxBody: maxBody}
}

// Convert streams the request body through a conversion and replies with
// the converted image.
func (h *Handler) Convert(c *gin.Context) {
	o, ok := h.options(c, magick.OpConvert)
	if !ok {
		return
	}

	var out bytes.Buffer
	if err := stream.Pipe(&out, h.body(c), stream.NewConvert(h.magick, *o)); err != nil {
		h.fail(c, err)
		return
	}
	format := magick.OutputFormat(o, out.Bytes())
	c.Data(http.StatusOK, magick.MimeType(format), out.Bytes())
}

// Identify replies with the JSON description of the request body.
func (h *Handler) Identify(c *gin.Context) {
	o, ok := h.options(c, magick.OpIdentify)
	if !ok {
		return
	}

	s := stream.NewIdentify(h.magick, *o)
	if _, err := s.ReadFrom(h.body(c)); err != nil {
		h.fail(c, err)
		return
	}
	if err := s.Close(); err != nil {
		h.fail(c, err)
		return
	}
	info, err := s.Next()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Composite takes multipart parts "src" and "composite" and replies with
// the composited image.
func (h *Handler) Composite(c *gin.Context) {
	o, ok := h.options(c, magick.OpComposite)
	if !ok {
		return
	}
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}

	var err error
	if o.SrcData, err = formFile(c, "src"); err != nil {
		h.fail(c, err)
		return
	}
	if o.CompositeData, err = formFile(c, "composite"); err != nil {
		h.fail(c, err)
		return
	}

	out, err := h.magick.Composite(o)
	if err != nil {
		h.fail(c, err)
		return
	}
	format := magick.OutputFormat(o, out)
	c.Data(http.StatusOK, magick.MimeType(format), out)
}

// QuantizeColors replies with the dominant colors of the request body.
func (h *Handler) QuantizeColors(c *gin.Context) {
	o, ok := h.readAll(c, magick.OpQuantizeColors)
	if !ok {
		return
	}
	colors, err := h.magick.QuantizeColors(o)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, colors)
}

// GetConstPixels replies with a region of pixels of the request body.
func (h *Handler) GetConstPixels(c *gin.Context) {
	o, ok := h.readAll(c, magick.OpGetConstPixels)
	if !ok {
		return
	}
	pixels, err := h.magick.GetConstPixels(o)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pixels)
}

// Version reports the engine version and quantum depth.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":      h.magick.Version(),
		"quantumDepth": h.magick.QuantumDepth(),
	})
}

// options decodes the query string into facade options. On failure it
// writes the error response and returns false.
func (h *Handler) options(c *gin.Context, op string) (*magick.Options, bool) {
	rec := make(map[string]interface{})
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			rec[k] = v[0]
		}
	}
	o, err := magick.OptionsFromRecord(op, rec)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return o, true
}

func (h *Handler) readAll(c *gin.Context, op string) (*magick.Options, bool) {
	o, ok := h.options(c, op)
	if !ok {
		return nil, false
	}
	data, err := io.ReadAll(h.body(c))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	o.SrcData = data
	return o, true
}

func (h *Handler) body(c *gin.Context) io.Reader {
	if h.maxBody > 0 {
		return http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	return c.Request.Body
}

// missingPartError reports a composite request without one of its parts.
type missingPartError struct{ name string }

func (e missingPartError) Error() string { return "missing multipart file " + e.name }

func formFile(c *gin.Context, name string) ([]byte, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, missingPartError{name}
		}
		return nil, err
	}
	return readPart(fh)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fail writes err as a JSON error with a status derived from its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{
		"error":      err.Error(),
		"kind":       magick.KindOf(err),
		"request_id": c.GetString(requestIDKey),
	})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	var missing missingPartError
	switch {
	case errors.Is(err, magick.ErrArgument), errors.Is(err, magick.ErrConfiguration), errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.Is(err, magick.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, magick.ErrResourceExhausted), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
