// Package httpapi serves the conversion facade over HTTP.
//
// Image bytes travel as raw request bodies (multipart for composite) and
// options as query parameters, e.g.
//
//	POST /v1/convert?width=200&height=200&format=jpg
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ironsheep/image-magick-go/internal/config"
	"github.com/sirupsen/logrus"
)

// InitRoutes builds the router.
func InitRoutes(h *Handler, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Logger(log), gin.Recovery())

	v1 := router.Group("/v1")
	{
		v1.POST("/convert", h.Convert)
		v1.POST("/identify", h.Identify)
		v1.POST("/composite", h.Composite)
		v1.POST("/quantize", h.QuantizeColors)
		v1.POST("/pixels", h.GetConstPixels)
		v1.GET("/version", h.Version)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "image-magick",
		})
	})
	return router
}

// Server is the HTTP listener.
type Server struct {
	httpServer *http.Server
}

// NewServer prepares a listener on cfg.Addr serving handler.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:           cfg.Addr,
			Handler:        handler,
			MaxHeaderBytes: 1 << 20,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
		},
	}
}

// Run listens until Shutdown. It returns http.ErrServerClosed after a
// Shutdown, including one that came first.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
