package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ironsheep/image-magick-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	router, _ := newRouter(t, 0)
	srv := NewServer(config.ServerConfig{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 7 * time.Second,
	}, router)

	assert.Equal(t, "127.0.0.1:0", srv.httpServer.Addr)
	assert.Equal(t, 5*time.Second, srv.httpServer.ReadTimeout)
	assert.Equal(t, 7*time.Second, srv.httpServer.WriteTimeout)
	assert.Same(t, router, srv.httpServer.Handler)
}

func TestServerShutdownBeforeRun(t *testing.T) {
	router, _ := newRouter(t, 0)
	srv := NewServer(config.ServerConfig{Addr: "127.0.0.1:0"}, router)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.ErrorIs(t, srv.Run(), http.ErrServerClosed)
}

func TestServerShutdownWhileRunning(t *testing.T) {
	router, _ := newRouter(t, 0)
	srv := NewServer(config.ServerConfig{Addr: "127.0.0.1:0"}, router)

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-ctx.Done():
		t.Fatal("Run did not return after Shutdown")
	}
}
