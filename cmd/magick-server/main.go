package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ironsheep/image-magick-go/internal/config"
	"github.com/ironsheep/image-magick-go/internal/httpapi"
	"github.com/ironsheep/image-magick-go/internal/magick"
	"github.com/ironsheep/image-magick-go/internal/server"
	"github.com/sirupsen/logrus"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("magick-server %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("magick-server - image conversion over MCP (stdio) or HTTP")
			fmt.Println()
			fmt.Println("Usage: magick-server [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Configuration is read from ./config/config.yaml and overridden by")
			fmt.Println("environment variables:")
			fmt.Println("  IMAGE_MAGICK_SERVER_TRANSPORT=stdio|http   Transport (default stdio)")
			fmt.Println("  IMAGE_MAGICK_SERVER_ADDR=:8080             HTTP listen address")
			fmt.Println("  IMAGE_MAGICK_MAGICK_MAX_MEMORY=<bytes>     Per-canvas memory ceiling")
			fmt.Println("  IMAGE_MAGICK_MAGICK_MAX_CONCURRENCY=<n>    Parallel async operations")
			fmt.Println("  IMAGE_MAGICK_LOG_LEVEL=debug               Log level")
			fmt.Println("  IMAGE_MAGICK_LOG_FORMAT=json               Log format")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	// Logs go to stderr; stdout carries the stdio protocol.
	log := cfg.Log.NewLogger()
	log.WithFields(logrus.Fields{
		"version":   Version,
		"built":     BuildTime,
		"commit":    GitCommit,
		"transport": cfg.Server.Transport,
	}).Debug("Image Magick Server starting")

	opts := []magick.Option{
		magick.WithLogger(log),
		magick.WithIgnoreWarnings(cfg.Magick.IgnoreWarnings),
	}
	if cfg.Magick.MaxMemory > 0 {
		opts = append(opts, magick.WithMaxMemory(cfg.Magick.MaxMemory))
	}
	if cfg.Magick.MaxConcurrency > 0 {
		opts = append(opts, magick.WithMaxConcurrency(cfg.Magick.MaxConcurrency))
	}
	m := magick.New(opts...)

	switch cfg.Server.Transport {
	case "stdio", "":
		if err := server.New(m, log, Version).Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case "http":
		runHTTP(cfg, m, log)
	default:
		log.Fatalf("unknown transport %q", cfg.Server.Transport)
	}
}

const shutdownTimeout = 10 * time.Second

func runHTTP(cfg *config.Config, m *magick.Magick, log *logrus.Logger) {
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.InitRoutes(httpapi.NewHandler(m, cfg.Server.MaxBodyBytes), log)
	srv := httpapi.NewServer(cfg.Server, router)
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	log.WithField("addr", cfg.Server.Addr).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("error occured on server shutting down: %s", err.Error())
	}
	m.Wait()
}
