// Command magick-install copies the engine's runtime libraries into a
// release directory on Windows:
//
//	magick-install [releaseDir]
//
// releaseDir defaults to build/Release. Set IMAGE_MAGICK_LIB_PATH to skip
// the registry lookup.
package main

import (
	"os"

	"github.com/ironsheep/image-magick-go/internal/config"
	"github.com/ironsheep/image-magick-go/internal/install"
)

const defaultReleaseDir = "build/Release"

func main() {
	releaseDir := defaultReleaseDir
	if len(os.Args) > 1 {
		releaseDir = os.Args[1]
	}

	log := config.LogConfig{
		Level:  config.GetEnv(config.EnvPrefix+"_LOG_LEVEL", "info"),
		Format: config.GetEnv(config.EnvPrefix+"_LOG_FORMAT", "text"),
	}.NewLogger()

	if err := install.New(log).Run(releaseDir); err != nil {
		log.WithError(err).Error("Failed")
		os.Exit(1)
	}
}
