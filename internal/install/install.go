// Package install copies the native engine's runtime libraries next to the
// release binary on Windows. On every other platform it does nothing.
package install

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ironsheep/image-magick-go/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// LibPathEnv overrides the registry lookup when set.
const LibPathEnv = "IMAGE_MAGICK_LIB_PATH"

// ErrNoLibPath is returned when neither the environment nor the registry
// names the library directory.
var ErrNoLibPath = errors.New("install: ImageMagick library path not found")

// LibPathFinder locates the directory holding the engine's libraries.
type LibPathFinder interface {
	LibPath() (string, error)
}

// Installer copies library files into a release directory.
type Installer struct {
	Fs     afero.Fs
	Finder LibPathFinder
	Log    *logrus.Logger
	goos   string
}

// New returns an Installer for the running platform, using the OS
// filesystem and the registry.
func New(log *logrus.Logger) *Installer {
	return &Installer{
		Fs:     afero.NewOsFs(),
		Finder: registryFinder{},
		Log:    log,
		goos:   runtime.GOOS,
	}
}

// Run copies every *.dll in the library directory into releaseDir.
func (in *Installer) Run(releaseDir string) error {
	if in.goos != "windows" {
		return nil
	}
	libPath, err := in.libPath()
	if err != nil {
		return err
	}

	entries, err := afero.ReadDir(in.Fs, libPath)
	if err != nil {
		return err
	}
	if err := in.Fs.MkdirAll(releaseDir, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".dll") {
			continue
		}
		src := filepath.Join(libPath, e.Name())
		dst := filepath.Join(releaseDir, e.Name())
		in.Log.Infof("copy: %s => %s", src, dst)
		if err := copyFile(in.Fs, src, dst); err != nil {
			return err
		}
	}
	return nil
}

func (in *Installer) libPath() (string, error) {
	if p := config.GetEnv(LibPathEnv, ""); p != "" {
		return p, nil
	}
	if in.Finder == nil {
		return "", ErrNoLibPath
	}
	p, err := in.Finder.LibPath()
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", ErrNoLibPath
	}
	return p, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, dst, data, 0o644)
}
