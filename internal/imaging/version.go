package imaging

import (
	"runtime/debug"
	"strings"
)

const (
	engineModule    = "github.com/disintegration/imaging"
	fallbackVersion = "1.6.2"
)

// Version reports the version of the resampling engine linked into the
// binary, dot-delimited and without a leading "v".
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallbackVersion
	}
	for _, dep := range info.Deps {
		if dep.Path != engineModule {
			continue
		}
		if dep.Replace != nil {
			dep = dep.Replace
		}
		if v := strings.TrimPrefix(dep.Version, "v"); v != "" && v != "(devel)" {
			return v
		}
	}
	return fallbackVersion
}
