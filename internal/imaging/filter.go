package imaging

import (
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultFilter is used when no filter is requested.
const DefaultFilter = "Lanczos"

// lagrange is the third-order Lagrange interpolating kernel.
var lagrange = imaging.ResampleFilter{
	Support: 2.0,
	Kernel: func(x float64) float64 {
		x = math.Abs(x)
		switch {
		case x < 1.0:
			return (x*x - 1.0) * (x - 2.0) / 2.0
		case x < 2.0:
			return -(x - 1.0) * (x - 2.0) * (x - 3.0) / 6.0
		}
		return 0
	},
}

// quadratic is the piecewise quadratic B-spline.
var quadratic = imaging.ResampleFilter{
	Support: 1.5,
	Kernel: func(x float64) float64 {
		x = math.Abs(x)
		switch {
		case x < 0.5:
			return 0.75 - x*x
		case x < 1.5:
			return 0.5 * (x - 1.5) * (x - 1.5)
		}
		return 0
	},
}

// filters maps lower-cased filter names to resampling kernels.
var filters = map[string]imaging.ResampleFilter{
	"point":     imaging.NearestNeighbor,
	"box":       imaging.Box,
	"triangle":  imaging.Linear,
	"hermite":   imaging.Hermite,
	"hanning":   imaging.Hann,
	"hann":      imaging.Hann,
	"hamming":   imaging.Hamming,
	"blackman":  imaging.Blackman,
	"gaussian":  imaging.Gaussian,
	"quadratic": quadratic,
	"cubic":     imaging.BSpline,
	"catrom":    imaging.CatmullRom,
	"mitchell":  imaging.MitchellNetravali,
	"lanczos":   imaging.Lanczos,
	"bartlett":  imaging.Bartlett,
	"welsh":     imaging.Welch,
	"welch":     imaging.Welch,
	"cosine":    imaging.Cosine,
	"lagrange":  lagrange,
}

// ParseFilter resolves a filter name, case-insensitively. An empty name
// selects DefaultFilter.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		name = DefaultFilter
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, ErrUnsupportedFilter
	}
	return f, nil
}
