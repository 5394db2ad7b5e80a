package fading

import (
	"math"
	"strings"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution types accepted in a FadingSpec
const (
	RayleighType = "rayleigh"
	RicianType   = "rician"
	NakagamiType = "nakagami"
)

// Distribution is a small-scale fading envelope distribution
type Distribution interface {
	PDF(x float64) float64
	CDF(x float64) float64
	Mean() float64
	Variance() float64
	RMS() float64
	// Samples draws n envelope values from src. A nil src falls back to
	// the global source and is not reproducible.
	Samples(n int, src rand.Source) []float64
}

// New builds the distribution described by spec
func New(spec model.FadingSpec) (Distribution, error) {
	switch strings.ToLower(spec.Type) {
	case RayleighType:
		return NewRayleigh(spec.Sigma)
	case RicianType:
		return NewRician(spec.K, spec.Sigma)
	case NakagamiType:
		return NewNakagami(spec.M, spec.Omega)
	default:
		return nil, errors.NewNotSupported("unsupported distribution %q", spec.Type)
	}
}

// RVs draws n complex fading coefficients: the envelope comes from the
// distribution of spec and the phase is uniform in [-π, π).
func RVs(n int, spec model.FadingSpec, magnitude, phase rand.Source) ([]complex128, error) {
	dist, err := New(spec)
	if err != nil {
		return nil, err
	}
	mags := dist.Samples(n, magnitude)
	phases := distuv.Uniform{Min: -math.Pi, Max: math.Pi, Src: phase}

	coeffs := make([]complex128, n)
	for i, mag := range mags {
		s, c := math.Sincos(phases.Rand())
		coeffs[i] = complex(mag*c, mag*s)
	}
	return coeffs, nil
}
