package fading

import (
	"math"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rayleigh envelope with scale Sigma. It is the Weibull distribution with
// shape 2 and scale Sigma·√2.
type Rayleigh struct {
	Sigma float64
}

// NewRayleigh validates sigma > 0
func NewRayleigh(sigma float64) (*Rayleigh, error) {
	if !(sigma > 0) {
		return nil, errors.NewInvalid("rayleigh sigma must be positive, got %v", sigma)
	}
	return &Rayleigh{Sigma: sigma}, nil
}

func (r *Rayleigh) weibull(src rand.Source) distuv.Weibull {
	return distuv.Weibull{K: 2, Lambda: r.Sigma * math.Sqrt2, Src: src}
}

func (r *Rayleigh) PDF(x float64) float64 {
	return r.weibull(nil).Prob(x)
}

func (r *Rayleigh) CDF(x float64) float64 {
	return r.weibull(nil).CDF(x)
}

func (r *Rayleigh) Mean() float64 {
	return r.Sigma * math.Sqrt(math.Pi/2)
}

func (r *Rayleigh) Variance() float64 {
	return (2 - math.Pi/2) * r.Sigma * r.Sigma
}

func (r *Rayleigh) RMS() float64 {
	return math.Sqrt2 * r.Sigma
}

func (r *Rayleigh) Samples(n int, src rand.Source) []float64 {
	w := r.weibull(src)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = w.Rand()
	}
	return samples
}
