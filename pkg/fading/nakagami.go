package fading

import (
	"math"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Nakagami envelope with shape M >= 1/2 and spread Omega > 0. Its square is
// Gamma distributed with shape M and scale Omega/M.
type Nakagami struct {
	M     float64
	Omega float64
}

// NewNakagami validates the shape and spread
func NewNakagami(m, omega float64) (*Nakagami, error) {
	if !(m >= 0.5) {
		return nil, errors.NewInvalid("nakagami m must be at least 0.5, got %v", m)
	}
	if !(omega > 0) {
		return nil, errors.NewInvalid("nakagami omega must be positive, got %v", omega)
	}
	return &Nakagami{M: m, Omega: omega}, nil
}

func (n *Nakagami) power(src rand.Source) distuv.Gamma {
	return distuv.Gamma{Alpha: n.M, Beta: n.M / n.Omega, Src: src}
}

func (n *Nakagami) PDF(x float64) float64 {
	if x < 0 || (x == 0 && n.M > 0.5) {
		return 0
	}
	lg, _ := math.Lgamma(n.M)
	logp := math.Ln2 + n.M*math.Log(n.M) - lg - n.M*math.Log(n.Omega) - n.M*x*x/n.Omega
	if n.M != 0.5 {
		logp += (2*n.M - 1) * math.Log(x)
	}
	return math.Exp(logp)
}

func (n *Nakagami) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return n.power(nil).CDF(x * x)
}

// gammaRatio returns Γ(m+½)/Γ(m)
func (n *Nakagami) gammaRatio() float64 {
	a, _ := math.Lgamma(n.M + 0.5)
	b, _ := math.Lgamma(n.M)
	return math.Exp(a - b)
}

func (n *Nakagami) Mean() float64 {
	return n.gammaRatio() * math.Sqrt(n.Omega/n.M)
}

func (n *Nakagami) Variance() float64 {
	r := n.gammaRatio()
	return n.Omega * (1 - r*r/n.M)
}

func (n *Nakagami) RMS() float64 {
	return math.Sqrt(n.Omega)
}

func (n *Nakagami) Samples(size int, src rand.Source) []float64 {
	g := n.power(src)
	samples := make([]float64, size)
	for i := range samples {
		samples[i] = math.Sqrt(g.Rand())
	}
	return samples
}
