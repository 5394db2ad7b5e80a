package fading

import (
	"math"

	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rician envelope parameterised by the K-factor in dB and the scale of the
// scattered component. Omega = (2K+2)σ² and Nu = sqrt(K/(1+K)·Omega) with K
// in linear units.
type Rician struct {
	K     float64
	Sigma float64
	Omega float64
	Nu    float64
}

// NewRician validates sigma > 0
func NewRician(kdB, sigma float64) (*Rician, error) {
	if !(sigma > 0) {
		return nil, errors.NewInvalid("rician sigma must be positive, got %v", sigma)
	}
	if math.IsNaN(kdB) || math.IsInf(kdB, 0) {
		return nil, errors.NewInvalid("rician K must be finite, got %v", kdB)
	}
	k := utils.DbToPow(kdB)
	omega := (2*k + 2) * sigma * sigma
	return &Rician{
		K:     kdB,
		Sigma: sigma,
		Omega: omega,
		Nu:    math.Sqrt(k / (1 + k) * omega),
	}, nil
}

// KLinear returns the K-factor as a power ratio
func (r *Rician) KLinear() float64 {
	return utils.DbToPow(r.K)
}

func (r *Rician) PDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	s2 := r.Sigma * r.Sigma
	d := x - r.Nu
	return x / s2 * math.Exp(-d*d/(2*s2)) * utils.BesselI0e(x*r.Nu/s2)
}

// CDF is the Poisson mixture of central chi-square distributions with
// 2j+2 degrees of freedom, equal to 1 - Q1(Nu/Sigma, x/Sigma).
func (r *Rician) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	s2 := r.Sigma * r.Sigma
	mu := r.Nu * r.Nu / (2 * s2)
	t := x * x / (2 * s2)
	if mu == 0 {
		return mathext.GammaIncReg(1, t)
	}

	last := int(mu+12*math.Sqrt(mu)) + 30
	cdf := 0.0
	for j := 0; j <= last; j++ {
		lg, _ := math.Lgamma(float64(j + 1))
		w := math.Exp(-mu + float64(j)*math.Log(mu) - lg)
		cdf += w * mathext.GammaIncReg(float64(j+1), t)
	}
	return math.Min(cdf, 1)
}

func (r *Rician) Mean() float64 {
	return r.Sigma * math.Sqrt(math.Pi/2) * utils.Laguerre(-r.Nu*r.Nu/(2*r.Sigma*r.Sigma), 0.5)
}

func (r *Rician) Variance() float64 {
	s2 := r.Sigma * r.Sigma
	l := utils.Laguerre(-r.Nu*r.Nu/(2*s2), 0.5)
	return 2*s2 + r.Nu*r.Nu - math.Pi*s2/2*l*l
}

// RMS is sqrt(E[X²]) = sqrt(2σ² + ν²)
func (r *Rician) RMS() float64 {
	return math.Sqrt(2*r.Sigma*r.Sigma + r.Nu*r.Nu)
}

func (r *Rician) Samples(n int, src rand.Source) []float64 {
	los := distuv.Normal{Mu: r.Nu, Sigma: r.Sigma, Src: src}
	scattered := distuv.Normal{Mu: 0, Sigma: r.Sigma, Src: src}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Hypot(los.Rand(), scattered.Rand())
	}
	return samples
}
