package statistics

import (
	"math"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

func gammaRatio(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	return math.Exp(la - lb)
}

// NakagamiMoment returns E[|h|^p] for h ~ Nakagami(m, omega).
func NakagamiMoment(p int, m, omega float64) float64 {
	q := float64(p) / 2
	return gammaRatio(m+q, m) * math.Pow(m/omega, -q)
}

// GammaMoment returns the p-th raw moment of a Gamma variable with shape k
// and mean theta.
func GammaMoment(p int, k, theta float64) float64 {
	q := float64(p)
	return gammaRatio(k+q, k) * math.Pow(k/theta, -q)
}

// DoubleNakagamiMoment returns the p-th moment of G = sqrt(c) * N * |h1||h2|
// with h1 ~ Nakagami(m, omega) and h2 ~ Nakagami(k, theta).
func DoubleNakagamiMoment(p int, m, k, omega, theta, c float64, n int) float64 {
	q := float64(p) / 2
	return gammaRatio(m+q, m) * gammaRatio(k+q, k) *
		math.Pow(math.Sqrt(c)*float64(n), float64(p)) *
		math.Pow(k*m/(omega*theta), -q)
}

// Cascade describes the two Nakagami legs summed over the surface elements.
type Cascade struct {
	M1, Omega1 float64
	M2, Omega2 float64
	C          float64
	N          int
}

func (c Cascade) moment(p int) float64 {
	return DoubleNakagamiMoment(p, c.M1, c.M2, c.Omega1, c.Omega2, c.C, c.N)
}

// EffectiveMoment returns the p-th moment of Z = (h + G)^2, where h is the
// Nakagami(m, omega) direct link and G the cascade. Only p = 1 and p = 2 are
// available.
func EffectiveMoment(p int, m, omega float64, cascade Cascade) (float64, error) {
	h := func(q int) float64 { return NakagamiMoment(q, m, omega) }
	switch p {
	case 1:
		return cascade.moment(2) + h(2) + 2*cascade.moment(1)*h(1), nil
	case 2:
		return cascade.moment(4) + h(4) +
			6*cascade.moment(2)*h(2) +
			4*h(3)*cascade.moment(1) +
			4*h(1)*cascade.moment(3), nil
	default:
		return 0, errors.NewNotSupported("effective moment of order %d", p)
	}
}

// ApproxGammaParams matches a Gamma(k, theta) with scale theta to the first
// two moments of a non-negative variable.
func ApproxGammaParams(mu1, mu2 float64) (k, theta float64, err error) {
	variance := mu2 - mu1*mu1
	if !(mu1 > 0) || !(variance > 0) {
		return 0, 0, errors.NewInvalid("cannot match gamma to moments (%v, %v)", mu1, mu2)
	}
	return mu1 * mu1 / variance, variance / mu1, nil
}

// GammaAddMoments returns the first two moments of a*h + b*g for independent
// h and g.
func GammaAddMoments(muA1, muA2, muB1, muB2, a, b float64) (mu1, mu2 float64) {
	mu1 = a*muA1 + b*muB1
	mu2 = a*a*muA2 + b*b*muB2 + 2*a*b*muA1*muB1
	return mu1, mu2
}

// GammaAddParams is GammaAddMoments followed by ApproxGammaParams.
func GammaAddParams(muA1, muA2, muB1, muB2, a, b float64) (k, theta float64, err error) {
	return ApproxGammaParams(GammaAddMoments(muA1, muA2, muB1, muB2, a, b))
}

// GammaPlusOneMoments returns the first two moments of a*h + 1.
func GammaPlusOneMoments(muA1, muA2, a float64) (mu1, mu2 float64) {
	return a*muA1 + 1, a*a*muA2 + 2*a*muA1 + 1
}

func GammaPlusOneParams(muA1, muA2, a float64) (k, theta float64, err error) {
	return ApproxGammaParams(GammaPlusOneMoments(muA1, muA2, a))
}
