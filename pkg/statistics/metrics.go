package statistics

import (
	"math"

	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
)

// quadraturePoints used by ErgodicRate.
const quadraturePoints = 256

// BetaPrime is the distribution of the ratio of two independent Gamma
// variables with shapes Alpha, Beta and scale ratio Scale.
type BetaPrime struct {
	Alpha float64
	Beta  float64
	Scale float64
}

// NewBetaPrime returns the ratio distribution of Gamma(ka, thetaA) over
// Gamma(kb, thetaB), both scale parametrised.
func NewBetaPrime(ka, kb, thetaA, thetaB float64) (BetaPrime, error) {
	if !(ka > 0) || !(kb > 0) || !(thetaA > 0) || !(thetaB > 0) {
		return BetaPrime{}, errors.NewInvalid("beta prime parameters must be positive: %v %v %v %v", ka, kb, thetaA, thetaB)
	}
	return BetaPrime{Alpha: ka, Beta: kb, Scale: thetaA / thetaB}, nil
}

func (b BetaPrime) PDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x / b.Scale
	logp := (b.Alpha-1)*math.Log(z) - (b.Alpha+b.Beta)*math.Log1p(z) - mathext.Lbeta(b.Alpha, b.Beta)
	return math.Exp(logp) / b.Scale
}

func (b BetaPrime) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	z := x / b.Scale
	return mathext.RegIncBeta(b.Alpha, b.Beta, z/(1+z))
}

// Mean is infinite when Beta <= 1.
func (b BetaPrime) Mean() float64 {
	if b.Beta <= 1 {
		return math.Inf(1)
	}
	return b.Scale * b.Alpha / (b.Beta - 1)
}

// OutageLT returns Pr(10log10(X) < thresholdDB) for X the ratio of
// Gamma(k, theta) over Gamma(m, omega).
func OutageLT(k, m, theta, omega, thresholdDB float64) (float64, error) {
	dist, err := NewBetaPrime(k, m, theta, omega)
	if err != nil {
		return 0, err
	}
	return dist.CDF(utils.DbToPow(thresholdDB)), nil
}

// Link groups the Gamma shapes and scales of one SNR ratio.
type Link struct {
	K, M, Theta, Omega float64
}

// OutageCLT returns Pr(λa > thresholdA, λb < thresholdB) assuming the two
// SNRs are independent.
func OutageCLT(a, b Link, thresholdA, thresholdB float64) (float64, error) {
	below, err := OutageLT(b.K, b.M, b.Theta, b.Omega, thresholdB)
	if err != nil {
		return 0, err
	}
	belowA, err := OutageLT(a.K, a.M, a.Theta, a.Omega, thresholdA)
	if err != nil {
		return 0, err
	}
	return below * (1 - belowA), nil
}

// ErgodicRate returns E[log2(1+X)] in bit/s/Hz for the same ratio as
// OutageLT. The tail integral over [0, inf) is mapped onto [0, 1) with
// u = x/(1+x).
func ErgodicRate(k, m, theta, omega float64) (float64, error) {
	dist, err := NewBetaPrime(k, m, theta, omega)
	if err != nil {
		return 0, err
	}
	f := func(u float64) float64 {
		if u >= 1 {
			return 0
		}
		x := u / (1 - u)
		return (1 - dist.CDF(x)) / (1 - u)
	}
	return quad.Fixed(f, 0, 1, quadraturePoints, nil, 0) / math.Ln2, nil
}

// OutageQ approximates Pr(P < threshold) for received power samples through
// a Gaussian fit.
func OutageQ(samples []float64, threshold float64) (float64, error) {
	if len(samples) < 2 {
		return 0, errors.NewInvalid("outage needs at least two samples, got %d", len(samples))
	}
	mean, std := stat.PopMeanStdDev(samples, nil)
	if std == 0 {
		return utils.If(mean < threshold, 1.0, 0.0), nil
	}
	return utils.QFunc((mean - threshold) / std), nil
}
