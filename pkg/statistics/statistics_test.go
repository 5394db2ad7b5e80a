package statistics

import (
	"math"
	"testing"

	"github.com/nfvri/ris-simulator/pkg/fading"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

const numSamples = 200000

func TestApproxGammaParams(t *testing.T) {
	k, theta, err := ApproxGammaParams(6, 54)
	require.NoError(t, err)
	assert.InDelta(t, 2, k, 1e-12)
	assert.InDelta(t, 3, theta, 1e-12)

	_, _, err = ApproxGammaParams(2, 4)
	assert.True(t, errors.IsInvalid(err))
	_, _, err = ApproxGammaParams(0, 1)
	assert.True(t, errors.IsInvalid(err))
}

func TestClosedFormMoments(t *testing.T) {
	assert.InDelta(t, 3.0, NakagamiMoment(2, 2.5, 3), 1e-12)
	assert.InDelta(t, 9.0*(2.5+1)/2.5, NakagamiMoment(4, 2.5, 3), 1e-9)
	// Rayleigh: E|h| = sqrt(pi*omega)/2
	assert.InDelta(t, math.Sqrt(math.Pi)/2, NakagamiMoment(1, 1, 1), 1e-12)

	assert.InDelta(t, 4.0, GammaMoment(1, 2, 4), 1e-12)
	assert.InDelta(t, 16.0*3/2, GammaMoment(2, 2, 4), 1e-9)

	assert.InDelta(t, 0.5*64*2*3, DoubleNakagamiMoment(2, 1.5, 2, 2, 3, 0.5, 8), 1e-9)
	assert.InDelta(t, 1.0, DoubleNakagamiMoment(0, 1.5, 2, 2, 3, 0.5, 8), 1e-12)
}

func TestEffectiveMomentMatchesSamples(t *testing.T) {
	direct, err := fading.NewNakagami(2, 1.5)
	require.NoError(t, err)
	leg1, err := fading.NewNakagami(1.5, 2)
	require.NoError(t, err)
	leg2, err := fading.NewNakagami(3, 0.5)
	require.NoError(t, err)
	cascade := Cascade{M1: 1.5, Omega1: 2, M2: 3, Omega2: 0.5, C: 0.25, N: 4}

	h := direct.Samples(numSamples, rand.NewSource(1))
	g1 := leg1.Samples(numSamples, rand.NewSource(2))
	g2 := leg2.Samples(numSamples, rand.NewSource(3))
	var z1, z2 float64
	for i := range h {
		g := math.Sqrt(cascade.C) * float64(cascade.N) * g1[i] * g2[i]
		z := (h[i] + g) * (h[i] + g)
		z1 += z
		z2 += z * z
	}
	z1 /= numSamples
	z2 /= numSamples

	mu1, err := EffectiveMoment(1, 2, 1.5, cascade)
	require.NoError(t, err)
	mu2, err := EffectiveMoment(2, 2, 1.5, cascade)
	require.NoError(t, err)
	assert.InEpsilon(t, z1, mu1, 0.02)
	assert.InEpsilon(t, z2, mu2, 0.05)

	_, err = EffectiveMoment(3, 2, 1.5, cascade)
	assert.True(t, errors.IsNotSupported(err))
}

func TestGammaCombinations(t *testing.T) {
	mu1, mu2 := GammaAddMoments(2, 6, 3, 12, 1, 2)
	assert.InDelta(t, 8.0, mu1, 1e-12)
	assert.InDelta(t, 6+48+24, mu2, 1e-12)

	k, theta, err := GammaAddParams(2, 6, 3, 12, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, mu1, k*theta, 1e-9)
	assert.InDelta(t, mu2-mu1*mu1, k*theta*theta, 1e-9)

	mu1, mu2 = GammaPlusOneMoments(2, 6, 0.5)
	assert.InDelta(t, 2.0, mu1, 1e-12)
	assert.InDelta(t, 1.5+2+1, mu2, 1e-12)
	_, theta, err = GammaPlusOneParams(2, 6, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, theta, 1e-12)
}

func TestBetaPrime(t *testing.T) {
	_, err := NewBetaPrime(0, 1, 1, 1)
	assert.True(t, errors.IsInvalid(err))

	dist, err := NewBetaPrime(2, 3, 1.5, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, dist.Scale, 1e-12)
	assert.Equal(t, 0.0, dist.CDF(0))
	assert.Equal(t, 1.0, dist.CDF(math.Inf(1)))
	assert.InDelta(t, 3.0, dist.Mean(), 1e-12)

	for _, x := range []float64{0.5, 2, 7, 20} {
		integral := quad.Fixed(dist.PDF, 0, x, 200, nil, 0)
		assert.InDelta(t, dist.CDF(x), integral, 1e-6, "x=%v", x)
	}

	num := distuv.Gamma{Alpha: 2, Beta: 1 / 1.5, Src: rand.NewSource(4)}
	den := distuv.Gamma{Alpha: 3, Beta: 1 / 0.5, Src: rand.NewSource(5)}
	below := 0
	for i := 0; i < numSamples; i++ {
		if num.Rand()/den.Rand() < 2 {
			below++
		}
	}
	assert.InDelta(t, dist.CDF(2), float64(below)/numSamples, 0.01)

	heavy := BetaPrime{Alpha: 1, Beta: 1, Scale: 1}
	assert.True(t, math.IsInf(heavy.Mean(), 1))
}

func TestOutage(t *testing.T) {
	p, err := OutageLT(2, 2, 1, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	clt, err := OutageCLT(Link{K: 2, M: 2, Theta: 1, Omega: 1}, Link{K: 2, M: 2, Theta: 1, Omega: 1}, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, clt, 1e-9)

	_, err = OutageLT(2, 2, 0, 1, 0)
	assert.True(t, errors.IsInvalid(err))
	_, err = OutageCLT(Link{K: 2, M: 2, Theta: 1, Omega: 1}, Link{K: -1, M: 2, Theta: 1, Omega: 1}, 0, 0)
	assert.True(t, errors.IsInvalid(err))
}

func TestErgodicRateMatchesSamples(t *testing.T) {
	rate, err := ErgodicRate(2, 3, 1, 1)
	require.NoError(t, err)

	num := distuv.Gamma{Alpha: 2, Beta: 1, Src: rand.NewSource(6)}
	den := distuv.Gamma{Alpha: 3, Beta: 1, Src: rand.NewSource(7)}
	var sum float64
	for i := 0; i < numSamples; i++ {
		sum += math.Log2(1 + num.Rand()/den.Rand())
	}
	assert.InDelta(t, sum/numSamples, rate, 0.01)

	_, err = ErgodicRate(2, 3, 1, -1)
	assert.True(t, errors.IsInvalid(err))
}

func TestOutageQ(t *testing.T) {
	p, err := OutageQ([]float64{-1, 1, -1, 1}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = OutageQ([]float64{0, 2, 0, 2}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.158655, p, 1e-6)

	p, err = OutageQ([]float64{3, 3}, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	_, err = OutageQ([]float64{1}, 0)
	assert.True(t, errors.IsInvalid(err))
}
