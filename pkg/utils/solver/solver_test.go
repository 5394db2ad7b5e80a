package solver

import (
	"math"
	"testing"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/signal"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageRadiusLogDistance(t *testing.T) {
	// 30 + 35 log10(d) = 100 at d = 10^2
	loss := func(d float64) float64 { return 30 + 35*math.Log10(d) }
	radius, err := CoverageRadius(loss, 100, 10)
	require.NoError(t, err)
	assert.InEpsilon(t, 100.0, radius, 1e-4)
}

func TestCoverageRadiusPathLossModel(t *testing.T) {
	spec := model.PathlossSpec{Type: signal.FreeSpaceType, Alpha: 3.5, P0: 30}
	loss := func(d float64) float64 {
		pl, err := signal.GetPathLoss(d, spec, 2.4e9, nil)
		require.NoError(t, err)
		return pl
	}
	radius, err := CoverageRadius(loss, 140, 50)
	require.NoError(t, err)
	assert.InDelta(t, 140, loss(radius), 1e-3)
}

func TestCoverageRadiusErrors(t *testing.T) {
	loss := func(d float64) float64 { return 30 + 35*math.Log10(d) }
	_, err := CoverageRadius(loss, 100, 0)
	assert.True(t, errors.IsInvalid(err))
	_, err = CoverageRadius(loss, 100, math.NaN())
	assert.True(t, errors.IsInvalid(err))
}
