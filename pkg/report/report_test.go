package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nfvri/ris-simulator/pkg/simulation"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results() *simulation.Results {
	return &simulation.Results{
		TxPower: []float64{-10, 0, 10, 20},
		Rates: map[string][]float64{
			"Uf":  {0.1, 0.4, 0.9, 1.0},
			"U1c": {0.2, 0.8, 2.0, 3.1},
			"U2c": {0.2, 0.7, 1.9, 3.0},
		},
		SumRate: []float64{0.5, 1.9, 4.8, 7.1},
		Outage: map[string][]float64{
			"Uf":  {1, 0.7, 0.2, 0.01},
			"U1c": {0.9, 0.3, 0.05, 0},
			"U2c": {0.9, 0.35, 0.06, 0},
		},
	}
}

func TestSaveCurves(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")

	rates, err := SaveRateCurves(results(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, RatesFile), rates)
	info, err := os.Stat(rates)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	outage, err := SaveOutageCurves(results(), dir)
	require.NoError(t, err)
	_, err = os.Stat(outage)
	assert.NoError(t, err)

	assert.Equal(t, []string{"U1c", "U2c", "Uf"}, users(results().Rates))
}

func TestSaveOutageWithFit(t *testing.T) {
	dir := t.TempDir()
	plain, err := SaveOutageCurves(results(), filepath.Join(dir, "plain"))
	require.NoError(t, err)
	plainInfo, err := os.Stat(plain)
	require.NoError(t, err)

	res := results()
	res.AnalyticalOutage = map[string][]float64{
		"Uf":  {0.98, 0.65, 0.25, 0.02},
		"U1c": {0.85, 0.3, 0.04, 0},
		// a short column is left out of the plot
		"U2c": {0.9},
	}
	fitted, err := SaveOutageCurves(res, filepath.Join(dir, "fit"))
	require.NoError(t, err)
	fittedInfo, err := os.Stat(fitted)
	require.NoError(t, err)
	assert.NotEqual(t, plainInfo.Size(), fittedInfo.Size())
}

func TestSaveCurvesRejectsEmpty(t *testing.T) {
	_, err := SaveRateCurves(nil, t.TempDir())
	assert.True(t, errors.IsInvalid(err))
	_, err = SaveOutageCurves(&simulation.Results{}, t.TempDir())
	assert.True(t, errors.IsInvalid(err))
}
