package simulation

import (
	"context"
	"math"
	"testing"

	"github.com/nfvri/ris-simulator/pkg/fading"
	"github.com/nfvri/ris-simulator/pkg/links"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/ris"
	"github.com/nfvri/ris-simulator/pkg/statistics"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const realizations = 50

var (
	rayleigh = model.FadingSpec{Type: "rayleigh", Sigma: 1}
	ricianC  = model.FadingSpec{Type: "rician", K: 3, Sigma: 1}
	ricianE  = model.FadingSpec{Type: "rician", K: 4, Sigma: 1}
)

func pl(alpha float64) model.PathlossSpec {
	return model.PathlossSpec{Type: "free-space", Alpha: alpha, P0: 30}
}

func defaultParams(comp bool) Params {
	return Params{
		TxPower:      []float64{-10, 10, 30, 50},
		Noise:        -90,
		Sigma:        6.32,
		CircuitPower: 1e-3,
		Sensitivity:  -110,
		CoMP:         comp,
	}
}

func builder(withSurface bool) Builder {
	elements := 0
	if withSurface {
		elements = 16
	}
	return sized(realizations, elements)
}

// sized builds the two cell scenario with a STAR-RIS of the given element
// count between the cells, or without a surface when elements is zero
func sized(realizations, elements int) Builder {
	return func(stream *fading.Stream) (*Simulator, *links.Collection, error) {
		sim := &Simulator{}
		var err error
		if sim.BS1, err = model.NewBaseStation("BS1", model.Position{-50, 0, 25}, 1); err != nil {
			return nil, nil, err
		}
		if sim.BS2, err = model.NewBaseStation("BS2", model.Position{50, 0, 25}, 1); err != nil {
			return nil, nil, err
		}
		if sim.U1c, err = model.NewUserEquipment("U1c", model.Position{-40, 18, 1}, 1); err != nil {
			return nil, nil, err
		}
		if sim.U2c, err = model.NewUserEquipment("U2c", model.Position{30, 22, 1}, 1); err != nil {
			return nil, nil, err
		}
		if sim.Uf, err = model.NewUserEquipment("Uf", model.Position{0, 35, 1}, 1); err != nil {
			return nil, nil, err
		}
		sim.BS1.Allocations = map[string]float64{"U1c": 0.3, "Uf": 0.7}
		sim.BS2.Allocations = map[string]float64{"U2c": 0.3, "Uf": 0.7}

		lc, err := links.NewCollection(realizations, 2.4e9, stream)
		if err != nil {
			return nil, nil, err
		}
		type def struct {
			tx, rx model.Endpoint
			f      model.FadingSpec
			alpha  float64
			typ    links.LinkType
		}
		defs := []def{
			{sim.BS1, sim.U1c, rayleigh, 3, links.CenterUser1},
			{sim.BS2, sim.U2c, rayleigh, 3, links.CenterUser2},
			{sim.BS1, sim.Uf, rayleigh, 3.5, links.Edge},
			{sim.BS2, sim.Uf, rayleigh, 3.5, links.Edge},
			{sim.BS1, sim.U2c, rayleigh, 4, links.Interference},
			{sim.BS2, sim.U1c, rayleigh, 4, links.Interference},
		}
		if elements > 0 {
			if sim.STAR, err = ris.NewSTAR("RIS", model.Position{0, 25, 5}, elements, 0.5, 0.5, nil); err != nil {
				return nil, nil, err
			}
			defs = append(defs,
				def{sim.BS1, sim.STAR, ricianC, 3, links.RISBS1},
				def{sim.BS2, sim.STAR, ricianC, 3, links.RISBS2},
				def{sim.STAR, sim.U1c, ricianC, 2.7, links.RISBS1},
				def{sim.STAR, sim.U2c, ricianC, 2.7, links.RISBS2},
				def{sim.STAR, sim.Uf, ricianE, 2.3, links.RISEdge},
			)
		}
		for _, d := range defs {
			if err := lc.AddLink(d.tx, d.rx, d.f, pl(d.alpha), d.typ); err != nil {
				return nil, nil, err
			}
		}
		return sim, lc, nil
	}
}

func TestRunMatchesClosedForm(t *testing.T) {
	sim, lc, err := builder(false)(fading.NewStream(1))
	require.NoError(t, err)
	params := defaultParams(false)
	res, err := sim.Run(lc, params)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1c", "U2c", "Uf"}, sim.Users())
	assert.Equal(t, params.TxPower, res.TxPower)

	g11, _ := lc.GetGain("BS1", "U1c")
	g21, _ := lc.GetGain("BS2", "U1c")
	g1f, _ := lc.GetGain("BS1", "Uf")
	g2f, _ := lc.GetGain("BS2", "Uf")
	n0 := utils.DbmToPow(params.Noise)
	pt := utils.DbmToPow(params.TxPower[2])

	var rate1, ratef, outage1 float64
	for i := 0; i < realizations; i++ {
		snr1 := 0.3 * pt * g11[i] / (pt*g21[i] + n0)
		s1 := pt * g1f[i] / (n0 + pt*g2f[i])
		s2 := pt * g2f[i] / (n0 + pt*g1f[i])
		snrf := (0.7*s1 + 0.7*s2) / (0.3*s1 + 0.3*s2 + 1)
		rate1 += math.Log2(1 + snr1)
		ratef += math.Log2(1 + snrf)
		outage1 += utils.QFunc((10*math.Log10(snr1) + params.Noise - params.Sensitivity) / params.Sigma)
	}
	assert.InDelta(t, rate1/realizations, res.Rates["U1c"][2], 1e-9)
	assert.InDelta(t, ratef/realizations, res.Rates["Uf"][2], 1e-9)
	assert.InDelta(t, outage1/realizations, res.Outage["U1c"][2], 1e-9)

	for j := range params.TxPower {
		sum := res.Rates["U1c"][j] + res.Rates["U2c"][j] + res.Rates["Uf"][j]
		assert.InDelta(t, sum, res.SumRate[j], 1e-9)
		assert.Equal(t, res.SumRate[j], res.SpectralEfficiency[j])
		ptj := utils.DbmToPow(params.TxPower[j])
		assert.InDelta(t, sum/(2*ptj+params.CircuitPower), res.EnergyEfficiency[j], 1e-12)
		for _, u := range sim.Users() {
			assert.GreaterOrEqual(t, res.Outage[u][j], 0.0)
			assert.LessOrEqual(t, res.Outage[u][j], 1.0)
		}
	}
}

func TestCoMPHelpsFarUser(t *testing.T) {
	sim, lc, err := builder(false)(fading.NewStream(2))
	require.NoError(t, err)
	without, err := sim.Run(lc, defaultParams(false))
	require.NoError(t, err)
	with, err := sim.Run(lc, defaultParams(true))
	require.NoError(t, err)

	for j := range with.TxPower {
		assert.GreaterOrEqual(t, with.Rates["Uf"][j], without.Rates["Uf"][j])
		assert.Equal(t, with.Rates["U1c"][j], without.Rates["U1c"][j])
	}
}

func TestRunWithSurface(t *testing.T) {
	sim, lc, err := builder(true)(fading.NewStream(3))
	require.NoError(t, err)
	before, err := lc.GetGain("BS1", "U1c")
	require.NoError(t, err)

	res, err := sim.Run(lc, defaultParams(true))
	require.NoError(t, err)
	assert.Equal(t, ris.Merged, sim.STAR.State())
	after, err := lc.GetGain("BS1", "U1c")
	require.NoError(t, err)
	for i := range before {
		assert.GreaterOrEqual(t, after[i], before[i])
	}
	assert.Len(t, res.SumRate, 4)

	_, err = sim.Run(lc, defaultParams(true))
	assert.True(t, errors.IsConflict(err))
}

func TestRunAtScenarioScale(t *testing.T) {
	const scale = 2000
	sim, lc, err := sized(scale, 32)(fading.NewStream(5))
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{BS1: 16, BS2: 16}, sim.STAR.Assignment())

	pairs := [][2]string{{"BS1", "U1c"}, {"BS2", "U2c"}, {"BS1", "Uf"}, {"BS2", "Uf"}}
	before := make([][]float64, len(pairs))
	for i, p := range pairs {
		before[i], err = lc.GetGain(p[0], p[1])
		require.NoError(t, err)
		require.Len(t, before[i], scale)
	}

	res, err := sim.Run(lc, defaultParams(true))
	require.NoError(t, err)
	assert.Equal(t, ris.Merged, sim.STAR.State())

	// every merged link gains the aligned surface paths on every realization
	for i, p := range pairs {
		after, err := lc.GetGain(p[0], p[1])
		require.NoError(t, err)
		for r := range after {
			assert.GreaterOrEqual(t, after[r], before[i][r]*(1-1e-9), "%s->%s realization %d", p[0], p[1], r)
		}
	}
	thetaR, err := sim.STAR.ThetaR()
	require.NoError(t, err)
	assert.Len(t, thetaR, 32)
	assert.Len(t, thetaR[0], scale)

	for j := range res.TxPower {
		for _, u := range sim.Users() {
			assert.False(t, math.IsNaN(res.Rates[u][j]))
			assert.GreaterOrEqual(t, res.Rates[u][j], 0.0)
			assert.GreaterOrEqual(t, res.AnalyticalOutage[u][j], 0.0)
			assert.LessOrEqual(t, res.AnalyticalOutage[u][j], 1.0)
		}
		if j > 0 {
			assert.GreaterOrEqual(t, res.SumRate[j]+1e-9, res.SumRate[j-1])
		}
	}
}

func TestAnalyticalOutage(t *testing.T) {
	sim, lc, err := builder(false)(fading.NewStream(6))
	require.NoError(t, err)
	params := defaultParams(false)
	res, err := sim.Run(lc, params)
	require.NoError(t, err)

	g11, _ := lc.GetGain("BS1", "U1c")
	g21, _ := lc.GetGain("BS2", "U1c")
	n0 := utils.DbmToPow(params.Noise)
	for j, ptDBm := range params.TxPower {
		pt := utils.DbmToPow(ptDBm)
		received := make([]float64, realizations)
		for i := range received {
			received[i] = 10*math.Log10(0.3*pt*g11[i]/(pt*g21[i]+n0)) + params.Noise
		}
		want, err := statistics.OutageQ(received, params.Sensitivity)
		require.NoError(t, err)
		assert.InDelta(t, want, res.AnalyticalOutage["U1c"][j], 1e-9)
	}
	// far above the sensitivity nobody is in outage
	assert.Less(t, res.AnalyticalOutage["U1c"][3], 1e-3)

	// a single realization has no spread to fit
	sim, lc, err = sized(1, 0)(fading.NewStream(6))
	require.NoError(t, err)
	_, err = sim.Run(lc, params)
	assert.True(t, errors.IsInvalid(err))
}

func TestRunValidation(t *testing.T) {
	sim, lc, err := builder(false)(fading.NewStream(4))
	require.NoError(t, err)

	params := defaultParams(true)
	params.TxPower = nil
	_, err = sim.Run(lc, params)
	assert.True(t, errors.IsInvalid(err))

	params = defaultParams(true)
	params.Sigma = 0
	_, err = sim.Run(lc, params)
	assert.True(t, errors.IsInvalid(err))

	_, err = (&Simulator{BS1: sim.BS1}).Run(lc, defaultParams(true))
	assert.True(t, errors.IsInvalid(err))

	empty, err := links.NewCollection(realizations, 2.4e9, nil)
	require.NoError(t, err)
	_, err = sim.Run(empty, defaultParams(true))
	assert.True(t, errors.IsNotFound(err))
}

func TestBatchIsIndependentOfWorkers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	serial := &Batch{Runs: 4, Workers: 1, Seed: 10, Metrics: metrics}
	a, err := serial.Run(context.Background(), builder(true), defaultParams(true))
	require.NoError(t, err)

	parallel := &Batch{Runs: 4, Workers: 3, Seed: 10}
	b, err := parallel.Run(context.Background(), builder(true), defaultParams(true))
	require.NoError(t, err)

	assert.InDeltaSlice(t, a.SumRate, b.SumRate, 1e-9)
	assert.InDeltaSlice(t, a.Outage["Uf"], b.Outage["Uf"], 1e-9)
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.RunDuration))
	assert.Greater(t, testutil.ToFloat64(metrics.PeakSumRate), 0.0)

	again, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, metrics.Runs, again.Runs)
}

func TestBatchAveragesRuns(t *testing.T) {
	batch := &Batch{Runs: 3, Workers: 2, Seed: 20}
	avg, err := batch.Run(context.Background(), builder(false), defaultParams(false))
	require.NoError(t, err)

	var runs []*Results
	for i := 0; i < 3; i++ {
		sim, lc, err := builder(false)(fading.NewStream(20 + uint64(i)))
		require.NoError(t, err)
		res, err := sim.Run(lc, defaultParams(false))
		require.NoError(t, err)
		runs = append(runs, res)
	}
	for j := range avg.TxPower {
		want := (runs[0].Rates["Uf"][j] + runs[1].Rates["Uf"][j] + runs[2].Rates["Uf"][j]) / 3
		assert.InDelta(t, want, avg.Rates["Uf"][j], 1e-9)
	}
}

func TestBatchErrors(t *testing.T) {
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	failing := func(stream *fading.Stream) (*Simulator, *links.Collection, error) {
		return nil, nil, errors.NewInvalid("broken scenario")
	}
	_, err = (&Batch{Runs: 5, Workers: 2, Metrics: metrics}).Run(context.Background(), failing, defaultParams(true))
	assert.True(t, errors.IsInvalid(err))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.Runs.WithLabelValues("failure")), 1.0)

	_, err = (&Batch{Runs: 0}).Run(context.Background(), builder(false), defaultParams(true))
	assert.True(t, errors.IsInvalid(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Batch{Runs: 3, Workers: 1}).Run(ctx, builder(false), defaultParams(true))
	assert.True(t, errors.IsCanceled(err))

	_, err = Average(nil)
	assert.True(t, errors.IsInvalid(err))
}
