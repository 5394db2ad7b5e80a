package simulation

import (
	"math"

	"github.com/nfvri/ris-simulator/pkg/links"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/ris"
	"github.com/nfvri/ris-simulator/pkg/statistics"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// minSNR bounds the received power of blocked links at -300 dB below noise
const minSNR = 1e-30

// Params of a single sweep over transmit power.
type Params struct {
	// TxPower in dBm, one point per curve sample.
	TxPower []float64
	// Noise power in dBm.
	Noise float64
	// Sigma is the shadowing deviation in dB applied to the outage.
	Sigma        float64
	CircuitPower float64
	// Sensitivity of the receivers in dBm.
	Sensitivity float64
	CoMP        bool
}

func (p Params) validate() error {
	if len(p.TxPower) == 0 {
		return errors.NewInvalid("no transmit power points")
	}
	if !(p.Sigma > 0) {
		return errors.NewInvalid("shadowing sigma must be positive, got %v", p.Sigma)
	}
	if p.CircuitPower < 0 {
		return errors.NewInvalid("circuit power must not be negative, got %v", p.CircuitPower)
	}
	return nil
}

// Results hold per user and system curves indexed like Params.TxPower.
type Results struct {
	TxPower []float64 `json:"txPower"`
	// Rates are averaged over the realizations, in bit/s/Hz.
	Rates   map[string][]float64 `json:"rates"`
	SumRate []float64            `json:"sumRate"`
	Outage  map[string][]float64 `json:"outage"`
	// AnalyticalOutage fits a Gaussian to the received power in dBm of each
	// user and evaluates it at the sensitivity, without shadowing.
	AnalyticalOutage   map[string][]float64 `json:"analyticalOutage"`
	SpectralEfficiency []float64            `json:"se"`
	EnergyEfficiency   []float64            `json:"ee"`
}

func newResults(users []string, txPower []float64) *Results {
	n := len(txPower)
	r := &Results{
		TxPower:            append([]float64(nil), txPower...),
		Rates:              make(map[string][]float64, len(users)),
		SumRate:            make([]float64, n),
		Outage:             make(map[string][]float64, len(users)),
		AnalyticalOutage:   make(map[string][]float64, len(users)),
		SpectralEfficiency: make([]float64, n),
		EnergyEfficiency:   make([]float64, n),
	}
	for _, u := range users {
		r.Rates[u] = make([]float64, n)
		r.Outage[u] = make([]float64, n)
		r.AnalyticalOutage[u] = make([]float64, n)
	}
	return r
}

// Simulator evaluates the two cell CoMP NOMA downlink: each base station
// serves its centre user and both cooperate on the shared far user, with an
// optional STAR-RIS between them.
type Simulator struct {
	BS1, BS2     *model.Transceiver
	U1c, U2c, Uf *model.Transceiver
	STAR         *ris.STAR
}

func (s *Simulator) validate() error {
	for _, t := range []*model.Transceiver{s.BS1, s.BS2, s.U1c, s.U2c, s.Uf} {
		if t == nil {
			return errors.NewInvalid("simulator is missing an endpoint")
		}
	}
	return nil
}

// Users in reporting order.
func (s *Simulator) Users() []string {
	return []string{s.U1c.ID(), s.U2c.ID(), s.Uf.ID()}
}

func (s *Simulator) configureSurface(lc *links.Collection) error {
	if s.STAR == nil {
		return nil
	}
	bs := []string{s.BS1.ID(), s.BS2.ID()}
	if err := s.STAR.SetReflectionParameters(lc, bs, []string{s.U1c.ID(), s.U2c.ID()}); err != nil {
		return err
	}
	if err := s.STAR.SetTransmissionParameters(lc, bs, s.Uf.ID()); err != nil {
		return err
	}
	if err := s.STAR.MergeLink(lc, []string{s.BS1.ID()}, s.U1c.ID()); err != nil {
		return err
	}
	if err := s.STAR.MergeLink(lc, []string{s.BS2.ID()}, s.U2c.ID()); err != nil {
		return err
	}
	return s.STAR.MergeLink(lc, bs, s.Uf.ID())
}

type gains struct {
	g11, g21, g22, g12, g1f, g2f []float64
}

func (s *Simulator) gains(lc *links.Collection) (*gains, error) {
	g := &gains{}
	pairs := []struct {
		dst    *[]float64
		tx, rx string
	}{
		{&g.g11, s.BS1.ID(), s.U1c.ID()},
		{&g.g21, s.BS2.ID(), s.U1c.ID()},
		{&g.g22, s.BS2.ID(), s.U2c.ID()},
		{&g.g12, s.BS1.ID(), s.U2c.ID()},
		{&g.g1f, s.BS1.ID(), s.Uf.ID()},
		{&g.g2f, s.BS2.ID(), s.Uf.ID()},
	}
	realizations := -1
	for _, p := range pairs {
		v, err := lc.GetGain(p.tx, p.rx)
		if err != nil {
			return nil, err
		}
		if realizations >= 0 && len(v) != realizations {
			return nil, errors.NewInvalid("link %s->%s has %d realizations, expected %d", p.tx, p.rx, len(v), realizations)
		}
		realizations = len(v)
		*p.dst = v
	}
	return g, nil
}

// Run fits and merges the surface when one is configured, then sweeps the
// transmit power. The collection is modified in place by the merge.
func (s *Simulator) Run(lc *links.Collection, params Params) (*Results, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	if err := s.configureSurface(lc); err != nil {
		return nil, err
	}
	g, err := s.gains(lc)
	if err != nil {
		return nil, err
	}

	u1c, u2c, uf := s.U1c.ID(), s.U2c.ID(), s.Uf.ID()
	a1c, a2c := s.BS1.Allocation(u1c), s.BS2.Allocation(u2c)
	a1f, a2f := s.BS1.Allocation(uf), s.BS2.Allocation(uf)
	n0 := utils.DbmToPow(params.Noise)
	realizations := float64(len(g.g11))
	res := newResults(s.Users(), params.TxPower)

	outage := func(snr float64) float64 {
		return utils.QFunc((utils.PowToDb(snr) + params.Noise - params.Sensitivity) / params.Sigma)
	}
	received := map[string][]float64{
		u1c: make([]float64, len(g.g11)),
		u2c: make([]float64, len(g.g11)),
		uf:  make([]float64, len(g.g11)),
	}
	// dBm of a received SNR, floored so that blocked links stay finite
	power := func(snr float64) float64 {
		return utils.PowToDb(math.Max(snr, minSNR)) + params.Noise
	}

	for j, ptDBm := range params.TxPower {
		pt := utils.DbmToPow(ptDBm)
		var r1, r2, rf, o1, o2, of float64
		for i := range g.g11 {
			snr1 := a1c * pt * g.g11[i] / (pt*g.g21[i] + n0)
			snr2 := a2c * pt * g.g22[i] / (pt*g.g12[i] + n0)

			var snrBS1, snrBS2 float64
			if params.CoMP {
				snrBS1 = pt * g.g1f[i] / n0
				snrBS2 = pt * g.g2f[i] / n0
			} else {
				snrBS1 = pt * g.g1f[i] / (n0 + pt*g.g2f[i])
				snrBS2 = pt * g.g2f[i] / (n0 + pt*g.g1f[i])
			}
			snrf := (a1f*snrBS1 + a2f*snrBS2) / (a1c*snrBS1 + a2c*snrBS2 + 1)

			r1 += math.Log2(1 + snr1)
			r2 += math.Log2(1 + snr2)
			rf += math.Log2(1 + snrf)
			o1 += outage(snr1)
			o2 += outage(snr2)
			of += outage(snrf)
			received[u1c][i] = power(snr1)
			received[u2c][i] = power(snr2)
			received[uf][i] = power(snrf)
		}
		res.Rates[u1c][j] = r1 / realizations
		res.Rates[u2c][j] = r2 / realizations
		res.Rates[uf][j] = rf / realizations
		res.Outage[u1c][j] = o1 / realizations
		res.Outage[u2c][j] = o2 / realizations
		res.Outage[uf][j] = of / realizations
		for _, u := range s.Users() {
			if res.AnalyticalOutage[u][j], err = statistics.OutageQ(received[u], params.Sensitivity); err != nil {
				return nil, err
			}
		}

		sum := res.Rates[u1c][j] + res.Rates[u2c][j] + res.Rates[uf][j]
		res.SumRate[j] = sum
		res.SpectralEfficiency[j] = sum
		res.EnergyEfficiency[j] = sum / (2*pt + params.CircuitPower)
	}
	log.Debugf("simulated %d realizations over %d power points (surface=%t, comp=%t)",
		len(g.g11), len(params.TxPower), s.STAR != nil, params.CoMP)
	return res, nil
}
