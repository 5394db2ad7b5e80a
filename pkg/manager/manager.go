// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"math"

	"github.com/nfvri/ris-simulator/pkg/fading"
	"github.com/nfvri/ris-simulator/pkg/links"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/report"
	"github.com/nfvri/ris-simulator/pkg/ris"
	"github.com/nfvri/ris-simulator/pkg/signal"
	"github.com/nfvri/ris-simulator/pkg/simulation"
	redisLib "github.com/nfvri/ris-simulator/pkg/store/redis"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/nfvri/ris-simulator/pkg/utils/solver"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

var log = logging.GetLogger()

const (
	// DefaultScenario is searched for when no scenario path is given
	DefaultScenario = "star-ris"
	// DefaultSetting selects the 32 element STAR-RIS deployment
	DefaultSetting = "ris32"

	defaultBeta   = 0.5
	coverageGuess = 10.0
	redisRetries  = 5
)

// Config is a manager configuration
type Config struct {
	ScenarioPath string
	ScenarioName string
	Setting      string
	// Realizations overrides the scenario constant when positive
	Realizations int
	Runs         int
	Workers      int
	Seed         uint64
	PlotPath     string
	RedisEnabled bool
	RedisAddress string
	Registerer   prometheus.Registerer
}

// Manager loads a scenario and drives a batch of simulations over it
type Manager struct {
	config    Config
	scenario  *model.Scenario
	setting   model.Setting
	positions map[string]model.Position
	store     redisLib.Store
	metrics   *simulation.Metrics
}

// NewManager creates a new manager
func NewManager(config *Config) (*Manager, error) {
	log.Info("Creating Manager")
	cfg := *config
	if cfg.ScenarioName == "" {
		cfg.ScenarioName = DefaultScenario
	}
	if cfg.Setting == "" {
		cfg.Setting = DefaultSetting
	}
	if cfg.Runs <= 0 {
		cfg.Runs = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RedisAddress == "" {
		cfg.RedisAddress = utils.GetEnv("REDIS_HOST", "localhost") + ":" + utils.GetEnv("REDIS_PORT", "6379")
	}
	metrics, err := simulation.NewMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}
	return &Manager{config: cfg, metrics: metrics}, nil
}

// SetStore replaces the results store; redis is then not dialled
func (m *Manager) SetStore(store redisLib.Store) {
	m.store = store
}

// Scenario returns the loaded scenario, nil before Run
func (m *Manager) Scenario() *model.Scenario {
	return m.scenario
}

// Position returns where the endpoint was placed by the last Run
func (m *Manager) Position(id string) (model.Position, bool) {
	p, ok := m.positions[id]
	return p, ok
}

// Run loads the scenario, simulates the configured setting and stores the
// averaged results under a new run id.
func (m *Manager) Run(ctx context.Context) (string, *simulation.Results, error) {
	log.Info("Running Manager")
	if err := m.loadScenario(); err != nil {
		log.Error("Unable to load scenario: ", err)
		return "", nil, err
	}
	params, err := m.params()
	if err != nil {
		return "", nil, err
	}
	if m.positions, err = m.place(); err != nil {
		return "", nil, err
	}

	batch := &simulation.Batch{
		Runs:    m.config.Runs,
		Workers: m.config.Workers,
		Seed:    m.config.Seed,
		Metrics: m.metrics,
	}
	results, err := batch.Run(ctx, m.build, params)
	if err != nil {
		log.Error("Simulation failed: ", err)
		return "", nil, err
	}

	runID := redisLib.NewRunID()
	if err := m.storeResults(ctx, runID, results); err != nil {
		return "", nil, err
	}
	if m.config.PlotPath != "" {
		if _, err := report.SaveRateCurves(results, m.config.PlotPath); err != nil {
			return "", nil, err
		}
		if _, err := report.SaveOutageCurves(results, m.config.PlotPath); err != nil {
			return "", nil, err
		}
	}
	log.Infof("Run %s finished: peak sum rate %.3f bit/s/Hz", runID, floats.Max(results.SumRate))
	return runID, results, nil
}

func (m *Manager) loadScenario() error {
	scenario := &model.Scenario{}
	var err error
	if m.config.ScenarioPath != "" {
		err = model.LoadConfigFile(scenario, m.config.ScenarioPath)
	} else {
		err = model.LoadConfig(scenario, m.config.ScenarioName)
	}
	if err != nil {
		return err
	}
	setting, err := scenario.Setting(m.config.Setting)
	if err != nil {
		return err
	}
	if m.config.Realizations > 0 {
		scenario.Constants.Realizations = m.config.Realizations
	}
	if scenario.Constants.Realizations <= 0 {
		return errors.NewInvalid("scenario needs a positive number of realizations")
	}
	m.scenario = scenario
	m.setting = setting
	log.Infof("Loaded %d endpoints and %d links, setting %s", len(scenario.Endpoints), len(scenario.Links), m.config.Setting)
	return nil
}

func (m *Manager) params() (simulation.Params, error) {
	c := m.scenario.Constants
	noiseFigure := c.NoiseFigure
	if noiseFigure == 0 {
		noiseFigure = signal.GetNoiseFigure(c.Bandwidth)
	}
	noise, err := signal.GetNoisePower(c.Bandwidth, c.Temperature, noiseFigure)
	if err != nil {
		return simulation.Params{}, err
	}
	log.Infof("Noise power %.2f dBm over %.0f Hz", noise, c.Bandwidth)
	return simulation.Params{
		TxPower:      c.TxPower.Powers(),
		Noise:        noise,
		Sigma:        c.Sigma,
		CircuitPower: c.CircuitPower,
		Sensitivity:  c.Sensitivity,
		CoMP:         m.setting.CoMP,
	}, nil
}

// place resolves every endpoint position, dropping configured users inside
// the coverage disk of their anchor.
func (m *Manager) place() (map[string]model.Position, error) {
	positions := make(map[string]model.Position, len(m.scenario.Endpoints))
	for _, e := range m.scenario.Endpoints {
		positions[e.ID] = e.Position
	}
	rnd := rand.New(rand.NewSource(m.config.Seed))
	c := m.scenario.Constants
	for _, e := range m.scenario.Endpoints {
		if e.Placement == nil {
			continue
		}
		anchor, ok := positions[e.Placement.Anchor]
		if !ok {
			return nil, errors.NewNotFound("placement anchor %s of %s not found", e.Placement.Anchor, e.ID)
		}
		radius := e.Placement.Radius
		if radius <= 0 {
			spec, err := m.scenario.PathlossPreset(e.Placement.Pathloss)
			if err != nil {
				return nil, err
			}
			loss := func(d float64) float64 {
				pl, err := signal.GetPathLoss(d, spec, c.Frequency, nil)
				if err != nil {
					return math.NaN()
				}
				return pl
			}
			radius, err = solver.CoverageRadius(loss, c.TxPower.Max-c.Sensitivity, coverageGuess)
			if err != nil {
				return nil, err
			}
		}
		pos := utils.RandomPositionInDisk(anchor, radius, rand.NewSource(rnd.Uint64()))
		if len(pos) == 3 && len(e.Position) == 3 {
			pos[2] = e.Position.Z()
		}
		log.Infof("Placed %s at %v within %.1f m of %s", e.ID, pos, radius, e.Placement.Anchor)
		positions[e.ID] = pos
	}
	return positions, nil
}

func (m *Manager) surfaceEnabled() bool {
	return m.setting.RIS && m.scenario.Roles.STAR != ""
}

func (m *Manager) newSTAR(e model.EndpointConfig) (*ris.STAR, error) {
	elements := m.setting.Elements
	if elements <= 0 {
		return nil, errors.NewInvalid("setting enables the surface without elements")
	}
	betaR, betaT := m.setting.BetaR, m.setting.BetaT
	if betaR == 0 && betaT == 0 {
		betaR, betaT = defaultBeta, defaultBeta
	}
	return ris.NewSTAR(e.ID, m.positions[e.ID], elements, betaR, betaT, m.setting.Assignment)
}

// build assembles one independent simulator and link collection
func (m *Manager) build(stream *fading.Stream) (*simulation.Simulator, *links.Collection, error) {
	endpoints := make(map[string]model.Endpoint, len(m.scenario.Endpoints))
	transceivers := make(map[string]*model.Transceiver)
	var star *ris.STAR
	for _, e := range m.scenario.Endpoints {
		kind, err := model.ParseKind(e.Kind)
		if err != nil {
			return nil, nil, err
		}
		switch kind {
		case model.BaseStation, model.UserEquipment:
			var t *model.Transceiver
			if kind == model.BaseStation {
				t, err = model.NewBaseStation(e.ID, m.positions[e.ID], e.Antennas)
			} else {
				t, err = model.NewUserEquipment(e.ID, m.positions[e.ID], e.Antennas)
			}
			if err != nil {
				return nil, nil, err
			}
			for _, a := range e.Allocations {
				t.Allocations[a.User] = a.Fraction
			}
			transceivers[e.ID] = t
			endpoints[e.ID] = t
		case model.STARRIS:
			if !m.surfaceEnabled() || e.ID != m.scenario.Roles.STAR {
				continue
			}
			if star, err = m.newSTAR(e); err != nil {
				return nil, nil, err
			}
			endpoints[e.ID] = star
		default:
			return nil, nil, errors.NewNotSupported("endpoint %s of kind %s cannot be simulated", e.ID, kind)
		}
	}

	lc, err := links.NewCollection(m.scenario.Constants.Realizations, m.scenario.Constants.Frequency, stream)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range m.scenario.Links {
		tx, txOK := endpoints[l.Tx]
		rx, rxOK := endpoints[l.Rx]
		if !txOK || !rxOK {
			// surface legs of a setting without the surface
			continue
		}
		linkType, err := links.ParseLinkType(l.Type)
		if err != nil {
			return nil, nil, err
		}
		fadingSpec, err := m.scenario.FadingPreset(l.Fading)
		if err != nil {
			return nil, nil, err
		}
		pathlossSpec, err := m.scenario.PathlossPreset(l.Pathloss)
		if err != nil {
			return nil, nil, err
		}
		if err := lc.AddLink(tx, rx, fadingSpec, pathlossSpec, linkType); err != nil {
			return nil, nil, err
		}
	}

	sim := &simulation.Simulator{STAR: star}
	roles := []struct {
		dst **model.Transceiver
		id  string
	}{
		{&sim.BS1, m.scenario.Roles.BS1},
		{&sim.BS2, m.scenario.Roles.BS2},
		{&sim.U1c, m.scenario.Roles.U1c},
		{&sim.U2c, m.scenario.Roles.U2c},
		{&sim.Uf, m.scenario.Roles.Uf},
	}
	for _, r := range roles {
		t, ok := transceivers[r.id]
		if !ok {
			return nil, nil, errors.NewNotFound("role endpoint %q not found", r.id)
		}
		*r.dst = t
	}
	return sim, lc, nil
}

func (m *Manager) storeResults(ctx context.Context, runID string, results *simulation.Results) error {
	if m.store == nil {
		if !m.config.RedisEnabled {
			return nil
		}
		store, err := redisLib.NewRedisStore(ctx, redisLib.Options{Address: m.config.RedisAddress, ConnectRetries: redisRetries})
		if err != nil {
			return err
		}
		m.store = store
	}
	if err := m.store.AddResults(ctx, runID, results); err != nil {
		return err
	}
	log.Infof("Stored results of run %s", runID)
	return nil
}
