// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"os"
	"testing"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioPath = "../../config/star-ris.yaml"

func TestModel(t *testing.T) {
	scenario := &Scenario{}
	err := LoadConfigFile(scenario, scenarioPath)
	require.NoError(t, err)
	t.Log(scenario)

	assert.Equal(t, 6, len(scenario.Endpoints))
	assert.Equal(t, 11, len(scenario.Links))
	assert.Equal(t, 4, len(scenario.Settings))
	assert.Equal(t, "RIS", scenario.Roles.STAR)

	bs1, err := scenario.Endpoint("BS1")
	assert.NoError(t, err)
	assert.Equal(t, Position{-50, 0, 25}, bs1.Position)
	assert.Equal(t, 2, len(bs1.Allocations))
	assert.Equal(t, "U1c", bs1.Allocations[0].User)
	assert.Equal(t, 0.3, bs1.Allocations[0].Fraction)

	rician, err := scenario.FadingPreset("ricianE")
	assert.NoError(t, err)
	assert.Equal(t, "rician", rician.Type)
	assert.Equal(t, 4.0, rician.K)

	edge, err := scenario.PathlossPreset("edge")
	assert.NoError(t, err)
	assert.Equal(t, 3.5, edge.Alpha)
	assert.Equal(t, 30.0, edge.P0)

	setting, err := scenario.Setting("ris70")
	assert.NoError(t, err)
	assert.True(t, setting.RIS)
	assert.Equal(t, 70, setting.Elements)

	_, err = scenario.Setting("ris1000")
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, 2.4e9, scenario.Constants.Frequency)
	assert.Equal(t, 161, len(scenario.Constants.TxPower.Powers()))
}

func TestLoadConfigFromBytes(t *testing.T) {
	data, err := os.ReadFile(scenarioPath)
	require.NoError(t, err)

	scenario := &Scenario{}
	assert.NoError(t, LoadConfigFromBytes(scenario, data))
	assert.Equal(t, "1,c", scenario.Links[0].Type)
	assert.Equal(t, 3.0, scenario.Fading["ricianC"].K)
}

func TestLoadConfigRejectsUnknownReferences(t *testing.T) {
	scenario := &Scenario{}
	err := LoadConfigFromBytes(scenario, []byte(`
endpoints:
  - {id: BS1, kind: bs, position: [0, 0, 10]}
links:
  - {tx: BS1, rx: U1, fading: rayleigh, pathloss: center, type: "1,c"}
`))
	assert.True(t, errors.IsNotFound(err))

	err = LoadConfigFromBytes(&Scenario{}, []byte(`
endpoints:
  - {id: BS1, kind: satellite, position: [0, 0]}
`))
	assert.True(t, errors.IsInvalid(err))
}

func TestPowers(t *testing.T) {
	powers := PowerRange{Min: -50, Max: 30, Points: 161}.Powers()
	assert.Equal(t, -50.0, powers[0])
	assert.Equal(t, 30.0, powers[160])
	assert.InDelta(t, 0.5, powers[1]-powers[0], 1e-12)
	assert.Equal(t, []float64{10}, PowerRange{Min: 10, Max: 20, Points: 1}.Powers())
}

func TestDecodeSpecs(t *testing.T) {
	fading, err := DecodeFadingSpec(map[string]interface{}{"type": "rician", "K": 3, "sigma": "1"})
	assert.NoError(t, err)
	assert.Equal(t, FadingSpec{Type: "rician", K: 3, Sigma: 1}, fading)

	_, err = DecodeFadingSpec(map[string]interface{}{"type": "rayleigh", "scale": 1})
	assert.True(t, errors.IsInvalid(err))

	pathloss, err := DecodePathlossSpec(map[string]interface{}{"type": "log-distance", "alpha": 3.5, "d0": 1, "sigma": 4})
	assert.NoError(t, err)
	assert.Equal(t, 3.5, pathloss.Alpha)
	assert.Equal(t, 1.0, pathloss.D0)
}

func TestEndpoints(t *testing.T) {
	bs, err := NewBaseStation("BS1", Position{-50, 0, 25}, 0)
	assert.NoError(t, err)
	assert.Equal(t, BaseStation, bs.Kind())
	assert.Equal(t, 1, bs.Antennas)
	assert.Equal(t, 25.0, bs.Position().Z())

	ue, err := NewUserEquipment("U1", Position{3, 4}, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, ue.Position().Z())
	assert.NoError(t, ue.Reposition(Position{1, 1, 1}))
	assert.Equal(t, Position{1, 1, 1}, ue.Position())
	assert.True(t, errors.IsInvalid(ue.Reposition(Position{1})))

	_, err = NewUserEquipment("U2", Position{1, 2, 3, 4}, 1)
	assert.True(t, errors.IsInvalid(err))

	kind, err := ParseKind("STAR-RIS")
	assert.NoError(t, err)
	assert.Equal(t, STARRIS, kind)
	assert.Equal(t, "star-ris", kind.String())
}
