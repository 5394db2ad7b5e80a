// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Scenario simulation scenario
type Scenario struct {
	Endpoints []EndpointConfig        `mapstructure:"endpoints" yaml:"endpoints"`
	Fading    map[string]FadingSpec   `mapstructure:"fading" yaml:"fading"`
	Pathloss  map[string]PathlossSpec `mapstructure:"pathloss" yaml:"pathloss"`
	Settings  map[string]Setting      `mapstructure:"settings" yaml:"settings"`
	Constants Constants               `mapstructure:"constants" yaml:"constants"`
	Links     []LinkConfig            `mapstructure:"links" yaml:"links"`
	Roles     Roles                   `mapstructure:"roles" yaml:"roles"`
}

// EndpointConfig describes a single base station, user or surface
type EndpointConfig struct {
	ID          string       `mapstructure:"id" yaml:"id"`
	Kind        string       `mapstructure:"kind" yaml:"kind"`
	Position    Position     `mapstructure:"position" yaml:"position"`
	Antennas    int          `mapstructure:"antennas" yaml:"antennas"`
	Allocations []Allocation `mapstructure:"allocations" yaml:"allocations"`
	Placement   *Placement   `mapstructure:"placement" yaml:"placement"`
}

// Allocation is the NOMA power fraction a base station gives to one user
type Allocation struct {
	User     string  `mapstructure:"user" yaml:"user"`
	Fraction float64 `mapstructure:"fraction" yaml:"fraction"`
}

// Placement drops a user uniformly inside the coverage disk of an anchor
// base station. A zero radius is replaced by the anchor's coverage radius.
type Placement struct {
	Anchor   string  `mapstructure:"anchor" yaml:"anchor"`
	Radius   float64 `mapstructure:"radius" yaml:"radius"`
	Pathloss string  `mapstructure:"pathloss" yaml:"pathloss"`
}

// Setting selects one of the evaluated deployments
type Setting struct {
	RIS        bool        `mapstructure:"ris" yaml:"ris"`
	Elements   int         `mapstructure:"elements" yaml:"elements"`
	BetaR      float64     `mapstructure:"betaR" yaml:"betaR"`
	BetaT      float64     `mapstructure:"betaT" yaml:"betaT"`
	Assignment *Assignment `mapstructure:"assignment" yaml:"assignment"`
	CoMP       bool        `mapstructure:"comp" yaml:"comp"`
}

// Assignment splits the surface elements between the two base stations
type Assignment struct {
	BS1 int `mapstructure:"bs1" yaml:"bs1" json:"bs1"`
	BS2 int `mapstructure:"bs2" yaml:"bs2" json:"bs2"`
}

// Constants physical and run constants shared by every setting
type Constants struct {
	Bandwidth    float64    `mapstructure:"bandwidth" yaml:"bandwidth"`
	Temperature  float64    `mapstructure:"temperature" yaml:"temperature"`
	Frequency    float64    `mapstructure:"frequency" yaml:"frequency"`
	Sigma        float64    `mapstructure:"sigma" yaml:"sigma"`
	NoiseFigure  float64    `mapstructure:"noiseFigure" yaml:"noiseFigure"`
	CircuitPower float64    `mapstructure:"circuitPower" yaml:"circuitPower"`
	Sensitivity  float64    `mapstructure:"sensitivity" yaml:"sensitivity"`
	Realizations int        `mapstructure:"realizations" yaml:"realizations"`
	TxPower      PowerRange `mapstructure:"txPower" yaml:"txPower"`
}

// PowerRange evenly spaced transmit powers in dBm, both ends included
type PowerRange struct {
	Min    float64 `mapstructure:"min" yaml:"min"`
	Max    float64 `mapstructure:"max" yaml:"max"`
	Points int     `mapstructure:"points" yaml:"points"`
}

// LinkConfig one directed link of the scenario
type LinkConfig struct {
	Tx       string `mapstructure:"tx" yaml:"tx"`
	Rx       string `mapstructure:"rx" yaml:"rx"`
	Fading   string `mapstructure:"fading" yaml:"fading"`
	Pathloss string `mapstructure:"pathloss" yaml:"pathloss"`
	Type     string `mapstructure:"type" yaml:"type"`
}

// Roles maps endpoint ids to the roles of the two-cell downlink
type Roles struct {
	BS1  string `mapstructure:"bs1" yaml:"bs1"`
	BS2  string `mapstructure:"bs2" yaml:"bs2"`
	U1c  string `mapstructure:"u1c" yaml:"u1c"`
	U2c  string `mapstructure:"u2c" yaml:"u2c"`
	Uf   string `mapstructure:"uf" yaml:"uf"`
	STAR string `mapstructure:"star" yaml:"star"`
}

// FadingPreset returns the named fading parameters
func (s *Scenario) FadingPreset(name string) (FadingSpec, error) {
	for k, v := range s.Fading {
		if strings.EqualFold(k, name) {
			return v, nil
		}
	}
	return FadingSpec{}, errors.NewNotFound("fading preset %s not found", name)
}

// PathlossPreset returns the named path-loss parameters
func (s *Scenario) PathlossPreset(name string) (PathlossSpec, error) {
	for k, v := range s.Pathloss {
		if strings.EqualFold(k, name) {
			return v, nil
		}
	}
	return PathlossSpec{}, errors.NewNotFound("pathloss preset %s not found", name)
}

// Setting returns the named setting
func (s *Scenario) Setting(name string) (Setting, error) {
	for k, v := range s.Settings {
		if strings.EqualFold(k, name) {
			return v, nil
		}
	}
	return Setting{}, errors.NewNotFound("setting %s not found", name)
}

// Endpoint returns the endpoint configuration with the given id
func (s *Scenario) Endpoint(id string) (EndpointConfig, error) {
	for _, e := range s.Endpoints {
		if e.ID == id {
			return e, nil
		}
	}
	return EndpointConfig{}, errors.NewNotFound("endpoint %s not found", id)
}

// Powers expands the range into its dBm points
func (r PowerRange) Powers() []float64 {
	if r.Points <= 1 {
		return []float64{r.Min}
	}
	step := (r.Max - r.Min) / float64(r.Points-1)
	powers := make([]float64, r.Points)
	for i := range powers {
		powers[i] = r.Min + float64(i)*step
	}
	return powers
}
