// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"os"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// LoadConfig loads the named scenario, searching the working directory,
// ./config and $HOME/.ris-simulator
func LoadConfig(scenario *Scenario, name string) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.ris-simulator")
	}
	return load(v, scenario)
}

// LoadConfigFile loads the scenario from an explicit path
func LoadConfigFile(scenario *Scenario, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, scenario)
}

func load(v *viper.Viper, scenario *Scenario) error {
	if err := v.ReadInConfig(); err != nil {
		return errors.NewNotFound("unable to read scenario: %v", err)
	}
	log.Infof("Loading scenario from %s", v.ConfigFileUsed())
	if err := v.Unmarshal(scenario); err != nil {
		return errors.NewInvalid("unable to decode scenario: %v", err)
	}
	return scenario.Validate()
}

// LoadConfigFromBytes parses a YAML scenario
func LoadConfigFromBytes(scenario *Scenario, data []byte) error {
	if err := yaml.Unmarshal(data, scenario); err != nil {
		return errors.NewInvalid("unable to decode scenario: %v", err)
	}
	return scenario.Validate()
}

// Validate checks the cross references of the scenario
func (s *Scenario) Validate() error {
	ids := make(map[string]bool, len(s.Endpoints))
	for _, e := range s.Endpoints {
		if _, err := ParseKind(e.Kind); err != nil {
			return err
		}
		if ids[e.ID] {
			return errors.NewAlreadyExists("duplicate endpoint %s", e.ID)
		}
		ids[e.ID] = true
	}
	for _, l := range s.Links {
		if !ids[l.Tx] || !ids[l.Rx] {
			return errors.NewNotFound("link %s->%s references an unknown endpoint", l.Tx, l.Rx)
		}
		if _, err := s.FadingPreset(l.Fading); err != nil {
			return err
		}
		if _, err := s.PathlossPreset(l.Pathloss); err != nil {
			return err
		}
	}
	if s.Constants.Temperature == 0 {
		s.Constants.Temperature = DefaultTemperature
	}
	return nil
}

// DefaultTemperature receiver temperature in Kelvin
const DefaultTemperature = 300
