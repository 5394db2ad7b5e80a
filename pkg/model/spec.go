package model

import (
	"github.com/mitchellh/mapstructure"
	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// FadingSpec selects a small-scale fading distribution and its parameters.
// K is the Rician factor in dB.
type FadingSpec struct {
	Type  string  `mapstructure:"type" yaml:"type" json:"type"`
	Sigma float64 `mapstructure:"sigma" yaml:"sigma" json:"sigma,omitempty"`
	K     float64 `mapstructure:"k" yaml:"K" json:"K,omitempty"`
	M     float64 `mapstructure:"m" yaml:"m" json:"m,omitempty"`
	Omega float64 `mapstructure:"omega" yaml:"omega" json:"omega,omitempty"`
	// Geometric builds the LOS part of Rician RIS legs from element geometry
	Geometric bool `mapstructure:"geometric" yaml:"geometric" json:"geometric,omitempty"`
}

// PathlossSpec selects a large-scale path-loss model and its parameters
type PathlossSpec struct {
	Type     string  `mapstructure:"type" yaml:"type" json:"type"`
	Alpha    float64 `mapstructure:"alpha" yaml:"alpha" json:"alpha,omitempty"`
	P0       float64 `mapstructure:"p0" yaml:"p0" json:"p0,omitempty"`
	D0       float64 `mapstructure:"d0" yaml:"d0" json:"d0,omitempty"`
	Sigma    float64 `mapstructure:"sigma" yaml:"sigma" json:"sigma,omitempty"`
	HeightBS float64 `mapstructure:"hBS" yaml:"hBS" json:"hBS,omitempty"`
	HeightUT float64 `mapstructure:"hUT" yaml:"hUT" json:"hUT,omitempty"`
	LOS      bool    `mapstructure:"los" yaml:"los" json:"los,omitempty"`
}

// DecodeFadingSpec decodes a plain parameter dictionary
func DecodeFadingSpec(params map[string]interface{}) (FadingSpec, error) {
	spec := FadingSpec{}
	if err := decode(params, &spec); err != nil {
		return FadingSpec{}, err
	}
	return spec, nil
}

// DecodePathlossSpec decodes a plain parameter dictionary
func DecodePathlossSpec(params map[string]interface{}) (PathlossSpec, error) {
	spec := PathlossSpec{}
	if err := decode(params, &spec); err != nil {
		return PathlossSpec{}, err
	}
	return spec, nil
}

func decode(params map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(params); err != nil {
		return errors.NewInvalid("invalid parameters: %v", err)
	}
	return nil
}
