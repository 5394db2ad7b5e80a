package signal

import (
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Boltzmann constant in J/K
const Boltzmann = 1.380649e-23

// ThermalNoise returns the noise power spectral density k·T in W/Hz
func ThermalNoise(temperature float64) float64 {
	return Boltzmann * temperature
}

// GetNoisePower returns the receiver noise power in dBm
func GetNoisePower(bandwidthHz, temperature, noiseFigureDb float64) (float64, error) {
	if bandwidthHz < 0 {
		return 0, errors.NewInvalid("bandwidth must be non-negative, got %v", bandwidthHz)
	}
	if temperature < 0 {
		return 0, errors.NewInvalid("temperature must be non-negative, got %v", temperature)
	}
	return utils.PowToDbm(ThermalNoise(temperature)) + utils.PowToDb(bandwidthHz) + noiseFigureDb, nil
}

// GetNoiseFigure returns a default macro receiver noise figure for the bandwidth
func GetNoiseFigure(bandwidthHz float64) float64 {
	switch {
	case bandwidthHz >= 20e6:
		return 9.0
	case bandwidthHz >= 15e6:
		return 8.0
	case bandwidthHz >= 10e6:
		return 7.0
	default:
		return 6.0
	}
}
