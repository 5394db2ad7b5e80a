package ris

import (
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Reflector exposes the per-element response of a passive surface
type Reflector interface {
	Elements() int
	Amplitudes() ([]float64, error)
	PhaseShifts() ([]float64, error)
}

// RIS is a reflect-only surface whose every element serves both base stations
type RIS struct {
	model.Node
	elements    int
	amplitudes  []float64
	phaseShifts []float64
}

// NewRIS creates a surface with unset amplitudes and phase shifts
func NewRIS(id string, position model.Position, elements int) (*RIS, error) {
	if elements <= 0 {
		return nil, errors.NewInvalid("element count must be positive, got %d", elements)
	}
	node, err := model.NewNode(id, position, model.RIS)
	if err != nil {
		return nil, err
	}
	return &RIS{Node: node, elements: elements}, nil
}

func (r *RIS) Elements() int { return r.elements }

// Assignment gives every element to both base stations
func (r *RIS) Assignment() model.Assignment {
	return model.Assignment{BS1: r.elements, BS2: r.elements}
}

// SetAmplitudes sets the reflection amplitude of every element, each in [0, 1]
func (r *RIS) SetAmplitudes(amplitudes []float64) error {
	if len(amplitudes) != r.elements {
		return errors.NewInvalid("%d amplitudes for %d elements", len(amplitudes), r.elements)
	}
	for i, a := range amplitudes {
		if a < 0 || a > 1 {
			return errors.NewInvalid("amplitude %v of element %d is outside [0, 1]", a, i)
		}
	}
	r.amplitudes = append([]float64(nil), amplitudes...)
	return nil
}

// SetPhaseShifts sets the phase shift of every element, wrapped to [0, 2π)
func (r *RIS) SetPhaseShifts(phaseShifts []float64) error {
	if len(phaseShifts) != r.elements {
		return errors.NewInvalid("%d phase shifts for %d elements", len(phaseShifts), r.elements)
	}
	r.phaseShifts = make([]float64, r.elements)
	for i, p := range phaseShifts {
		r.phaseShifts[i] = utils.WrapTo2Pi(p)
	}
	return nil
}

func (r *RIS) Amplitudes() ([]float64, error) {
	if r.amplitudes == nil {
		return nil, errors.NewConflict("amplitudes of %s are not set", r.ID())
	}
	return r.amplitudes, nil
}

func (r *RIS) PhaseShifts() ([]float64, error) {
	if r.phaseShifts == nil {
		return nil, errors.NewConflict("phase shifts of %s are not set", r.ID())
	}
	return r.phaseShifts, nil
}

// ReflectionMatrix returns diag(a·exp(jθ))
func (r *RIS) ReflectionMatrix() (*mat.CDense, error) {
	return reflectionMatrix(r)
}
