package ris

import (
	"math/cmplx"

	"github.com/nfvri/ris-simulator/pkg/channel"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Style selects how the cascaded channel is evaluated
type Style string

const (
	// SumStyle sums the per-element paths of every realization
	SumStyle Style = "sum"
	// MatrixStyle multiplies h_Rr^T·Φ·h_tR for a single realization
	MatrixStyle Style = "matrix"
)

// responses returns the diagonal a·exp(jθ) of the reflection matrix
func responses(surface Reflector) ([]complex128, error) {
	amplitudes, err := surface.Amplitudes()
	if err != nil {
		return nil, err
	}
	phases, err := surface.PhaseShifts()
	if err != nil {
		return nil, err
	}
	diag := make([]complex128, surface.Elements())
	for i := range diag {
		diag[i] = cmplx.Rect(amplitudes[i], phases[i])
	}
	return diag, nil
}

func reflectionMatrix(surface Reflector) (*mat.CDense, error) {
	diag, err := responses(surface)
	if err != nil {
		return nil, err
	}
	phi := mat.NewCDense(len(diag), len(diag), nil)
	for i, d := range diag {
		phi.Set(i, i, d)
	}
	return phi, nil
}

// CascadedChannelGain returns the channel through the surface given the
// transmitter-to-surface leg txRIS and the surface-to-receiver leg risRx.
// The sum style takes (elements, realizations, 1) legs and yields
// (realizations, 1); the matrix style takes (elements, 1) legs and yields
// (1, 1).
func CascadedChannelGain(txRIS, risRx channel.Coefficients, surface Reflector, style Style) (channel.Coefficients, error) {
	switch style {
	case SumStyle:
		return cascadedSum(txRIS, risRx, surface)
	case MatrixStyle:
		return cascadedMatrix(txRIS, risRx, surface)
	default:
		return channel.Coefficients{}, errors.NewNotSupported("cascaded style %q not implemented", style)
	}
}

func checkLegs(txRIS, risRx channel.Coefficients, surface Reflector, dims int) error {
	if len(txRIS.Shape) != dims || !txRIS.Shape.Equal(risRx.Shape) {
		return errors.NewInvalid("legs of shape %s and %s are not matching %d-D arrays", txRIS.Shape, risRx.Shape, dims)
	}
	if txRIS.Shape.Rows() != surface.Elements() {
		return errors.NewInvalid("legs have %d elements, surface has %d", txRIS.Shape.Rows(), surface.Elements())
	}
	return nil
}

func cascadedSum(txRIS, risRx channel.Coefficients, surface Reflector) (channel.Coefficients, error) {
	if err := checkLegs(txRIS, risRx, surface, 3); err != nil {
		return channel.Coefficients{}, err
	}
	diag, err := responses(surface)
	if err != nil {
		return channel.Coefficients{}, err
	}

	out := channel.Zeros(channel.SISO(txRIS.Shape.Realizations()))
	for i, response := range diag {
		in, rx := txRIS.Row(i), risRx.Row(i)
		for r := range out.Data {
			out.Data[r] += in[r] * response * rx[r]
		}
	}
	return out, nil
}

func cascadedMatrix(txRIS, risRx channel.Coefficients, surface Reflector) (channel.Coefficients, error) {
	if len(txRIS.Shape) == 3 || len(risRx.Shape) == 3 {
		return channel.Coefficients{}, errors.NewNotSupported("matrix style is not implemented for realization-indexed legs")
	}
	if err := checkLegs(txRIS, risRx, surface, 2); err != nil {
		return channel.Coefficients{}, err
	}
	if txRIS.Shape[1] != 1 {
		return channel.Coefficients{}, errors.NewInvalid("matrix style needs single-antenna legs, got %s", txRIS.Shape)
	}
	diag, err := responses(surface)
	if err != nil {
		return channel.Coefficients{}, err
	}

	// Φ is diagonal so h_Rr^T·Φ·h_tR reduces to one pass over the elements
	var h complex128
	for i, d := range diag {
		h += risRx.Data[i] * d * txRIS.Data[i]
	}
	return channel.Coefficients{Shape: channel.Shape{1, 1}, Data: []complex128{h}}, nil
}

// EffectiveChannelGain adds the cascaded channel to the direct one
func EffectiveChannelGain(direct, txRIS, risRx channel.Coefficients, surface Reflector, style Style) (channel.Coefficients, error) {
	cascaded, err := CascadedChannelGain(txRIS, risRx, surface, style)
	if err != nil {
		return channel.Coefficients{}, err
	}
	if err := cascaded.Add(direct); err != nil {
		return channel.Coefficients{}, err
	}
	return cascaded, nil
}
