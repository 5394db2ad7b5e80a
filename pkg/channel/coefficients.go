package channel

import (
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Shape is the dimension list of a coefficient array. Direct links are
// (realizations, 1); surface legs are (elements, realizations, 1).
type Shape []int

// SISO is the shape of a single-antenna link
func SISO(realizations int) Shape {
	return Shape{realizations, 1}
}

// Elements is the shape of a per-element surface leg
func Elements(elements, realizations int) Shape {
	return Shape{elements, realizations, 1}
}

// Validate checks the shape has two or three positive dimensions
func (s Shape) Validate() error {
	if len(s) != 2 && len(s) != 3 {
		return errors.NewInvalid("shape %s must have 2 or 3 dimensions", s)
	}
	for _, d := range s {
		if d <= 0 {
			return errors.NewInvalid("shape %s has a non-positive dimension", s)
		}
	}
	return nil
}

// Len is the number of entries
func (s Shape) Len() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Rows is the size of the leading axis
func (s Shape) Rows() int {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

// Realizations is the size of the realization axis
func (s Shape) Realizations() int {
	if len(s) == 3 {
		return s[1]
	}
	return s.Rows()
}

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(dims, ", ") + ")"
}

// Coefficients is a row-major array of complex channel coefficients
type Coefficients struct {
	Shape Shape
	Data  []complex128
}

// Zeros returns an all-zero array
func Zeros(shape Shape) Coefficients {
	return Coefficients{Shape: append(Shape(nil), shape...), Data: make([]complex128, shape.Len())}
}

// NewCoefficients wraps data, which must hold exactly shape.Len() entries
func NewCoefficients(shape Shape, data []complex128) (Coefficients, error) {
	if err := shape.Validate(); err != nil {
		return Coefficients{}, err
	}
	if len(data) != shape.Len() {
		return Coefficients{}, errors.NewInvalid("%d values do not fill shape %s", len(data), shape)
	}
	return Coefficients{Shape: append(Shape(nil), shape...), Data: data}, nil
}

// Row returns a view of the entries at index i of the leading axis
func (c Coefficients) Row(i int) []complex128 {
	stride := len(c.Data) / c.Shape.Rows()
	return c.Data[i*stride : (i+1)*stride]
}

// Clone returns a deep copy
func (c Coefficients) Clone() Coefficients {
	return Coefficients{
		Shape: append(Shape(nil), c.Shape...),
		Data:  append([]complex128(nil), c.Data...),
	}
}

// Add adds o element-wise in place
func (c *Coefficients) Add(o Coefficients) error {
	if !c.Shape.Equal(o.Shape) {
		return errors.NewInvalid("shape mismatch: %s vs %s", c.Shape, o.Shape)
	}
	for i, v := range o.Data {
		c.Data[i] += v
	}
	return nil
}

// Gain returns |h|²
func (c Coefficients) Gain() []float64 {
	gain := make([]float64, len(c.Data))
	for i, h := range c.Data {
		gain[i] = real(h)*real(h) + imag(h)*imag(h)
	}
	return gain
}

// Abs returns |h|
func (c Coefficients) Abs() []float64 {
	abs := make([]float64, len(c.Data))
	for i, h := range c.Data {
		abs[i] = cmplx.Abs(h)
	}
	return abs
}

// Angle returns the phase of h in (-π, π]
func (c Coefficients) Angle() []float64 {
	angle := make([]float64, len(c.Data))
	for i, h := range c.Data {
		angle[i] = cmplx.Phase(h)
	}
	return angle
}

// Magnitude is a real array shaped like a link
type Magnitude struct {
	Shape Shape
	Data  []float64
}

// NewMagnitude wraps data, which must hold exactly shape.Len() entries
func NewMagnitude(shape Shape, data []float64) (Magnitude, error) {
	if err := shape.Validate(); err != nil {
		return Magnitude{}, err
	}
	if len(data) != shape.Len() {
		return Magnitude{}, errors.NewInvalid("%d values do not fill shape %s", len(data), shape)
	}
	return Magnitude{Shape: append(Shape(nil), shape...), Data: data}, nil
}
