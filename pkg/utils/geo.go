// SPDX-FileCopyrightText: 2021-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0
//

package utils

import (
	"math"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/rand"
)

// Distance returns the euclidean distance in meters between two positions
// of the same dimensionality
func Distance(p1 model.Position, p2 model.Position) (float64, error) {
	if err := p1.Validate(); err != nil {
		return 0, err
	}
	if len(p1) != len(p2) {
		return 0, errors.NewInvalid("cannot measure between %d-D and %d-D positions", len(p1), len(p2))
	}
	sum := 0.0
	for i := range p1 {
		d := p1[i] - p2[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// RandomPositionInDisk draws a position uniformly inside the horizontal
// disk of radius around center; the height of center is kept
func RandomPositionInDisk(center model.Position, radius float64, src rand.Source) model.Position {
	rnd := rand.New(src)
	u := rnd.Float64()
	v := rnd.Float64()

	w := radius * math.Sqrt(u)
	t := 2 * math.Pi * v
	p := append(model.Position(nil), center...)
	p[0] = RoundToDecimal(center[0]+w*math.Cos(t), 6)
	p[1] = RoundToDecimal(center[1]+w*math.Sin(t), 6)
	return p
}
