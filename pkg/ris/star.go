package ris

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/nfvri/ris-simulator/pkg/channel"
	"github.com/nfvri/ris-simulator/pkg/links"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// State of the STAR-RIS configuration
type State int

const (
	Uninitialized State = iota
	ReflectionFitted
	TransmissionFitted
	Merged
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ReflectionFitted:
		return "reflection-fitted"
	case TransmissionFitted:
		return "transmission-fitted"
	case Merged:
		return "merged"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const betaTolerance = 1e-9

// STAR is a simultaneously transmitting and reflecting surface. The first
// Assignment.BS1 elements serve BS1 and the remaining ones serve BS2. Each
// element splits the impinging energy into a reflected share BetaR, aimed
// at the centre user of its base station, and a transmitted share BetaT,
// aimed at the far user.
type STAR struct {
	model.Node
	elements   int
	assignment model.Assignment
	betaR      []float64
	betaT      []float64
	// per element, per realization phase shifts
	thetaR [][]float64
	thetaT [][]float64
	state  State
	merged map[links.Key]bool
}

// NewSTAR creates a surface with the given energy split. Without an
// assignment the elements are split evenly, which needs an even count.
func NewSTAR(id string, position model.Position, elements int, betaR, betaT float64, assignment *model.Assignment) (*STAR, error) {
	if elements <= 0 {
		return nil, errors.NewInvalid("element count must be positive, got %d", elements)
	}
	split := model.Assignment{BS1: elements / 2, BS2: elements / 2}
	if assignment != nil {
		if assignment.BS1 <= 0 || assignment.BS2 <= 0 || assignment.BS1+assignment.BS2 != elements {
			return nil, errors.NewInvalid("assignment %d+%d does not split %d elements", assignment.BS1, assignment.BS2, elements)
		}
		split = *assignment
	} else if elements%2 != 0 {
		return nil, errors.NewInvalid("element count must be even without an explicit assignment, got %d", elements)
	}
	if betaR < 0 || betaT < 0 || math.Abs(betaR+betaT-1) > betaTolerance {
		return nil, errors.NewInvalid("energy split %v+%v must sum to 1", betaR, betaT)
	}

	node, err := model.NewNode(id, position, model.STARRIS)
	if err != nil {
		return nil, err
	}
	s := &STAR{
		Node:       node,
		elements:   elements,
		assignment: split,
		betaR:      make([]float64, elements),
		betaT:      make([]float64, elements),
		merged:     make(map[links.Key]bool),
	}
	for i := 0; i < elements; i++ {
		s.betaR[i] = betaR
		s.betaT[i] = betaT
	}
	return s, nil
}

func (s *STAR) Elements() int                { return s.elements }
func (s *STAR) Assignment() model.Assignment { return s.assignment }
func (s *STAR) State() State                 { return s.state }
func (s *STAR) BetaR() []float64             { return append([]float64(nil), s.betaR...) }
func (s *STAR) BetaT() []float64             { return append([]float64(nil), s.betaT...) }

// ThetaR returns the fitted reflection phases
func (s *STAR) ThetaR() ([][]float64, error) {
	if s.thetaR == nil {
		return nil, errors.NewConflict("reflection parameters of %s are not fitted", s.ID())
	}
	return s.thetaR, nil
}

// ThetaT returns the fitted transmission phases
func (s *STAR) ThetaT() ([][]float64, error) {
	if s.thetaT == nil {
		return nil, errors.NewConflict("transmission parameters of %s are not fitted", s.ID())
	}
	return s.thetaT, nil
}

// Reset drops the fitted phases so the surface can be fitted again
func (s *STAR) Reset() {
	s.thetaR, s.thetaT = nil, nil
	s.state = Uninitialized
	s.merged = make(map[links.Key]bool)
}

// span returns the element range [start, end) serving base station k
func (s *STAR) span(k int) (int, int) {
	if k == 0 {
		return 0, s.assignment.BS1
	}
	return s.assignment.BS1, s.elements
}

// leg fetches a surface leg and checks it has rows elements
func (s *STAR) leg(lc *links.Collection, tx, rx string, rows int) (channel.Coefficients, error) {
	h, err := lc.GetLink(tx, rx)
	if err != nil {
		return channel.Coefficients{}, err
	}
	if want := channel.Elements(rows, lc.Realizations()); !h.Shape.Equal(want) {
		return channel.Coefficients{}, errors.NewInvalid("link %s->%s has shape %s, expected %s", tx, rx, h.Shape, want)
	}
	return h, nil
}

// direct fetches a single-antenna link
func (s *STAR) direct(lc *links.Collection, tx, rx string) (channel.Coefficients, error) {
	h, err := lc.GetLink(tx, rx)
	if err != nil {
		return channel.Coefficients{}, err
	}
	if want := channel.SISO(lc.Realizations()); !h.Shape.Equal(want) {
		return channel.Coefficients{}, errors.NewInvalid("link %s->%s has shape %s, expected %s", tx, rx, h.Shape, want)
	}
	return h, nil
}

func (s *STAR) newPhases(realizations int) [][]float64 {
	theta := make([][]float64, s.elements)
	for i := range theta {
		theta[i] = make([]float64, realizations)
	}
	return theta
}

// alignedPhase returns the shift that aligns the cascaded path with the
// direct path
func alignedPhase(direct, incoming, outgoing complex128) float64 {
	return utils.WrapTo2Pi(utils.WrapTo2Pi(cmplx.Phase(direct)) -
		(utils.WrapTo2Pi(cmplx.Phase(incoming)) + utils.WrapTo2Pi(cmplx.Phase(outgoing))))
}

// SetReflectionParameters fits the reflection phases so that the cascaded
// path BSk->surface->rxk adds in phase with the direct link BSk->rxk
func (s *STAR) SetReflectionParameters(lc *links.Collection, bs []string, rx []string) error {
	if len(bs) != 2 || len(rx) != 2 {
		return errors.NewInvalid("reflection fitting needs 2 base stations and 2 receivers, got %d and %d", len(bs), len(rx))
	}
	if s.state == Merged {
		return errors.NewConflict("%s is already merged", s.ID())
	}

	theta := s.newPhases(lc.Realizations())
	for k := 0; k < 2; k++ {
		start, end := s.span(k)
		direct, err := s.direct(lc, bs[k], rx[k])
		if err != nil {
			return err
		}
		incoming, err := s.leg(lc, bs[k], s.ID(), end-start)
		if err != nil {
			return err
		}
		outgoing, err := s.leg(lc, s.ID(), rx[k], end-start)
		if err != nil {
			return err
		}
		for i := start; i < end; i++ {
			in, out := incoming.Row(i-start), outgoing.Row(i-start)
			for r := range theta[i] {
				theta[i][r] = alignedPhase(direct.Data[r], in[r], out[r])
			}
		}
	}

	s.thetaR = theta
	s.thetaT = nil
	s.state = ReflectionFitted
	log.Infof("Fitted reflection phases of %s for %v -> %v", s.ID(), bs, rx)
	return nil
}

// SetTransmissionParameters fits the transmission phases so that the
// cascaded paths BSk->surface->far add in phase with the direct links
// BSk->far. The surface-to-far leg spans all elements.
func (s *STAR) SetTransmissionParameters(lc *links.Collection, bs []string, far string) error {
	if len(bs) != 2 {
		return errors.NewInvalid("transmission fitting needs 2 base stations, got %d", len(bs))
	}
	switch s.state {
	case Uninitialized:
		return errors.NewConflict("reflection parameters of %s must be fitted first", s.ID())
	case Merged:
		return errors.NewConflict("%s is already merged", s.ID())
	}

	outgoing, err := s.leg(lc, s.ID(), far, s.elements)
	if err != nil {
		return err
	}
	theta := s.newPhases(lc.Realizations())
	for k := 0; k < 2; k++ {
		start, end := s.span(k)
		direct, err := s.direct(lc, bs[k], far)
		if err != nil {
			return err
		}
		incoming, err := s.leg(lc, bs[k], s.ID(), end-start)
		if err != nil {
			return err
		}
		for i := start; i < end; i++ {
			in, out := incoming.Row(i-start), outgoing.Row(i)
			for r := range theta[i] {
				theta[i][r] = alignedPhase(direct.Data[r], in[r], out[r])
			}
		}
	}

	s.thetaT = theta
	s.state = TransmissionFitted
	log.Infof("Fitted transmission phases of %s for %v -> %s", s.ID(), bs, far)
	return nil
}

// contribution sums, per realization, the magnitude of the cascaded path
// over the elements serving base station k. offset is the index of the
// first of those elements in the outgoing leg.
func (s *STAR) contribution(k int, incoming, outgoing channel.Coefficients, offset int,
	beta []float64, theta [][]float64) []float64 {
	start, end := s.span(k)
	mag := make([]float64, incoming.Shape.Realizations())
	for i := start; i < end; i++ {
		in, out := incoming.Row(i-start), outgoing.Row(i-start+offset)
		gain := complex(math.Sqrt(beta[i]), 0)
		for r := range mag {
			mag[r] += cmplx.Abs(cmplx.Conj(out[r]) * gain * cmplx.Rect(1, theta[i][r]) * in[r])
		}
	}
	return mag
}

// MergeLink folds the surface contribution into direct links. With a single
// transmitter the link tx->rx must be a centre link; its reflected
// contribution is added. With the two base stations the links to the far
// user must be edge links or disabled; each gets the transmitted
// contribution of its own elements.
func (s *STAR) MergeLink(lc *links.Collection, tx []string, rx string) error {
	if s.state < TransmissionFitted {
		return errors.NewConflict("%s must be fitted before merging, state is %s", s.ID(), s.state)
	}
	for _, t := range tx {
		if s.merged[links.Key{Tx: t, Rx: rx}] {
			return errors.NewConflict("link %s->%s is already merged", t, rx)
		}
	}

	var updates map[string][]float64
	var err error
	switch len(tx) {
	case 1:
		updates, err = s.reflectedContribution(lc, tx[0], rx)
	case 2:
		if tx[0] == tx[1] {
			return errors.NewInvalid("merge needs two distinct base stations, got %s twice", tx[0])
		}
		updates, err = s.transmittedContribution(lc, tx, rx)
	default:
		return errors.NewInvalid("merge needs 1 or 2 transmitters, got %d", len(tx))
	}
	if err != nil {
		return err
	}

	for _, t := range tx {
		mag, err := channel.NewMagnitude(channel.SISO(lc.Realizations()), updates[t])
		if err != nil {
			return err
		}
		if err := lc.UpdateLink(t, rx, mag); err != nil {
			return err
		}
		s.merged[links.Key{Tx: t, Rx: rx}] = true
		log.Infof("Merged %s contribution into %s->%s", s.ID(), t, rx)
	}
	s.state = Merged
	return nil
}

func (s *STAR) reflectedContribution(lc *links.Collection, tx, rx string) (map[string][]float64, error) {
	linkType, err := lc.GetLinkType(tx, rx)
	if err != nil {
		return nil, err
	}
	var k int
	switch linkType {
	case links.CenterUser1:
		k = 0
	case links.CenterUser2:
		k = 1
	default:
		return nil, errors.NewNotSupported("unsupported link type for merge: %s", linkType)
	}
	if _, err := s.direct(lc, tx, rx); err != nil {
		return nil, err
	}
	start, end := s.span(k)
	incoming, err := s.leg(lc, tx, s.ID(), end-start)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.leg(lc, s.ID(), rx, end-start)
	if err != nil {
		return nil, err
	}
	return map[string][]float64{tx: s.contribution(k, incoming, outgoing, 0, s.betaR, s.thetaR)}, nil
}

func (s *STAR) transmittedContribution(lc *links.Collection, tx []string, rx string) (map[string][]float64, error) {
	for _, t := range tx {
		linkType, err := lc.GetLinkType(t, rx)
		if err != nil {
			return nil, err
		}
		if linkType != links.Edge && linkType != links.Disabled {
			return nil, errors.NewNotSupported("unsupported link type for merge: %s", linkType)
		}
		if _, err := s.direct(lc, t, rx); err != nil {
			return nil, err
		}
	}
	outgoing, err := s.leg(lc, s.ID(), rx, s.elements)
	if err != nil {
		return nil, err
	}
	updates := make(map[string][]float64, 2)
	for k, t := range tx {
		start, end := s.span(k)
		incoming, err := s.leg(lc, t, s.ID(), end-start)
		if err != nil {
			return nil, err
		}
		updates[t] = s.contribution(k, incoming, outgoing, start, s.betaT, s.thetaT)
	}
	return updates, nil
}
