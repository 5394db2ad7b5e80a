package model

import (
	"fmt"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Kind discriminates the endpoint variants
type Kind int

const (
	BaseStation Kind = iota
	UserEquipment
	RIS
	STARRIS
)

var kindNames = map[Kind]string{
	BaseStation:   "bs",
	UserEquipment: "ue",
	RIS:           "ris",
	STARRIS:       "star-ris",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses the configuration name of an endpoint kind
func ParseKind(name string) (Kind, error) {
	for k, v := range kindNames {
		if strings.EqualFold(v, name) {
			return k, nil
		}
	}
	return 0, errors.NewInvalid("unknown endpoint kind %q", name)
}

// Position is a 2-D or 3-D cartesian location in metres
type Position []float64

// Validate checks the dimensionality of the position
func (p Position) Validate() error {
	if len(p) != 2 && len(p) != 3 {
		return errors.NewInvalid("position must be 2-D or 3-D, got %d coordinates", len(p))
	}
	return nil
}

func (p Position) X() float64 { return p[0] }
func (p Position) Y() float64 { return p[1] }

// Z returns the height, zero for 2-D positions
func (p Position) Z() float64 {
	if len(p) < 3 {
		return 0
	}
	return p[2]
}

// Endpoint is anything a link can start or end at
type Endpoint interface {
	ID() string
	Position() Position
	Kind() Kind
}

// Node carries the identity and location shared by all endpoints
type Node struct {
	id       string
	position Position
	kind     Kind
}

// NewNode creates a node, copying the position
func NewNode(id string, position Position, kind Kind) (Node, error) {
	if id == "" {
		return Node{}, errors.NewInvalid("endpoint id must not be empty")
	}
	if err := position.Validate(); err != nil {
		return Node{}, err
	}
	return Node{id: id, position: append(Position(nil), position...), kind: kind}, nil
}

func (n *Node) ID() string         { return n.id }
func (n *Node) Position() Position { return n.position }
func (n *Node) Kind() Kind         { return n.kind }

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s @ %v)", n.kind, n.id, []float64(n.position))
}

// Transceiver is a base station or user equipment
type Transceiver struct {
	Node
	Antennas int
	// Allocations holds the NOMA power fraction per served user id
	Allocations map[string]float64
}

// NewBaseStation creates a base station endpoint
func NewBaseStation(id string, position Position, antennas int) (*Transceiver, error) {
	return newTransceiver(id, position, antennas, BaseStation)
}

// NewUserEquipment creates a user endpoint
func NewUserEquipment(id string, position Position, antennas int) (*Transceiver, error) {
	return newTransceiver(id, position, antennas, UserEquipment)
}

func newTransceiver(id string, position Position, antennas int, kind Kind) (*Transceiver, error) {
	if antennas <= 0 {
		antennas = 1
	}
	node, err := NewNode(id, position, kind)
	if err != nil {
		return nil, err
	}
	return &Transceiver{Node: node, Antennas: antennas, Allocations: map[string]float64{}}, nil
}

// Reposition moves the endpoint. Only scenario construction does this.
func (t *Transceiver) Reposition(position Position) error {
	if err := position.Validate(); err != nil {
		return err
	}
	t.position = append(Position(nil), position...)
	return nil
}

// Allocation returns the power fraction given to user, zero when unserved
func (t *Transceiver) Allocation(user string) float64 {
	return t.Allocations[user]
}
