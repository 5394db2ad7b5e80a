package links

import (
	"fmt"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// LinkType tags the role of a link in the two-cell STAR-RIS downlink
type LinkType int

const (
	// CenterUser1 BS1 to its centre user
	CenterUser1 LinkType = iota
	// CenterUser2 BS2 to its centre user
	CenterUser2
	// Edge a base station to the far user
	Edge
	// RISEdge surface to the far user, all elements
	RISEdge
	// RISBS1 surface leg on the elements assigned to BS1
	RISBS1
	// RISBS2 surface leg on the elements assigned to BS2
	RISBS2
	// Interference a base station to the other cell's centre user
	Interference
	// Disabled link that does not exist; its coefficients are zero
	Disabled
)

var linkTypeNames = map[LinkType]string{
	CenterUser1:  "1,c",
	CenterUser2:  "2,c",
	Edge:         "f",
	RISEdge:      "ris,f",
	RISBS1:       "ris,b1",
	RISBS2:       "ris,b2",
	Interference: "i,c",
	Disabled:     "dne",
}

func (t LinkType) String() string {
	if name, ok := linkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("LinkType(%d)", int(t))
}

// IsRISLeg reports whether the link has a per-element axis
func (t LinkType) IsRISLeg() bool {
	return t == RISEdge || t == RISBS1 || t == RISBS2
}

// ParseLinkType parses the tag used in scenario files
func ParseLinkType(tag string) (LinkType, error) {
	tag = strings.ReplaceAll(strings.ToLower(tag), " ", "")
	for t, name := range linkTypeNames {
		if name == tag {
			return t, nil
		}
	}
	return 0, errors.NewNotSupported("unknown link type %q", tag)
}

// Key identifies a directed link by its endpoint ids
type Key struct {
	Tx string
	Rx string
}

func (k Key) String() string {
	return k.Tx + "->" + k.Rx
}
