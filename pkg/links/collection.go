package links

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/nfvri/ris-simulator/pkg/channel"
	"github.com/nfvri/ris-simulator/pkg/fading"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Surface is an endpoint carrying reflecting elements split between the
// two base stations
type Surface interface {
	model.Endpoint
	Elements() int
	Assignment() model.Assignment
}

type entry struct {
	link     *channel.Link
	linkType LinkType
}

// Collection registers the links of a scenario. All links share the
// realization count, the carrier frequency and the random stream. It is
// not safe for concurrent use.
type Collection struct {
	realizations int
	frequency    float64
	stream       *fading.Stream
	entries      map[Key]*entry
	order        []Key
}

// NewCollection creates an empty collection
func NewCollection(realizations int, frequency float64, stream *fading.Stream) (*Collection, error) {
	if realizations <= 0 {
		return nil, errors.NewInvalid("realizations must be positive, got %d", realizations)
	}
	return &Collection{
		realizations: realizations,
		frequency:    frequency,
		stream:       stream,
		entries:      make(map[Key]*entry),
	}, nil
}

type addOptions struct {
	elements int
}

// AddOption configures AddLink
type AddOption func(*addOptions)

// WithElements overrides the element count of a surface leg
func WithElements(n int) AddOption {
	return func(o *addOptions) {
		o.elements = n
	}
}

// AddLink registers the link tx->rx
func (c *Collection) AddLink(tx, rx model.Endpoint, fadingSpec model.FadingSpec, pathlossSpec model.PathlossSpec,
	linkType LinkType, opts ...AddOption) error {
	key := Key{Tx: tx.ID(), Rx: rx.ID()}
	if _, ok := c.entries[key]; ok {
		return errors.NewAlreadyExists("link %s already registered", key)
	}
	options := &addOptions{}
	for _, opt := range opts {
		opt(options)
	}

	shape, err := c.shapeFor(tx, rx, linkType, options.elements)
	if err != nil {
		return err
	}

	linkOpts := []channel.Option{channel.WithStream(c.stream)}
	var link *channel.Link
	switch {
	case linkType == Disabled:
		link, err = channel.NewLink(tx, rx, c.frequency, fadingSpec, pathlossSpec, shape, append(linkOpts, channel.WithNoLink())...)
	case linkType.IsRISLeg() && fadingSpec.Geometric && strings.EqualFold(fadingSpec.Type, fading.RicianType):
		los := func() (channel.Coefficients, error) {
			return channel.RicianLOS(tx, rx, shape, fadingSpec, c.stream)
		}
		link, err = channel.NewLink(tx, rx, c.frequency, fadingSpec, pathlossSpec, shape, append(linkOpts, channel.WithGenerator(los))...)
	default:
		link, err = channel.NewLink(tx, rx, c.frequency, fadingSpec, pathlossSpec, shape, linkOpts...)
	}
	if err != nil {
		return err
	}

	c.entries[key] = &entry{link: link, linkType: linkType}
	c.order = append(c.order, key)
	log.Debugf("Registered %s link %s %s", linkType, key, shape)
	return nil
}

func (c *Collection) shapeFor(tx, rx model.Endpoint, linkType LinkType, elements int) (channel.Shape, error) {
	if !linkType.IsRISLeg() {
		return channel.SISO(c.realizations), nil
	}
	if elements > 0 {
		return channel.Elements(elements, c.realizations), nil
	}
	surface, ok := tx.(Surface)
	if !ok {
		surface, ok = rx.(Surface)
	}
	if !ok {
		return nil, errors.NewInvalid("%s link %s->%s has no surface endpoint", linkType, tx.ID(), rx.ID())
	}
	switch linkType {
	case RISBS1:
		elements = surface.Assignment().BS1
	case RISBS2:
		elements = surface.Assignment().BS2
	default:
		elements = surface.Elements()
	}
	return channel.Elements(elements, c.realizations), nil
}

func (c *Collection) lookup(tx, rx string) (*entry, error) {
	e, ok := c.entries[Key{Tx: tx, Rx: rx}]
	if !ok {
		return nil, errors.NewNotFound("link %s->%s not registered", tx, rx)
	}
	return e, nil
}

// GetLink returns a copy of the coefficients of tx->rx
func (c *Collection) GetLink(tx, rx string) (channel.Coefficients, error) {
	e, err := c.lookup(tx, rx)
	if err != nil {
		return channel.Coefficients{}, err
	}
	return e.link.Coefficients(), nil
}

// Link returns the registered link tx->rx
func (c *Collection) Link(tx, rx string) (*channel.Link, error) {
	e, err := c.lookup(tx, rx)
	if err != nil {
		return nil, err
	}
	return e.link, nil
}

// GetGain returns |h|² of tx->rx
func (c *Collection) GetGain(tx, rx string) ([]float64, error) {
	e, err := c.lookup(tx, rx)
	if err != nil {
		return nil, err
	}
	return e.link.Gain(), nil
}

// GetLinkType returns the tag of tx->rx
func (c *Collection) GetLinkType(tx, rx string) (LinkType, error) {
	e, err := c.lookup(tx, rx)
	if err != nil {
		return 0, err
	}
	return e.linkType, nil
}

// UpdateLink adds magnitude·exp(j·φ) to tx->rx, φ being the current phase
// of each coefficient wrapped to [0, 2π)
func (c *Collection) UpdateLink(tx, rx string, magnitude channel.Magnitude) error {
	e, err := c.lookup(tx, rx)
	if err != nil {
		return err
	}
	if !e.link.Shape().Equal(magnitude.Shape) {
		return errors.NewInvalid("magnitude of shape %s does not match link %s->%s of shape %s",
			magnitude.Shape, tx, rx, e.link.Shape())
	}

	current := e.link.Coefficients()
	update := channel.Zeros(magnitude.Shape)
	for i, h := range current.Data {
		phi := utils.WrapTo2Pi(cmplx.Phase(h))
		update.Data[i] = complex(magnitude.Data[i]*math.Cos(phi), magnitude.Data[i]*math.Sin(phi))
	}
	return e.link.UpdateChannel(update)
}

// Regenerate draws fresh fading for every link, keeping the path losses
func (c *Collection) Regenerate() error {
	for _, key := range c.order {
		if err := c.entries[key].link.Generate(); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the registered keys in insertion order
func (c *Collection) Keys() []Key {
	return append([]Key(nil), c.order...)
}

func (c *Collection) Len() int           { return len(c.order) }
func (c *Collection) Realizations() int  { return c.realizations }
func (c *Collection) Frequency() float64 { return c.frequency }

func (c *Collection) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "LinkCollection(%d links, %d realizations, %.3g Hz)", len(c.order), c.realizations, c.frequency)
	for _, key := range c.order {
		e := c.entries[key]
		fmt.Fprintf(&sb, "\n  %-12s %-8s %s", key, e.linkType, e.link.Shape())
	}
	return sb.String()
}
