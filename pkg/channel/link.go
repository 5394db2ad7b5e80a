package channel

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/nfvri/ris-simulator/pkg/fading"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/signal"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

// Link is the channel between a transmitter and a receiver over a fixed
// number of realizations. The path loss is computed once; the fading is
// drawn again on every Generate.
type Link struct {
	tx, rx       model.Endpoint
	frequency    float64
	fadingSpec   model.FadingSpec
	pathlossSpec model.PathlossSpec
	shape        Shape
	distance     float64
	pathLoss     float64
	noLink       bool
	stream       *fading.Stream
	generator    Generator
	coefficients Coefficients
}

// Generator draws unscaled fading coefficients for a link
type Generator func() (Coefficients, error)

// Option configures a Link
type Option func(*Link)

// WithNoLink makes the link carry all-zero coefficients
func WithNoLink() Option {
	return func(l *Link) {
		l.noLink = true
	}
}

// WithStream draws fading and shadowing from stream
func WithStream(stream *fading.Stream) Option {
	return func(l *Link) {
		l.stream = stream
	}
}

// WithGenerator replaces the i.i.d. draw from the fading spec on every
// Generate, e.g. with RicianLOS for geometric surface legs
func WithGenerator(generator Generator) Option {
	return func(l *Link) {
		l.generator = generator
	}
}

// WithDistance overrides the distance derived from the endpoint positions
func WithDistance(distance float64) Option {
	return func(l *Link) {
		l.distance = distance
	}
}

// NewLink creates the link and generates its first realization
func NewLink(tx, rx model.Endpoint, frequency float64, fadingSpec model.FadingSpec,
	pathlossSpec model.PathlossSpec, shape Shape, opts ...Option) (*Link, error) {
	l, err := newLink(tx, rx, frequency, fadingSpec, pathlossSpec, shape, opts...)
	if err != nil {
		return nil, err
	}
	if err := l.Generate(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewLinkWithCoefficients creates the link using externally drawn fading
// coefficients in place of a fresh draw
func NewLinkWithCoefficients(tx, rx model.Endpoint, frequency float64, fadingSpec model.FadingSpec,
	pathlossSpec model.PathlossSpec, ext Coefficients, opts ...Option) (*Link, error) {
	l, err := newLink(tx, rx, frequency, fadingSpec, pathlossSpec, ext.Shape, opts...)
	if err != nil {
		return nil, err
	}
	if err := l.GenerateWith(ext); err != nil {
		return nil, err
	}
	return l, nil
}

func newLink(tx, rx model.Endpoint, frequency float64, fadingSpec model.FadingSpec,
	pathlossSpec model.PathlossSpec, shape Shape, opts ...Option) (*Link, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	l := &Link{
		tx:           tx,
		rx:           rx,
		frequency:    frequency,
		fadingSpec:   fadingSpec,
		pathlossSpec: pathlossSpec,
		shape:        append(Shape(nil), shape...),
		distance:     -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.noLink {
		l.distance = math.Max(l.distance, 0)
		return l, nil
	}

	if l.distance < 0 {
		d, err := utils.Distance(tx.Position(), rx.Position())
		if err != nil {
			return nil, err
		}
		l.distance = d
	}
	pl, err := signal.GetPathLoss(l.distance, pathlossSpec, frequency, l.source())
	if err != nil {
		return nil, err
	}
	l.pathLoss = pl
	return l, nil
}

func (l *Link) source() rand.Source {
	if l.stream == nil {
		return nil
	}
	return l.stream.Source()
}

// Generate draws fresh coefficients sqrt(10^(-PL/10))·h
func (l *Link) Generate() error {
	if l.noLink {
		l.coefficients = Zeros(l.shape)
		return nil
	}
	if l.generator != nil {
		ext, err := l.generator()
		if err != nil {
			return err
		}
		return l.GenerateWith(ext)
	}
	rvs, err := fading.RVs(l.shape.Len(), l.fadingSpec, l.source(), l.source())
	if err != nil {
		return err
	}
	ext, err := NewCoefficients(l.shape, rvs)
	if err != nil {
		return err
	}
	return l.GenerateWith(ext)
}

// GenerateWith scales externally drawn fading coefficients by the path loss
func (l *Link) GenerateWith(ext Coefficients) error {
	if !l.shape.Equal(ext.Shape) {
		return errors.NewInvalid("coefficients of shape %s do not match link shape %s", ext.Shape, l.shape)
	}
	if l.noLink {
		l.coefficients = Zeros(l.shape)
		return nil
	}
	scale := complex(math.Sqrt(utils.DbToPow(-l.pathLoss)), 0)
	coefficients := Zeros(l.shape)
	for i, h := range ext.Data {
		coefficients.Data[i] = scale * h
	}
	l.coefficients = coefficients
	log.Debugf("generated %s with %.2f dB pathloss", l, l.pathLoss)
	return nil
}

// UpdateChannel adds value to the coefficients in place
func (l *Link) UpdateChannel(value Coefficients) error {
	return l.coefficients.Add(value)
}

func (l *Link) Tx() model.Endpoint { return l.tx }
func (l *Link) Rx() model.Endpoint { return l.rx }
func (l *Link) Shape() Shape       { return l.shape }
func (l *Link) Distance() float64  { return l.distance }
func (l *Link) PathLoss() float64  { return l.pathLoss }
func (l *Link) NoLink() bool       { return l.noLink }

// Coefficients returns a copy of the current coefficients
func (l *Link) Coefficients() Coefficients {
	return l.coefficients.Clone()
}

// Gain returns |h|² of every entry
func (l *Link) Gain() []float64 {
	return l.coefficients.Gain()
}

func (l *Link) String() string {
	return fmt.Sprintf("link %s->%s %s", l.tx.ID(), l.rx.ID(), l.shape)
}

// losEpsilon keeps the steering angle finite for co-located endpoints
const losEpsilon = 1e-9

// RicianLOS draws Rician fading for a surface leg whose line-of-sight part
// is the steering vector exp(j·m·π·sinθ) of element m, θ being the angle
// between the endpoints in the horizontal plane
func RicianLOS(tx, rx model.Endpoint, shape Shape, spec model.FadingSpec, stream *fading.Stream) (Coefficients, error) {
	if err := shape.Validate(); err != nil {
		return Coefficients{}, err
	}
	k := utils.DbToPow(spec.K)
	sigma := spec.Sigma
	if sigma == 0 {
		sigma = 1 / math.Sqrt2
	}
	var magnitude, phase rand.Source
	if stream != nil {
		magnitude, phase = stream.Source(), stream.Source()
	}
	nlos, err := fading.RVs(shape.Len(), model.FadingSpec{Type: fading.RayleighType, Sigma: sigma}, magnitude, phase)
	if err != nil {
		return Coefficients{}, err
	}
	coefficients, err := NewCoefficients(shape, nlos)
	if err != nil {
		return Coefficients{}, err
	}

	dx := rx.Position().X() - tx.Position().X()
	dy := rx.Position().Y() - tx.Position().Y()
	sinTheta := dy / math.Sqrt(dx*dx+dy*dy+losEpsilon)

	wLOS := complex(math.Sqrt(k/(k+1)), 0)
	wNLOS := complex(math.Sqrt(1/(k+1)), 0)
	elements := 1
	if len(shape) == 3 {
		elements = shape.Rows()
	}
	for m := 0; m < elements; m++ {
		los := cmplx.Exp(complex(0, float64(m)*math.Pi*sinTheta))
		row := coefficients.Data
		if len(shape) == 3 {
			row = coefficients.Row(m)
		}
		for i := range row {
			row[i] = wLOS*los + wNLOS*row[i]
		}
	}
	return coefficients, nil
}
