package fading

import (
	"golang.org/x/exp/rand"
)

// Stream is an explicit random stream. Every call to Source hands out a
// fresh child source, so a run seeded with the same value and issuing the
// same sequence of draws is reproduced exactly. A Stream is not safe for
// concurrent use; parallel workers each own one.
type Stream struct {
	rnd *rand.Rand
}

// NewStream creates a stream from seed
func NewStream(seed uint64) *Stream {
	return &Stream{rnd: rand.New(rand.NewSource(seed))}
}

// Source returns the next child source
func (s *Stream) Source() rand.Source {
	return rand.NewSource(s.rnd.Uint64())
}
