package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/pion/randutil"
)

// Source bundles the two random sources the SLAAC core consumes: a true
// random generator that may fail, and a pseudo-random fallback that cannot.
//
// A Source is not safe for concurrent use.
type Source struct {
	reader io.Reader
	prng   randutil.MathRandomGenerator
}

// NewSource returns a Source backed by crypto/rand.
func NewSource() *Source {
	return NewSourceWithReader(rand.Reader)
}

// NewSourceWithReader returns a Source that draws true randomness from r.
// Used for testing or for platforms with a hardware entropy device.
func NewSourceWithReader(r io.Reader) *Source {
	return &Source{
		reader: r,
		prng:   randutil.NewMathRandomGenerator(),
	}
}

// FillTrueRandom fills buf from the true random source.
// buf is left in an unspecified state on error.
func (s *Source) FillTrueRandom(buf []byte) error {
	_, err := io.ReadFull(s.reader, buf)
	return err
}

// FillPseudoRandom fills buf from the pseudo-random generator. It never fails.
func (s *Source) FillPseudoRandom(buf []byte) {
	var word [8]byte
	for len(buf) > 0 {
		binary.BigEndian.PutUint64(word[:], s.prng.Uint64())
		n := copy(buf, word[:])
		buf = buf[n:]
	}
}

// Fill fills buf from the true random source, falling back to the
// pseudo-random generator. It reports whether the fallback was used.
func (s *Source) Fill(buf []byte) (fallback bool) {
	if err := s.FillTrueRandom(buf); err != nil {
		s.FillPseudoRandom(buf)
		return true
	}
	return false
}
