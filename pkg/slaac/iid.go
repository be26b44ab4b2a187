package slaac

import (
	"encoding/binary"
	"hash"
	"net/netip"

	"github.com/backkem/slaac/pkg/crypto"
	"github.com/pion/logging"
)

// IID constants.
const (
	// IIDSize is the interface identifier size in bytes.
	IIDSize = 8

	// MaxIIDAttempts is the number of counter values tried before falling
	// back to a random identifier.
	MaxIIDAttempts = 3

	// DefaultInterfaceTag is the literal mixed into every IID hash.
	DefaultInterfaceTag = "wpan"
)

// IID is a 64-bit interface identifier, the low half of an address.
type IID [IIDSize]byte

// IsReservedIID reports whether iid falls in a reserved identifier range and
// must not be used for a unicast address:
//   - all zeros, the subnet-router anycast address (RFC 4291)
//   - fdff:ffff:ffff:ff80 to fdff:ffff:ffff:ffff, reserved subnet anycast (RFC 2526)
//   - 0200:5eff:fe00:0000 to 0200:5eff:fe00:ffff, reserved IIDs (RFC 5453)
//   - 0000:00ff:fe00:fc00 to 0000:00ff:fe00:fcff, Thread anycast locators
func IsReservedIID(iid IID) bool {
	switch {
	case iid == IID{}:
		return true
	case iid[0] == 0xfd && iid[1] == 0xff && iid[2] == 0xff && iid[3] == 0xff &&
		iid[4] == 0xff && iid[5] == 0xff && iid[6] == 0xff && iid[7] >= 0x80:
		return true
	case iid[0] == 0x02 && iid[1] == 0x00 && iid[2] == 0x5e && iid[3] == 0xff &&
		iid[4] == 0xfe && iid[5] == 0x00:
		return true
	case iid[0] == 0x00 && iid[1] == 0x00 && iid[2] == 0x00 && iid[3] == 0xff &&
		iid[4] == 0xfe && iid[5] == 0x00 && iid[6] == 0xfc:
		return true
	}
	return false
}

// IIDGeneratorConfig configures an IIDGenerator.
type IIDGeneratorConfig struct {
	// Keys supplies the secret key. Required.
	Keys *SecretKeyStore

	// Hash returns a fresh streaming hash.
	// If nil, crypto.NewSHA256 is used.
	Hash func() hash.Hash

	// InterfaceTag is mixed into every hash.
	// If empty, DefaultInterfaceTag is used.
	InterfaceTag string

	// Random is used for the fallback identifier.
	// If nil, crypto.NewSource() is used.
	Random *crypto.Source

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// IIDGenerator derives stable, opaque interface identifiers.
type IIDGenerator struct {
	keys   *SecretKeyStore
	hash   func() hash.Hash
	tag    []byte
	random *crypto.Source
	log    logging.LeveledLogger
}

// NewIIDGenerator creates a generator.
func NewIIDGenerator(config IIDGeneratorConfig) (*IIDGenerator, error) {
	if config.Keys == nil {
		return nil, ErrKeyStoreRequired
	}
	if config.Hash == nil {
		config.Hash = crypto.NewSHA256
	}
	if config.InterfaceTag == "" {
		config.InterfaceTag = DefaultInterfaceTag
	}
	if config.Random == nil {
		config.Random = crypto.NewSource()
	}

	g := &IIDGenerator{
		keys:   config.Keys,
		hash:   config.Hash,
		tag:    []byte(config.InterfaceTag),
		random: config.Random,
	}
	if config.LoggerFactory != nil {
		g.log = config.LoggerFactory.NewLogger("slaac")
	}
	return g, nil
}

// Candidate computes the identifier for one counter value:
//
//	H(prefix[:ceil(len/8)] || tag || uint16be(counter) || key)[:8]
//
// It is a pure function of its inputs. The result may be reserved.
func (g *IIDGenerator) Candidate(prefix netip.Prefix, counter uint16, key SecretKey) IID {
	h := g.hash()

	addr := prefix.Masked().Addr().As16()
	h.Write(addr[:prefixBytes(prefix.Bits())])
	h.Write(g.tag)

	var c [2]byte
	// Network byte order, so the IID does not depend on the host.
	binary.BigEndian.PutUint16(c[:], counter)
	h.Write(c[:])
	h.Write(key[:])

	var iid IID
	copy(iid[:], h.Sum(nil))
	return iid
}

// Generate fills the low 64 bits of addr with an identifier for its prefix.
// It returns true when every counter value produced a reserved identifier
// and a random one was used instead; such an address is not stable across
// restarts.
func (g *IIDGenerator) Generate(addr *UnicastAddress) (fallback bool) {
	prefix := addr.Prefix()
	key := g.keys.GetOrCreate()

	for counter := uint16(0); counter < MaxIIDAttempts; counter++ {
		iid := g.Candidate(prefix, counter, key)
		if !IsReservedIID(iid) {
			setIID(addr, iid)
			return false
		}
		if g.log != nil {
			g.log.Debugf("reserved IID %x for %s with counter %d", iid[:], prefix, counter)
		}
	}

	iid := g.randomIID()
	setIID(addr, iid)
	if g.log != nil {
		g.log.Warnf("no usable IID for %s after %d attempts; using random IID, address will not be stable", prefix, MaxIIDAttempts)
	}
	return true
}

// randomIID draws a random identifier, redrawing a bounded number of times
// if it happens to be reserved.
func (g *IIDGenerator) randomIID() IID {
	var iid IID
	for i := 0; i < MaxIIDAttempts; i++ {
		g.random.Fill(iid[:])
		if !IsReservedIID(iid) {
			break
		}
	}
	return iid
}

// setIID overwrites the low 64 bits of addr.
func setIID(addr *UnicastAddress, iid IID) {
	b := addr.Address.As16()
	copy(b[16-IIDSize:], iid[:])
	addr.Address = netip.AddrFrom16(b)
}

// prefixBytes returns the number of bytes needed to hold bits.
func prefixBytes(bits int) int {
	if bits <= 0 {
		return 0
	}
	return (bits + 7) / 8
}
