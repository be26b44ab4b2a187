package slaac

import (
	"bytes"
	"errors"
	"iter"
	"net/netip"
	"slices"
	"testing"

	"github.com/backkem/slaac/pkg/crypto"
	"github.com/backkem/slaac/pkg/storage"
	"github.com/pion/logging"
)

// testKey is the secret key handed out by testRandom.
var testKey = SecretKey{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
}

// testRandom returns a Source whose true random output starts with testKey.
func testRandom() *crypto.Source {
	return crypto.NewSourceWithReader(bytes.NewReader(bytes.Repeat(testKey[:], 8)))
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("no entropy")
}

// testPrefixes is a mutable PrefixProvider that counts enumerations.
type testPrefixes struct {
	list  []OnMeshPrefix
	calls int
}

func (p *testPrefixes) OnMeshPrefixes() iter.Seq[OnMeshPrefix] {
	p.calls++
	return slices.Values(slices.Clone(p.list))
}

func (p *testPrefixes) set(list ...OnMeshPrefix) {
	p.list = list
}

// testInterface records every add and remove.
type testInterface struct {
	addrs   []UnicastAddress
	adds    []UnicastAddress
	removes []UnicastAddress

	failAdd    error
	failRemove error
}

func (f *testInterface) UnicastAddresses() iter.Seq[UnicastAddress] {
	return slices.Values(slices.Clone(f.addrs))
}

func (f *testInterface) AddUnicastAddress(addr UnicastAddress) error {
	f.adds = append(f.adds, addr)
	if f.failAdd != nil {
		return f.failAdd
	}
	f.addrs = append(f.addrs, addr)
	return nil
}

func (f *testInterface) RemoveUnicastAddress(addr UnicastAddress) error {
	f.removes = append(f.removes, addr)
	f.addrs = slices.DeleteFunc(f.addrs, func(a UnicastAddress) bool {
		return a.Address == addr.Address
	})
	return f.failRemove
}

func (f *testInterface) has(addr UnicastAddress) bool {
	return slices.ContainsFunc(f.addrs, func(a UnicastAddress) bool {
		return a.Address == addr.Address
	})
}

func slaacPrefix(s string) OnMeshPrefix {
	return OnMeshPrefix{Prefix: netip.MustParsePrefix(s), SLAAC: true, Preferred: true}
}

func unicast(s string) UnicastAddress {
	p := netip.MustParsePrefix(s)
	return UnicastAddress{Address: p.Addr(), PrefixLength: uint8(p.Bits()), Preferred: true}
}

type testEnv struct {
	prefixes *testPrefixes
	iface    *testInterface
	settings *storage.MemoryStorage
	manager  *Manager
}

func newTestEnv(t *testing.T, configure ...func(*Config)) *testEnv {
	t.Helper()

	env := &testEnv{
		prefixes: &testPrefixes{},
		iface:    &testInterface{},
		settings: storage.NewMemoryStorage(),
	}
	config := Config{
		Prefixes:  env.prefixes,
		Interface: env.iface,
		Settings:  env.settings,
		Random:    testRandom(),
	}
	for _, fn := range configure {
		fn(&config)
	}

	m, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.manager = m
	return env
}

// expectedAddress derives the address the manager should create for prefix
// under testKey, independently of IIDGenerator.
func expectedAddress(t *testing.T, prefix netip.Prefix) netip.Addr {
	t.Helper()

	b := prefix.Masked().Addr().As16()
	for counter := uint16(0); counter < MaxIIDAttempts; counter++ {
		h := crypto.NewSHA256()
		h.Write(b[:prefixBytes(prefix.Bits())])
		h.Write([]byte(DefaultInterfaceTag))
		h.Write([]byte{byte(counter >> 8), byte(counter)})
		h.Write(testKey[:])
		sum := h.Sum(nil)

		var iid IID
		copy(iid[:], sum)
		if IsReservedIID(iid) {
			continue
		}
		out := b
		copy(out[8:], iid[:])
		return netip.AddrFrom16(out)
	}
	t.Fatalf("no usable IID for %s", prefix)
	return netip.Addr{}
}

// capturedLogs returns a logger factory writing info and above into a buffer.
func capturedLogs() (*logging.DefaultLoggerFactory, *bytes.Buffer) {
	var buf bytes.Buffer
	f := logging.NewDefaultLoggerFactory()
	f.Writer = &buf
	f.DefaultLogLevel = logging.LogLevelInfo
	f.ScopeLevels = map[string]logging.LogLevel{}
	return f, &buf
}
