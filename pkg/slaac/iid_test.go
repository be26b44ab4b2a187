package slaac

import (
	"bytes"
	"hash"
	"net/netip"
	"testing"

	"github.com/backkem/slaac/pkg/crypto"
	"github.com/backkem/slaac/pkg/storage"
	sha256 "github.com/minio/sha256-simd"
)

func TestIsReservedIID(t *testing.T) {
	tests := []struct {
		name string
		iid  IID
		want bool
	}{
		{"all zero", IID{}, true},
		{"subnet anycast low", IID{0xfd, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x80}, true},
		{"subnet anycast high", IID{0xfd, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, true},
		{"below subnet anycast", IID{0xfd, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, false},
		{"rfc5453 low", IID{0x02, 0x00, 0x5e, 0xff, 0xfe, 0x00, 0x00, 0x00}, true},
		{"rfc5453 proxy mobile", IID{0x02, 0x00, 0x5e, 0xff, 0xfe, 0x00, 0x52, 0x13}, true},
		{"rfc5453 high", IID{0x02, 0x00, 0x5e, 0xff, 0xfe, 0x00, 0xff, 0xff}, true},
		{"near rfc5453", IID{0x02, 0x00, 0x5e, 0xff, 0xfe, 0x01, 0x00, 0x00}, false},
		{"anycast locator", IID{0x00, 0x00, 0x00, 0xff, 0xfe, 0x00, 0xfc, 0x01}, true},
		{"routing locator", IID{0x00, 0x00, 0x00, 0xff, 0xfe, 0x00, 0x04, 0x00}, false},
		{"ordinary", IID{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}, false},
		{"one", IID{7: 0x01}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsReservedIID(tc.iid); got != tc.want {
				t.Errorf("IsReservedIID(%x) = %v, want %v", tc.iid[:], got, tc.want)
			}
		})
	}
}

func newTestGenerator(t *testing.T, config IIDGeneratorConfig) *IIDGenerator {
	t.Helper()
	if config.Keys == nil {
		config.Keys = NewSecretKeyStore(storage.NewMemoryStorage(), testRandom(), nil)
	}
	g, err := NewIIDGenerator(config)
	if err != nil {
		t.Fatalf("NewIIDGenerator() error = %v", err)
	}
	return g
}

func TestNewIIDGenerator(t *testing.T) {
	if _, err := NewIIDGenerator(IIDGeneratorConfig{}); err != ErrKeyStoreRequired {
		t.Errorf("NewIIDGenerator() error = %v, want ErrKeyStoreRequired", err)
	}

	g := newTestGenerator(t, IIDGeneratorConfig{})
	if string(g.tag) != DefaultInterfaceTag {
		t.Errorf("tag = %q, want %q", g.tag, DefaultInterfaceTag)
	}
}

func TestIIDGenerator_Candidate(t *testing.T) {
	g := newTestGenerator(t, IIDGeneratorConfig{})
	prefix := netip.MustParsePrefix("2001:db8::/64")

	t.Run("matches hash layout", func(t *testing.T) {
		h := crypto.NewSHA256()
		h.Write([]byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0})
		h.Write([]byte("wpan"))
		h.Write([]byte{0x00, 0x01})
		h.Write(testKey[:])
		want := h.Sum(nil)[:IIDSize]

		got := g.Candidate(prefix, 1, testKey)
		if !bytes.Equal(got[:], want) {
			t.Errorf("Candidate() = %x, want %x", got[:], want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		other := newTestGenerator(t, IIDGeneratorConfig{})
		for counter := uint16(0); counter < MaxIIDAttempts; counter++ {
			if g.Candidate(prefix, counter, testKey) != other.Candidate(prefix, counter, testKey) {
				t.Errorf("counter %d: candidates differ between generators", counter)
			}
		}
	})

	t.Run("counter changes result", func(t *testing.T) {
		if g.Candidate(prefix, 0, testKey) == g.Candidate(prefix, 1, testKey) {
			t.Error("counters 0 and 1 produced the same IID")
		}
	})

	t.Run("key changes result", func(t *testing.T) {
		other := testKey
		other[0] ^= 0xff
		if g.Candidate(prefix, 0, testKey) == g.Candidate(prefix, 0, other) {
			t.Error("different keys produced the same IID")
		}
	})

	t.Run("tag changes result", func(t *testing.T) {
		tagged := newTestGenerator(t, IIDGeneratorConfig{InterfaceTag: "eth0"})
		if g.Candidate(prefix, 0, testKey) == tagged.Candidate(prefix, 0, testKey) {
			t.Error("different tags produced the same IID")
		}
	})

	t.Run("host bits ignored", func(t *testing.T) {
		unmasked := netip.MustParsePrefix("2001:db8::1234/64")
		if g.Candidate(prefix, 0, testKey) != g.Candidate(unmasked, 0, testKey) {
			t.Error("host bits of the prefix leaked into the hash")
		}
	})

	t.Run("only prefix bytes hashed", func(t *testing.T) {
		short := netip.MustParsePrefix("2001:db8:1::/48")

		h := crypto.NewSHA256()
		h.Write([]byte{0x20, 0x01, 0x0d, 0xb8, 0x00, 0x01})
		h.Write([]byte("wpan"))
		h.Write([]byte{0x00, 0x00})
		h.Write(testKey[:])
		want := h.Sum(nil)[:IIDSize]

		got := g.Candidate(short, 0, testKey)
		if !bytes.Equal(got[:], want) {
			t.Errorf("Candidate(/48) = %x, want %x", got[:], want)
		}
	})
}

// scriptedHash returns queued digests from Sum, in order, then the last one
// forever.
type scriptedHash struct {
	digests *[][]byte
}

func (h scriptedHash) Write(p []byte) (int, error) { return len(p), nil }
func (h scriptedHash) Reset()                      {}
func (h scriptedHash) Size() int                   { return sha256.Size }
func (h scriptedHash) BlockSize() int              { return 64 }
func (h scriptedHash) Sum(b []byte) []byte {
	d := (*h.digests)[0]
	if len(*h.digests) > 1 {
		*h.digests = (*h.digests)[1:]
	}
	return append(b, d...)
}

func scripted(digests ...[]byte) func() hash.Hash {
	queue := digests
	return func() hash.Hash { return scriptedHash{digests: &queue} }
}

func digest(iid IID) []byte {
	d := make([]byte, sha256.Size)
	copy(d, iid[:])
	return d
}

func TestIIDGenerator_Generate(t *testing.T) {
	t.Run("keeps prefix bits", func(t *testing.T) {
		g := newTestGenerator(t, IIDGeneratorConfig{})
		addr := UnicastAddress{Address: netip.MustParseAddr("2001:db8:aa:bb::"), PrefixLength: 64}

		if g.Generate(&addr) {
			t.Fatal("Generate() used the random fallback")
		}
		want := expectedAddress(t, netip.MustParsePrefix("2001:db8:aa:bb::/64"))
		if addr.Address != want {
			t.Errorf("Generate() = %s, want %s", addr.Address, want)
		}
	})

	t.Run("skips reserved candidate", func(t *testing.T) {
		good := IID{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
		g := newTestGenerator(t, IIDGeneratorConfig{
			Hash: scripted(digest(IID{}), digest(good)),
		})
		addr := UnicastAddress{Address: netip.MustParseAddr("2001:db8::"), PrefixLength: 64}

		if g.Generate(&addr) {
			t.Fatal("Generate() used the random fallback")
		}
		if want := netip.MustParseAddr("2001:db8::1234:5678:9abc:def0"); addr.Address != want {
			t.Errorf("Generate() = %s, want %s", addr.Address, want)
		}
	})

	t.Run("falls back after max attempts", func(t *testing.T) {
		anycast := IID{0xfd, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
		random := bytes.Repeat([]byte{0x5a}, SecretKeySize+IIDSize)
		g := newTestGenerator(t, IIDGeneratorConfig{
			Hash:   scripted(digest(anycast)),
			Random: crypto.NewSourceWithReader(bytes.NewReader(random)),
		})
		addr := UnicastAddress{Address: netip.MustParseAddr("2001:db8::"), PrefixLength: 64}

		if !g.Generate(&addr) {
			t.Fatal("Generate() did not report the random fallback")
		}
		if want := netip.MustParseAddr("2001:db8::5a5a:5a5a:5a5a:5a5a"); addr.Address != want {
			t.Errorf("Generate() = %s, want %s", addr.Address, want)
		}
	})

	t.Run("fallback survives failing true random", func(t *testing.T) {
		g := newTestGenerator(t, IIDGeneratorConfig{
			Hash:   scripted(digest(IID{})),
			Random: crypto.NewSourceWithReader(failingReader{}),
		})
		addr := UnicastAddress{Address: netip.MustParseAddr("2001:db8::"), PrefixLength: 64}

		if !g.Generate(&addr) {
			t.Fatal("Generate() did not report the random fallback")
		}
		var iid IID
		b := addr.Address.As16()
		copy(iid[:], b[8:])
		if IsReservedIID(iid) {
			t.Errorf("fallback produced reserved IID %x", iid[:])
		}
	})

	t.Run("never emits reserved", func(t *testing.T) {
		g := newTestGenerator(t, IIDGeneratorConfig{})
		for i := 0; i < 512; i++ {
			addr := UnicastAddress{
				Address:      netip.AddrFrom16([16]byte{0x20, 0x01, 0x0d, 0xb8, byte(i >> 8), byte(i)}),
				PrefixLength: 64,
			}
			if g.Generate(&addr) {
				continue
			}
			var iid IID
			b := addr.Address.As16()
			copy(iid[:], b[8:])
			if IsReservedIID(iid) {
				t.Fatalf("Generate() emitted reserved IID %x for %s", iid[:], addr.Prefix())
			}
		}
	})
}
