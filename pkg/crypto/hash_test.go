package crypto

import (
	"encoding/hex"
	"testing"
)

func TestNewSHA256_Streaming(t *testing.T) {
	// FIPS 180-4 B.2, fed in uneven chunks.
	message := []byte("abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq")
	want := "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"

	h := NewSHA256()
	h.Write(message[:10])
	h.Write(message[10:30])
	h.Write(message[30:])

	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		t.Errorf("Sum() = %s, want %s", got, want)
	}

	h.Reset()
	h.Write([]byte("abc"))
	want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		t.Errorf("Sum() after Reset = %s, want %s", got, want)
	}
}
