// Package crypto provides the cryptographic primitives consumed by the SLAAC
// core: the SHA-256 hash used for interface identifier derivation, HKDF, and
// the random sources used for secret key material.
package crypto

import (
	"hash"

	sha256 "github.com/minio/sha256-simd"
)

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests incrementally.
// This is the streaming primitive the IID generator feeds chunk by chunk.
//
// Usage:
//
//	h := crypto.NewSHA256()
//	h.Write(prefix)
//	h.Write(tag)
//	digest := h.Sum(nil)
func NewSHA256() hash.Hash {
	return sha256.New()
}
