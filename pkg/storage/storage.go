// Package storage provides persistent settings for the SLAAC core.
//
// The core only needs a single value to survive restarts: the secret key
// that makes interface identifiers stable. Implementations can use files,
// databases, or in-memory storage.
package storage

// Settings abstracts the persistent settings store.
//
// All methods must be safe for concurrent use.
type Settings interface {
	// LoadSLAACSecretKey returns the persisted secret key.
	// Returns ErrNotFound if no key has been saved.
	LoadSLAACSecretKey() ([]byte, error)

	// SaveSLAACSecretKey persists the secret key, replacing any previous value.
	SaveSLAACSecretKey(key []byte) error
}
