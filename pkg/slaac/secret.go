package slaac

import (
	"errors"

	"github.com/backkem/slaac/pkg/crypto"
	"github.com/backkem/slaac/pkg/storage"
	"github.com/pion/logging"
)

// SecretKeySize is the size of the IID secret key in bytes.
const SecretKeySize = 16

// secretKeyInfo is the HKDF info string used when whitening fallback key
// material.
const secretKeyInfo = "SLAAC IID secret key"

// SecretKey is the secret mixed into every interface identifier. It keeps
// identifiers stable across restarts yet unguessable from outside.
type SecretKey [SecretKeySize]byte

// SecretKeyStore obtains and persists the secret key.
//
// The key is loaded or created on the first GetOrCreate call and then held
// for the lifetime of the store. It is never regenerated.
type SecretKeyStore struct {
	settings storage.Settings
	random   *crypto.Source
	log      logging.LeveledLogger

	key    SecretKey
	loaded bool
}

// NewSecretKeyStore creates a key store.
// random may be nil, in which case crypto.NewSource() is used.
// loggerFactory may be nil, in which case logging is disabled.
func NewSecretKeyStore(settings storage.Settings, random *crypto.Source, loggerFactory logging.LoggerFactory) *SecretKeyStore {
	if random == nil {
		random = crypto.NewSource()
	}

	s := &SecretKeyStore{
		settings: settings,
		random:   random,
	}
	if loggerFactory != nil {
		s.log = loggerFactory.NewLogger("slaac")
	}
	return s
}

// GetOrCreate returns the secret key. On first use it reads the persisted key
// and, if there is none (or it cannot be read), generates and persists a new
// one.
func (s *SecretKeyStore) GetOrCreate() SecretKey {
	if s.loaded {
		return s.key
	}

	stored, err := s.settings.LoadSLAACSecretKey()
	switch {
	case err == nil && len(stored) == SecretKeySize:
		copy(s.key[:], stored)
		s.loaded = true
		return s.key
	case err == nil:
		if s.log != nil {
			s.log.Warnf("stored secret key has %d bytes, want %d; regenerating", len(stored), SecretKeySize)
		}
	case !errors.Is(err, storage.ErrNotFound):
		if s.log != nil {
			s.log.Warnf("failed to read secret key: %v; regenerating", err)
		}
	}

	s.key = s.generate()
	s.loaded = true

	if err := s.settings.SaveSLAACSecretKey(s.key[:]); err != nil {
		if s.log != nil {
			s.log.Errorf("failed to persist secret key: %v", err)
		}
		return s.key
	}
	if s.log != nil {
		s.log.Info("generated and saved secret key")
	}
	return s.key
}

// generate draws new key material from the true random source, falling back
// to the pseudo-random generator.
func (s *SecretKeyStore) generate() SecretKey {
	var key SecretKey

	err := s.random.FillTrueRandom(key[:])
	if err == nil {
		return key
	}

	if s.log != nil {
		s.log.Warnf("true random source failed: %v; using pseudo-random key material", err)
	}

	seed := make([]byte, 2*SecretKeySize)
	s.random.FillPseudoRandom(seed)

	whitened, err := crypto.HKDFSHA256(seed, nil, []byte(secretKeyInfo), SecretKeySize)
	if err != nil {
		copy(key[:], seed)
		return key
	}
	copy(key[:], whitened)
	return key
}
