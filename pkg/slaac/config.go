package slaac

import (
	"hash"
	"net/netip"

	"github.com/backkem/slaac/pkg/crypto"
	"github.com/backkem/slaac/pkg/storage"
	"github.com/pion/logging"
)

// Config holds all configuration for a Manager.
type Config struct {
	// Collaborators - Required
	Prefixes  PrefixProvider   // Advertised on-mesh prefixes
	Interface Interface        // Interface unicast address table
	Settings  storage.Settings // Persists the secret key

	// Pool - Optional
	PoolSize int // Number of managed address slots (default: DefaultPoolSize)

	// IID generation - Optional
	InterfaceTag string           // Literal mixed into the IID hash (default: DefaultInterfaceTag)
	Hash         func() hash.Hash // Streaming hash (default: crypto.NewSHA256)
	Random       *crypto.Source   // Random sources (default: crypto.NewSource())

	// Filter suppresses autoconfiguration for matching prefixes.
	// nil never suppresses.
	Filter *Filter

	// Callbacks - Optional
	OnPoolExhausted func(prefix netip.Prefix) // No free slot for an eligible prefix

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Prefixes == nil {
		return ErrPrefixProviderRequired
	}
	if c.Interface == nil {
		return ErrInterfaceRequired
	}
	if c.Settings == nil {
		return ErrSettingsRequired
	}
	if c.PoolSize < 0 {
		return ErrInvalidPoolSize
	}
	return nil
}

// applyDefaults fills in default values for unset fields.
func (c *Config) applyDefaults() {
	if c.PoolSize == 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.InterfaceTag == "" {
		c.InterfaceTag = DefaultInterfaceTag
	}
	if c.Hash == nil {
		c.Hash = crypto.NewSHA256
	}
	if c.Random == nil {
		c.Random = crypto.NewSource()
	}
}
