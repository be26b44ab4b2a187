package main

import (
	"errors"
	"fmt"
	"net/netip"
	"os"

	"github.com/backkem/slaac/pkg/slaac"
	"github.com/pelletier/go-toml/v2"
	"go4.org/netipx"
)

// Config is the daemon configuration file.
//
// Example:
//
//	interface = "wpan0"
//	settings  = "/var/lib/slaac-node/settings.toml"
//	deny      = ["fd00::/8"]
//
//	[[prefix]]
//	prefix    = "2001:db8:1::/64"
//	slaac     = true
//	preferred = true
type Config struct {
	// Interface is the network interface to manage. Required unless dry run.
	Interface string `toml:"interface"`

	// Enabled starts the manager Enabled (default: true).
	Enabled *bool `toml:"enabled"`

	// PoolSize is the number of managed address slots (default: slaac.DefaultPoolSize).
	PoolSize int `toml:"pool_size"`

	// InterfaceTag is mixed into the IID hash (default: slaac.DefaultInterfaceTag).
	InterfaceTag string `toml:"interface_tag"`

	// Settings is the path of the persistent settings file.
	// If empty, the secret key is kept in memory and IIDs change on restart.
	Settings string `toml:"settings"`

	// Deny lists prefixes for which no address is configured.
	Deny []string `toml:"deny"`

	// Prefixes are the on-mesh prefixes to advertise to the manager.
	Prefixes []PrefixConfig `toml:"prefix"`
}

// PrefixConfig is one on-mesh prefix.
type PrefixConfig struct {
	Prefix    string `toml:"prefix"`
	SLAAC     *bool  `toml:"slaac"`     // default: true
	Preferred *bool  `toml:"preferred"` // default: true
}

// Config errors.
var (
	errNoInterface = errors.New("config: interface is required")
	errBadPoolSize = errors.New("config: pool_size must not be negative")
	errEmptyPrefix = errors.New("config: prefix entry without prefix")
)

// LoadConfig reads and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a configuration document.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.PoolSize < 0 {
		return nil, errBadPoolSize
	}
	if _, err := c.OnMeshPrefixes(); err != nil {
		return nil, err
	}
	if _, err := c.DenySet(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks settings needed to manage a real interface.
func (c *Config) Validate() error {
	if c.Interface == "" {
		return errNoInterface
	}
	return nil
}

// IsEnabled reports whether the manager should start Enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// OnMeshPrefixes converts the configured prefixes.
func (c *Config) OnMeshPrefixes() (slaac.StaticPrefixes, error) {
	result := make(slaac.StaticPrefixes, 0, len(c.Prefixes))
	for _, p := range c.Prefixes {
		if p.Prefix == "" {
			return nil, errEmptyPrefix
		}
		prefix, err := netip.ParsePrefix(p.Prefix)
		if err != nil {
			return nil, fmt.Errorf("config: prefix %q: %w", p.Prefix, err)
		}
		result = append(result, slaac.OnMeshPrefix{
			Prefix:    prefix.Masked(),
			SLAAC:     boolOr(p.SLAAC, true),
			Preferred: boolOr(p.Preferred, true),
		})
	}
	return result, nil
}

// DenySet builds the deny list, or returns nil when it is empty.
func (c *Config) DenySet() (*netipx.IPSet, error) {
	if len(c.Deny) == 0 {
		return nil, nil
	}

	var b netipx.IPSetBuilder
	for _, s := range c.Deny {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("config: deny %q: %w", s, err)
		}
		b.AddPrefix(p.Masked())
	}
	return b.IPSet()
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
