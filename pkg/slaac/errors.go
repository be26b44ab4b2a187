package slaac

import "errors"

// Configuration errors returned by New.
var (
	// ErrPrefixProviderRequired is returned when Config.Prefixes is nil.
	ErrPrefixProviderRequired = errors.New("slaac: prefix provider is required")

	// ErrInterfaceRequired is returned when Config.Interface is nil.
	ErrInterfaceRequired = errors.New("slaac: interface is required")

	// ErrSettingsRequired is returned when Config.Settings is nil.
	ErrSettingsRequired = errors.New("slaac: settings store is required")

	// ErrInvalidPoolSize is returned when Config.PoolSize is negative.
	ErrInvalidPoolSize = errors.New("slaac: pool size must not be negative")

	// ErrKeyStoreRequired is returned when an IIDGenerator has no key store.
	ErrKeyStoreRequired = errors.New("slaac: secret key store is required")
)
