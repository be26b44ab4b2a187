package netif

import "errors"

// Netif package errors.
var (
	// ErrAddressExists is returned when adding an address already on the table.
	ErrAddressExists = errors.New("netif: address already exists")

	// ErrTableFull is returned when no more addresses can be added.
	ErrTableFull = errors.New("netif: address table full")

	// ErrAddressNotFound is returned when removing an address not on the table.
	ErrAddressNotFound = errors.New("netif: address not found")

	// ErrInvalidAddress is returned for addresses that are not IPv6 unicast.
	ErrInvalidAddress = errors.New("netif: invalid address")

	// ErrUnsupported is returned on platforms without netlink.
	ErrUnsupported = errors.New("netif: netlink not supported on this platform")
)
