package slaac

import (
	"iter"
	"net/netip"
	"slices"
)

// UnicastAddress is a unicast address held (or to be held) by the interface.
type UnicastAddress struct {
	// Address is the full 128-bit address.
	Address netip.Addr

	// PrefixLength is the on-link prefix length (0-128).
	PrefixLength uint8

	// Preferred marks the address as preferred rather than deprecated.
	Preferred bool
}

// Prefix returns the masked prefix the address belongs to.
func (a UnicastAddress) Prefix() netip.Prefix {
	p, err := a.Address.Prefix(int(a.PrefixLength))
	if err != nil {
		return netip.Prefix{}
	}
	return p
}

// Covers reports whether a has the same prefix length as prefix and its
// address bits match prefix for that length.
func (a UnicastAddress) Covers(prefix netip.Prefix) bool {
	return int(a.PrefixLength) == prefix.Bits() && prefix.Contains(a.Address)
}

// String returns the address in CIDR notation, e.g. "2001:db8::1/64".
func (a UnicastAddress) String() string {
	return netip.PrefixFrom(a.Address, int(a.PrefixLength)).String()
}

// OnMeshPrefix is a read-only view of an on-mesh prefix advertised by the
// network.
type OnMeshPrefix struct {
	// Prefix is the advertised prefix.
	Prefix netip.Prefix

	// SLAAC is set when nodes may autoconfigure addresses from the prefix.
	SLAAC bool

	// Preferred is copied to addresses created from the prefix.
	Preferred bool
}

// PrefixProvider enumerates the on-mesh prefixes currently advertised.
type PrefixProvider interface {
	// OnMeshPrefixes returns a fresh, finite enumeration. It is called once
	// per pass; nothing from a previous enumeration is retained.
	OnMeshPrefixes() iter.Seq[OnMeshPrefix]
}

// StaticPrefixes is a PrefixProvider over a fixed list.
type StaticPrefixes []OnMeshPrefix

// OnMeshPrefixes implements PrefixProvider.
func (s StaticPrefixes) OnMeshPrefixes() iter.Seq[OnMeshPrefix] {
	return slices.Values(s)
}

// Interface is the network interface's unicast address table.
type Interface interface {
	// UnicastAddresses enumerates every unicast address on the interface,
	// including addresses not added by this package.
	UnicastAddresses() iter.Seq[UnicastAddress]

	// AddUnicastAddress adds an address. It may fail when the table is full
	// or the address is already present.
	AddUnicastAddress(addr UnicastAddress) error

	// RemoveUnicastAddress removes an address by value.
	RemoveUnicastAddress(addr UnicastAddress) error
}

// Mode selects the passes run by Update.
type Mode uint8

// Update modes.
const (
	// ModeAdd creates addresses for uncovered eligible prefixes.
	ModeAdd Mode = 1 << iota

	// ModeRemove removes managed addresses that are no longer justified.
	ModeRemove

	// ModeAddRemove runs the remove pass followed by the add pass.
	ModeAddRemove = ModeAdd | ModeRemove
)

// Has reports whether every pass in o is selected in m.
func (m Mode) Has(o Mode) bool {
	return m&o == o
}

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "Add"
	case ModeRemove:
		return "Remove"
	case ModeAddRemove:
		return "AddRemove"
	default:
		return "None"
	}
}

// Event is a set of external notifications delivered to a Manager.
// Notifications that arrive together may be combined with |.
type Event int

const (
	// EventTopologyChanged signals that the advertised prefix set may have changed.
	EventTopologyChanged Event = 1 << iota

	// EventAddressRemoved signals that some unicast address left the interface.
	EventAddressRemoved
)

// String returns a human-readable name for the event.
func (e Event) String() string {
	switch e {
	case EventTopologyChanged:
		return "TopologyChanged"
	case EventAddressRemoved:
		return "AddressRemoved"
	case EventTopologyChanged | EventAddressRemoved:
		return "TopologyChanged|AddressRemoved"
	default:
		return "Unknown"
	}
}
