package netif

import (
	"iter"
	"slices"
	"sync"

	"github.com/backkem/slaac/pkg/slaac"
)

// DefaultMaxAddresses is the default capacity of a MemoryTable.
const DefaultMaxAddresses = 8

// MemoryTable is an in-memory unicast address table with bounded capacity.
// Addresses are unique by value; prefix length and flags are not part of the
// identity.
//
// All methods are safe for concurrent use.
type MemoryTable struct {
	addrs        []slaac.UnicastAddress
	maxAddresses int

	mu sync.RWMutex
}

// NewMemoryTable creates a table.
// maxAddresses limits the number of addresses (0 uses DefaultMaxAddresses).
func NewMemoryTable(maxAddresses int) *MemoryTable {
	if maxAddresses <= 0 {
		maxAddresses = DefaultMaxAddresses
	}
	return &MemoryTable{maxAddresses: maxAddresses}
}

// UnicastAddresses enumerates a snapshot of the table, so callers may modify
// the table while iterating.
func (t *MemoryTable) UnicastAddresses() iter.Seq[slaac.UnicastAddress] {
	t.mu.RLock()
	snapshot := slices.Clone(t.addrs)
	t.mu.RUnlock()

	return slices.Values(snapshot)
}

// AddUnicastAddress adds an address.
// Returns ErrAddressExists for a duplicate and ErrTableFull at capacity.
func (t *MemoryTable) AddUnicastAddress(addr slaac.UnicastAddress) error {
	if !addr.Address.IsValid() || addr.PrefixLength > 128 {
		return ErrInvalidAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.indexOf(addr) >= 0 {
		return ErrAddressExists
	}
	if len(t.addrs) >= t.maxAddresses {
		return ErrTableFull
	}

	t.addrs = append(t.addrs, addr)
	return nil
}

// RemoveUnicastAddress removes an address by value.
// Returns ErrAddressNotFound if it is not on the table.
func (t *MemoryTable) RemoveUnicastAddress(addr slaac.UnicastAddress) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(addr)
	if i < 0 {
		return ErrAddressNotFound
	}
	t.addrs = slices.Delete(t.addrs, i, i+1)
	return nil
}

// Contains reports whether the address is on the table.
func (t *MemoryTable) Contains(addr slaac.UnicastAddress) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.indexOf(addr) >= 0
}

// Count returns the number of addresses.
func (t *MemoryTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.addrs)
}

// Clear removes all addresses.
func (t *MemoryTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addrs = nil
}

func (t *MemoryTable) indexOf(addr slaac.UnicastAddress) int {
	return slices.IndexFunc(t.addrs, func(a slaac.UnicastAddress) bool {
		return a.Address == addr.Address
	})
}

// Verify MemoryTable implements slaac.Interface.
var _ slaac.Interface = (*MemoryTable)(nil)
