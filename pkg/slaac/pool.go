package slaac

import "iter"

// DefaultPoolSize is the default number of managed address slots.
const DefaultPoolSize = 4

// ManagedAddress is a pool slot: an address this package added to the
// interface, plus a validity flag. Invalid slots are free.
type ManagedAddress struct {
	UnicastAddress
	valid bool
}

// IsValid reports whether the slot is in use.
func (m *ManagedAddress) IsValid() bool {
	return m.valid
}

// addressPool is a fixed-capacity arena of slots. It is sized once at
// construction and never grows; free slots are reused first-fit.
type addressPool struct {
	slots []ManagedAddress
}

func newAddressPool(capacity int) *addressPool {
	return &addressPool{slots: make([]ManagedAddress, capacity)}
}

// allocate returns the first free slot, cleared, or nil when the pool is
// full. The slot stays free until the caller marks it valid.
func (p *addressPool) allocate() *ManagedAddress {
	for i := range p.slots {
		if !p.slots[i].valid {
			p.slots[i] = ManagedAddress{}
			return &p.slots[i]
		}
	}
	return nil
}

// release frees a slot.
func (p *addressPool) release(m *ManagedAddress) {
	*m = ManagedAddress{}
}

// find returns the valid slot holding an address with exactly prefix, or nil.
func (p *addressPool) find(prefix OnMeshPrefix) *ManagedAddress {
	for i := range p.slots {
		if p.slots[i].valid && p.slots[i].Covers(prefix.Prefix) {
			return &p.slots[i]
		}
	}
	return nil
}

// valid yields the valid slots in array order.
func (p *addressPool) valid() iter.Seq[*ManagedAddress] {
	return func(yield func(*ManagedAddress) bool) {
		for i := range p.slots {
			if !p.slots[i].valid {
				continue
			}
			if !yield(&p.slots[i]) {
				return
			}
		}
	}
}

// count returns the number of valid slots.
func (p *addressPool) count() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].valid {
			n++
		}
	}
	return n
}

func (p *addressPool) capacity() int {
	return len(p.slots)
}
