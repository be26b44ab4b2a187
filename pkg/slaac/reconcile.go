package slaac

import "net/netip"

// maxSLAACPrefixLength is the longest prefix that leaves room for a 64-bit IID.
const maxSLAACPrefixLength = 128 - 8*IIDSize

// Update runs the passes selected by mode: the remove pass first, then the
// add pass. It always runs to completion; failures of the interface are
// logged, never returned.
func (m *Manager) Update(mode Mode) {
	if mode.Has(ModeRemove) {
		m.removePass()
	}
	if mode.Has(ModeAdd) && m.state == StateEnabled {
		m.addPass()
	}
}

// eligible reports whether addresses may be configured from p.
func (m *Manager) eligible(p OnMeshPrefix) bool {
	if !p.SLAAC || !p.Prefix.IsValid() || !p.Prefix.Addr().Is6() || p.Prefix.Addr().Is4In6() {
		return false
	}
	if p.Prefix.Bits() > maxSLAACPrefixLength {
		if m.log != nil {
			m.log.Debugf("prefix %s too long for SLAAC", p.Prefix)
		}
		return false
	}
	return !m.filter.Suppresses(p.Prefix)
}

// removePass drops every valid slot no longer justified by an eligible
// prefix. When Disabled nothing is justified.
func (m *Manager) removePass() {
	for slot := range m.pool.valid() {
		if m.state == StateEnabled && m.justified(slot) {
			continue
		}

		if m.log != nil {
			m.log.Infof("removing %s", slot.UnicastAddress)
		}
		if err := m.config.Interface.RemoveUnicastAddress(slot.UnicastAddress); err != nil && m.log != nil {
			m.log.Warnf("failed to remove %s: %v", slot.UnicastAddress, err)
		}
		m.pool.release(slot)
	}
}

func (m *Manager) justified(slot *ManagedAddress) bool {
	for p := range m.config.Prefixes.OnMeshPrefixes() {
		if m.eligible(p) && slot.Covers(p.Prefix) {
			return true
		}
	}
	return false
}

// addPass configures an address for every eligible prefix that nothing on
// the interface covers yet.
func (m *Manager) addPass() {
	for p := range m.config.Prefixes.OnMeshPrefixes() {
		if !m.eligible(p) || m.interfaceCovers(p) {
			continue
		}

		// A slot already holds this prefix but the interface does not: a
		// previous add failed. Retry with the same address.
		if slot := m.pool.find(p); slot != nil {
			m.addToInterface(slot)
			continue
		}

		slot := m.pool.allocate()
		if slot == nil {
			if m.log != nil {
				m.log.Warnf("no free address slot for %s (capacity %d)", p.Prefix, m.pool.capacity())
			}
			if m.config.OnPoolExhausted != nil {
				m.config.OnPoolExhausted(p.Prefix)
			}
			continue
		}

		m.fill(slot, p)
		m.addToInterface(slot)
	}
}

// interfaceCovers reports whether any address on the interface, however it
// got there, already covers the exact prefix.
func (m *Manager) interfaceCovers(p OnMeshPrefix) bool {
	for addr := range m.config.Interface.UnicastAddresses() {
		if addr.Covers(p.Prefix) {
			return true
		}
	}
	return false
}

// fill initializes a free slot from p and generates its IID.
func (m *Manager) fill(slot *ManagedAddress, p OnMeshPrefix) {
	var b [16]byte
	prefix := p.Prefix.Masked().Addr().As16()
	copy(b[:], prefix[:prefixBytes(p.Prefix.Bits())])

	slot.Address = netip.AddrFrom16(b)
	slot.PrefixLength = uint8(p.Prefix.Bits())
	slot.Preferred = p.Preferred
	slot.valid = true

	m.iids.Generate(&slot.UnicastAddress)
}

func (m *Manager) addToInterface(slot *ManagedAddress) {
	if m.log != nil {
		m.log.Infof("adding %s", slot.UnicastAddress)
	}
	if err := m.config.Interface.AddUnicastAddress(slot.UnicastAddress); err != nil && m.log != nil {
		m.log.Warnf("failed to add %s: %v", slot.UnicastAddress, err)
	}
}
