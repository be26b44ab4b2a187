package slaac

import (
	"net/netip"

	"go4.org/netipx"
)

// Filter holds a predicate that suppresses autoconfiguration for a prefix.
//
// A Filter is compared by identity: Manager.SetFilter with the pointer it
// already holds does nothing. To change behaviour, build a new Filter.
// A nil *Filter never suppresses.
type Filter struct {
	suppress func(prefix netip.Prefix) bool
}

// NewFilter returns a Filter around fn. fn returns true when addresses must
// not be configured from prefix.
func NewFilter(fn func(prefix netip.Prefix) bool) *Filter {
	return &Filter{suppress: fn}
}

// NewPrefixSetFilter returns a Filter suppressing every prefix that lies
// entirely within set.
func NewPrefixSetFilter(set *netipx.IPSet) *Filter {
	return NewFilter(func(prefix netip.Prefix) bool {
		return set != nil && set.ContainsPrefix(prefix)
	})
}

// Suppresses reports whether autoconfiguration for prefix is suppressed.
func (f *Filter) Suppresses(prefix netip.Prefix) bool {
	if f == nil || f.suppress == nil {
		return false
	}
	return f.suppress(prefix)
}
