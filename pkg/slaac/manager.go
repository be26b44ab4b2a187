package slaac

import (
	"github.com/pion/logging"
)

// State is the Manager's enable state.
type State int

const (
	// StateEnabled means addresses are configured from eligible prefixes.
	StateEnabled State = iota

	// StateDisabled means no managed addresses are held.
	StateDisabled
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateEnabled:
		return "Enabled"
	case StateDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// Manager reconciles the node's SLAAC addresses against the advertised
// on-mesh prefixes. A Manager starts Enabled and holds no addresses until
// the first pass.
type Manager struct {
	config Config
	state  State
	filter *Filter

	pool *addressPool
	keys *SecretKeyStore
	iids *IIDGenerator

	log logging.LeveledLogger
}

// New creates a Manager. It does not run a pass; call HandleTopologyChanged
// once the prefix set is known.
func New(config Config) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	keys := NewSecretKeyStore(config.Settings, config.Random, config.LoggerFactory)
	iids, err := NewIIDGenerator(IIDGeneratorConfig{
		Keys:          keys,
		Hash:          config.Hash,
		InterfaceTag:  config.InterfaceTag,
		Random:        config.Random,
		LoggerFactory: config.LoggerFactory,
	})
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config: config,
		state:  StateEnabled,
		filter: config.Filter,
		pool:   newAddressPool(config.PoolSize),
		keys:   keys,
		iids:   iids,
	}
	if config.LoggerFactory != nil {
		m.log = config.LoggerFactory.NewLogger("slaac")
	}
	return m, nil
}

// State returns the current state.
func (m *Manager) State() State {
	return m.state
}

// IsEnabled reports whether the Manager is Enabled.
func (m *Manager) IsEnabled() bool {
	return m.state == StateEnabled
}

// Enable moves to Enabled and configures addresses for eligible prefixes.
// It does nothing if already Enabled.
func (m *Manager) Enable() {
	if m.state == StateEnabled {
		return
	}
	m.state = StateEnabled
	if m.log != nil {
		m.log.Info("enabled")
	}
	m.Update(ModeAdd)
}

// Disable moves to Disabled and removes every managed address.
// It does nothing if already Disabled.
func (m *Manager) Disable() {
	if m.state == StateDisabled {
		return
	}
	m.state = StateDisabled
	if m.log != nil {
		m.log.Info("disabled")
	}
	m.Update(ModeRemove)
}

// Filter returns the current filter, or nil.
func (m *Manager) Filter() *Filter {
	return m.filter
}

// SetFilter replaces the prefix filter; nil removes filtering. Passing the
// filter already installed is a no-op, even if the predicate's behaviour has
// changed since. When Enabled, a full pass runs with the new filter.
func (m *Manager) SetFilter(filter *Filter) {
	if filter == m.filter {
		return
	}
	m.filter = filter
	if m.log != nil {
		if filter != nil {
			m.log.Info("filter updated")
		} else {
			m.log.Info("filter disabled")
		}
	}
	if m.state == StateEnabled {
		m.Update(ModeAddRemove)
	}
}

// HandleTopologyChanged runs a full pass when Enabled.
func (m *Manager) HandleTopologyChanged() {
	if m.state == StateEnabled {
		m.Update(ModeAddRemove)
	}
}

// HandleAddressRemoved runs an add pass when Enabled. Removal of any
// address, managed or not, may leave an eligible prefix uncovered.
func (m *Manager) HandleAddressRemoved() {
	if m.state == StateEnabled {
		m.Update(ModeAdd)
	}
}

// HandleEvent handles a set of events with a single pass: a topology change
// runs a full pass, an address removal an add pass. Unknown bits are ignored.
func (m *Manager) HandleEvent(e Event) {
	var mode Mode
	if e&EventTopologyChanged != 0 {
		mode |= ModeAddRemove
	}
	if e&EventAddressRemoved != 0 {
		mode |= ModeAdd
	}
	if mode == 0 {
		if m.log != nil {
			m.log.Debugf("ignoring event %d", int(e))
		}
		return
	}
	if m.state == StateEnabled {
		m.Update(mode)
	}
}

// Addresses returns the managed addresses currently held, in slot order.
func (m *Manager) Addresses() []UnicastAddress {
	var result []UnicastAddress
	for slot := range m.pool.valid() {
		result = append(result, slot.UnicastAddress)
	}
	return result
}

// Count returns the number of managed addresses.
func (m *Manager) Count() int {
	return m.pool.count()
}

// Capacity returns the number of address slots.
func (m *Manager) Capacity() int {
	return m.pool.capacity()
}
