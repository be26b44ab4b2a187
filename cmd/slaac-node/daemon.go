package main

import (
	"context"
	"net/netip"
	"os"
	"slices"

	"github.com/backkem/slaac/pkg/slaac"
	"github.com/backkem/slaac/pkg/storage"
	"github.com/pion/logging"
)

// daemon owns a Manager and serializes every call into it.
type daemon struct {
	configPath string
	config     *Config
	prefixes   *slaac.StaticPrefixes
	manager    *slaac.Manager
	log        logging.LeveledLogger
}

func newDaemon(configPath string, config *Config, iface slaac.Interface, loggerFactory logging.LoggerFactory) (*daemon, error) {
	log := loggerFactory.NewLogger("slaac-node")

	prefixes, err := config.OnMeshPrefixes()
	if err != nil {
		return nil, err
	}
	denySet, err := config.DenySet()
	if err != nil {
		return nil, err
	}

	var settings storage.Settings
	if config.Settings != "" {
		settings = storage.NewFileStorage(config.Settings)
	} else {
		log.Warn("no settings file configured, secret key will not survive a restart")
		settings = storage.NewMemoryStorage()
	}

	var filter *slaac.Filter
	if denySet != nil {
		filter = slaac.NewPrefixSetFilter(denySet)
	}

	d := &daemon{
		configPath: configPath,
		config:     config,
		prefixes:   &prefixes,
		log:        log,
	}

	d.manager, err = slaac.New(slaac.Config{
		Prefixes:     d.prefixes,
		Interface:    iface,
		Settings:     settings,
		PoolSize:     config.PoolSize,
		InterfaceTag: config.InterfaceTag,
		Filter:       filter,
		OnPoolExhausted: func(prefix netip.Prefix) {
			log.Warnf("no free address slot for %s", prefix)
		},
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// start applies the initial enabled state and runs the first full pass.
func (d *daemon) start() {
	if !d.config.IsEnabled() {
		d.manager.Disable()
		d.log.Info("starting disabled")
		return
	}
	d.manager.HandleTopologyChanged()
	d.logAddresses()
}

// reload re-reads the configuration file and applies prefixes, deny list
// and the enabled flag; other settings need a restart. The new prefix set
// takes effect on the next topology pass.
func (d *daemon) reload() error {
	config, err := LoadConfig(d.configPath)
	if err != nil {
		return err
	}
	prefixes, err := config.OnMeshPrefixes()
	if err != nil {
		return err
	}

	*d.prefixes = prefixes
	if !slices.Equal(config.Deny, d.config.Deny) {
		denySet, err := config.DenySet()
		if err != nil {
			return err
		}
		var filter *slaac.Filter
		if denySet != nil {
			filter = slaac.NewPrefixSetFilter(denySet)
		}
		d.manager.SetFilter(filter)
	}
	d.config = config

	if config.IsEnabled() {
		d.manager.Enable()
	} else {
		d.manager.Disable()
	}
	return nil
}

// handle processes a set of events with one manager call. A topology
// change re-reads the configuration first; if that fails the old prefix
// set stays and only the remaining events are handled.
func (d *daemon) handle(events slaac.Event) error {
	var err error
	if events&slaac.EventTopologyChanged != 0 {
		d.log.Info("reloading configuration")
		if err = d.reload(); err != nil {
			events &^= slaac.EventTopologyChanged
		}
	}
	if events != 0 {
		d.manager.HandleEvent(events)
	}
	d.logAddresses()
	return err
}

// run processes events until ctx is done. Events already queued when one
// arrives are merged with it. On exit the manager is disabled, which
// removes every managed address from the interface.
func (d *daemon) run(ctx context.Context, hup <-chan os.Signal, removed <-chan slaac.UnicastAddress) {
	for {
		var events slaac.Event
		select {
		case <-ctx.Done():
			d.manager.Disable()
			return
		case <-hup:
			events = slaac.EventTopologyChanged
		case addr := <-removed:
			d.log.Debugf("address removed: %s", addr)
			events = slaac.EventAddressRemoved
		}
		events |= d.pending(hup, removed)

		if err := d.handle(events); err != nil {
			d.log.Errorf("reload: %v", err)
		}
	}
}

// pending drains events that are ready without blocking.
func (d *daemon) pending(hup <-chan os.Signal, removed <-chan slaac.UnicastAddress) slaac.Event {
	var events slaac.Event
	for {
		select {
		case <-hup:
			events |= slaac.EventTopologyChanged
		case addr := <-removed:
			d.log.Debugf("address removed: %s", addr)
			events |= slaac.EventAddressRemoved
		default:
			return events
		}
	}
}

func (d *daemon) logAddresses() {
	for _, addr := range d.manager.Addresses() {
		d.log.Infof("managed address %s", addr)
	}
}
