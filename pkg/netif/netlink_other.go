//go:build !linux

package netif

import (
	"context"
	"iter"

	"github.com/backkem/slaac/pkg/slaac"
	"github.com/pion/logging"
)

// NetlinkConfig configures a Netlink table.
type NetlinkConfig struct {
	InterfaceName string
	LoggerFactory logging.LoggerFactory
}

// Netlink is unavailable on this platform.
type Netlink struct{}

// NewNetlink returns ErrUnsupported.
func NewNetlink(config NetlinkConfig) (*Netlink, error) {
	return nil, ErrUnsupported
}

// UnicastAddresses yields nothing.
func (n *Netlink) UnicastAddresses() iter.Seq[slaac.UnicastAddress] {
	return func(func(slaac.UnicastAddress) bool) {}
}

// AddUnicastAddress returns ErrUnsupported.
func (n *Netlink) AddUnicastAddress(addr slaac.UnicastAddress) error {
	return ErrUnsupported
}

// RemoveUnicastAddress returns ErrUnsupported.
func (n *Netlink) RemoveUnicastAddress(addr slaac.UnicastAddress) error {
	return ErrUnsupported
}

// SubscribeRemovals returns ErrUnsupported.
func (n *Netlink) SubscribeRemovals(ctx context.Context, ch chan<- slaac.UnicastAddress) error {
	return ErrUnsupported
}
