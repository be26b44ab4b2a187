//go:build linux

package netif

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"net"

	"github.com/backkem/slaac/pkg/slaac"
	"github.com/pion/logging"
	"github.com/vishvananda/netlink"
	"go4.org/netipx"
	"golang.org/x/sys/unix"
)

// deprecatedValidLifetime is the valid lifetime, in seconds, given to
// addresses added as not preferred. The kernel deprecates an address whose
// preferred lifetime is zero.
const deprecatedValidLifetime = math.MaxInt32

// NetlinkConfig configures a Netlink table.
type NetlinkConfig struct {
	// InterfaceName is the network interface to manage (e.g., "wpan0").
	// Required.
	InterfaceName string

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Netlink is the unicast address table of a Linux interface.
type Netlink struct {
	link netlink.Link
	log  logging.LeveledLogger
}

// NewNetlink looks up the interface and returns a table for it.
func NewNetlink(config NetlinkConfig) (*Netlink, error) {
	link, err := netlink.LinkByName(config.InterfaceName)
	if err != nil {
		return nil, fmt.Errorf("netif: link %q: %w", config.InterfaceName, err)
	}

	n := &Netlink{link: link}
	if config.LoggerFactory != nil {
		n.log = config.LoggerFactory.NewLogger("netif")
	}
	return n, nil
}

// UnicastAddresses enumerates the interface's IPv6 unicast addresses.
// A failed dump is logged and yields nothing.
func (n *Netlink) UnicastAddresses() iter.Seq[slaac.UnicastAddress] {
	return func(yield func(slaac.UnicastAddress) bool) {
		addrs, err := netlink.AddrList(n.link, netlink.FAMILY_V6)
		if err != nil {
			if n.log != nil {
				n.log.Warnf("failed to list addresses on %s: %v", n.link.Attrs().Name, err)
			}
			return
		}

		for _, a := range addrs {
			addr, ok := fromIPNet(a.IPNet, a.Flags&unix.IFA_F_DEPRECATED == 0)
			if !ok {
				continue
			}
			if !yield(addr) {
				return
			}
		}
	}
}

// AddUnicastAddress adds addr to the interface.
func (n *Netlink) AddUnicastAddress(addr slaac.UnicastAddress) error {
	nlAddr, err := toNetlinkAddr(addr)
	if err != nil {
		return err
	}
	if !addr.Preferred {
		nlAddr.PreferedLft = 0
		nlAddr.ValidLft = deprecatedValidLifetime
	}

	if err := netlink.AddrAdd(n.link, nlAddr); err != nil {
		if errors.Is(err, unix.EEXIST) {
			return ErrAddressExists
		}
		return fmt.Errorf("netif: add %s: %w", addr, err)
	}
	return nil
}

// RemoveUnicastAddress removes addr from the interface.
func (n *Netlink) RemoveUnicastAddress(addr slaac.UnicastAddress) error {
	nlAddr, err := toNetlinkAddr(addr)
	if err != nil {
		return err
	}

	if err := netlink.AddrDel(n.link, nlAddr); err != nil {
		if errors.Is(err, unix.EADDRNOTAVAIL) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("netif: remove %s: %w", addr, err)
	}
	return nil
}

// SubscribeRemovals reports every IPv6 address that leaves the interface on
// ch until ctx is done. The subscription runs in its own goroutine; ch must
// be drained.
func (n *Netlink) SubscribeRemovals(ctx context.Context, ch chan<- slaac.UnicastAddress) error {
	updates := make(chan netlink.AddrUpdate)
	done := make(chan struct{})

	err := netlink.AddrSubscribeWithOptions(updates, done, netlink.AddrSubscribeOptions{
		ErrorCallback: func(err error) {
			if n.log != nil {
				n.log.Warnf("address subscription error: %v", err)
			}
		},
	})
	if err != nil {
		close(done)
		return fmt.Errorf("netif: subscribe: %w", err)
	}

	go forwardRemovals(ctx, n.link.Attrs().Index, updates, done, ch)
	return nil
}

// forwardRemovals relays removals from updates to ch until ctx is done or
// updates closes, then closes done to end the kernel subscription.
func forwardRemovals(ctx context.Context, index int, updates <-chan netlink.AddrUpdate, done chan struct{}, ch chan<- slaac.UnicastAddress) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			addr, ok := removedAddress(u, index)
			if !ok {
				continue
			}
			select {
			case ch <- addr:
			case <-ctx.Done():
				return
			}
		}
	}
}

// removedAddress returns the IPv6 address an update removed from the link
// with the given index. Additions and other links are skipped.
func removedAddress(u netlink.AddrUpdate, index int) (slaac.UnicastAddress, bool) {
	if u.NewAddr || u.LinkIndex != index {
		return slaac.UnicastAddress{}, false
	}
	return fromIPNet(&u.LinkAddress, u.PreferedLft != 0)
}

// fromIPNet converts a kernel address to a UnicastAddress, rejecting
// anything but IPv6 unicast.
func fromIPNet(ipNet *net.IPNet, preferred bool) (slaac.UnicastAddress, bool) {
	if ipNet == nil {
		return slaac.UnicastAddress{}, false
	}
	p, ok := netipx.FromStdIPNet(ipNet)
	if !ok || !p.Addr().Is6() || p.Addr().Is4In6() || p.Addr().IsMulticast() {
		return slaac.UnicastAddress{}, false
	}
	return slaac.UnicastAddress{
		Address:      p.Addr(),
		PrefixLength: uint8(p.Bits()),
		Preferred:    preferred,
	}, true
}

func toNetlinkAddr(addr slaac.UnicastAddress) (*netlink.Addr, error) {
	if !addr.Address.Is6() || addr.PrefixLength > 128 {
		return nil, ErrInvalidAddress
	}
	return &netlink.Addr{IPNet: &net.IPNet{
		IP:   addr.Address.AsSlice(),
		Mask: net.CIDRMask(int(addr.PrefixLength), 128),
	}}, nil
}

// Verify Netlink implements slaac.Interface.
var _ slaac.Interface = (*Netlink)(nil)
