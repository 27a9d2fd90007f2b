//go:build linux

package ovsnet

import (
	"context"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/newtron-network/cordlab/pkg/util"
)

// Provisioner creates devices in the root namespace with netlink.
type Provisioner struct{}

func (Provisioner) AddVethPair(_ context.Context, name, peer string) error {
	if err := netlink.LinkAdd(&netlink.Veth{LinkAttrs: netlink.LinkAttrs{Name: name}, PeerName: peer}); err != nil {
		return fmt.Errorf("veth %s/%s: %w", name, peer, err)
	}
	util.WithComponent("ovsnet").Debugf("veth %s <-> %s", name, peer)
	return nil
}

func (Provisioner) SetHardwareAddr(_ context.Context, dev, mac string) error {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return fmt.Errorf("%s: %w", dev, err)
	}
	link, err := netlink.LinkByName(dev)
	if err != nil {
		return fmt.Errorf("%s: %w", dev, err)
	}
	return netlink.LinkSetHardwareAddr(link, hw)
}

// AddVLAN creates "<dev>.<vlan>" without an address.
func (Provisioner) AddVLAN(_ context.Context, dev string, vlan int) error {
	link, err := netlink.LinkByName(dev)
	if err != nil {
		return fmt.Errorf("%s: %w", dev, err)
	}
	return addVLAN(link, vlanDevName(dev, vlan), vlan, "")
}

func (Provisioner) SetUp(_ context.Context, dev string) error {
	link, err := netlink.LinkByName(dev)
	if err != nil {
		return fmt.Errorf("%s: %w", dev, err)
	}
	return netlink.LinkSetUp(link)
}
