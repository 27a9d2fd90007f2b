//go:build linux

package ovsnet

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/containernetworking/plugins/pkg/ns"
	"github.com/vishvananda/netlink"

	"github.com/newtron-network/cordlab/pkg/remote"
	"github.com/newtron-network/cordlab/pkg/topo"
)

type node struct {
	name  string
	lo    *topo.Intf
	intfs []*topo.Intf
	ports *topo.PortMap
}

func newNode(name string, portBase int) node {
	return node{
		name:  name,
		lo:    &topo.Intf{Name: topo.LoopbackName, Port: -1},
		ports: topo.NewPortMap(portBase),
	}
}

func (n *node) Name() string { return n.name }

func (n *node) Intfs() []*topo.Intf {
	out := []*topo.Intf{n.lo}
	sorted := append([]*topo.Intf(nil), n.intfs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Port < sorted[j].Port })
	return append(out, sorted...)
}

func (n *node) newIntf(owner topo.Node, name string, requested int, mac string) (*topo.Intf, error) {
	port, err := n.ports.Allocate(requested)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	if name == "" {
		name = topo.IntfName(n.name, port)
	}
	if len(name) > maxIfName {
		return nil, fmt.Errorf("%s: interface name %q too long", n.name, name)
	}
	intf := &topo.Intf{Name: name, Node: owner, Port: port, MAC: mac}
	n.intfs = append(n.intfs, intf)
	return intf, nil
}

// Switch is an Open vSwitch bridge.
type Switch struct {
	node
	net    *Network
	params topo.SwitchParams
	dpid   string
}

var _ topo.Switch = (*Switch)(nil)
var _ topo.Attachable = (*Switch)(nil)

func (s *Switch) DPID() string { return s.dpid }

// addPort puts a device on the bridge with its port number pinned.
func (s *Switch) addPort(ctx context.Context, i *topo.Intf) error {
	if err := s.net.ovs.VSwitch.AddPort(s.name, i.Name); err != nil {
		return fmt.Errorf("add port %s to %s: %w", i.Name, s.name, err)
	}
	if err := s.net.vsctl(ctx, "set", "Interface", i.Name, "ofport_request="+strconv.Itoa(i.Port)); err != nil {
		return fmt.Errorf("port %s number: %w", i.Name, err)
	}
	link, err := netlink.LinkByName(i.Name)
	if err != nil {
		return fmt.Errorf("port %s: %w", i.Name, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("port %s up: %w", i.Name, err)
	}
	return nil
}

// Attach adopts an existing device as the bridge's next free port.
func (s *Switch) Attach(ctx context.Context, dev string) (*topo.Intf, error) {
	for _, i := range s.intfs {
		if i.Name == dev {
			return nil, fmt.Errorf("%s: interface %s already attached", s.name, dev)
		}
	}
	i, err := s.newIntf(s, dev, 0, "")
	if err != nil {
		return nil, err
	}
	if err := s.addPort(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// Start points the bridge at every controller.
func (s *Switch) Start(ctx context.Context, controllers []topo.Controller) error {
	targets := make([]string, 0, len(controllers))
	for _, c := range controllers {
		targets = append(targets, controllerTarget(c))
	}
	switch len(targets) {
	case 0:
		return nil
	case 1:
		return s.net.ovs.VSwitch.SetController(s.name, targets[0])
	}
	_, err := s.net.runner.Run(ctx, "ovs-vsctl set-controller "+remote.QuoteArgs(append([]string{s.name}, targets...)...))
	return err
}

func controllerTarget(c topo.Controller) string {
	port := 6653
	if oc, ok := c.(*Controller); ok && oc.params.Port != 0 {
		port = oc.params.Port
	}
	return "tcp:" + net.JoinHostPort(c.Address(), strconv.Itoa(port))
}

// Host is a network namespace.
type Host struct {
	node
	params topo.HostParams
	nsPath string
}

var _ topo.Host = (*Host)(nil)
var _ topo.VLANCapable = (*Host)(nil)

func (h *Host) IP() string { return h.params.IP }

func (h *Host) MAC() string {
	if h.params.MAC != "" {
		return h.params.MAC
	}
	if len(h.intfs) > 0 {
		return h.intfs[0].MAC
	}
	return ""
}

func (h *Host) do(fn func() error) error {
	netns, err := ns.GetNS(h.nsPath)
	if err != nil {
		return fmt.Errorf("host %s: %w", h.name, err)
	}
	defer netns.Close()
	return netns.Do(func(ns.NetNS) error { return fn() })
}

// adopt moves a fresh veth end into the namespace. The first interface
// carries the host's MAC, address, MTU and default route.
func (h *Host) adopt(i *topo.Intf) error {
	link, err := netlink.LinkByName(i.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", i.Name, err)
	}
	netns, err := ns.GetNS(h.nsPath)
	if err != nil {
		return fmt.Errorf("host %s: %w", h.name, err)
	}
	defer netns.Close()
	if err := netlink.LinkSetNsFd(link, int(netns.Fd())); err != nil {
		return fmt.Errorf("move %s into %s: %w", i.Name, h.name, err)
	}

	primary := i == h.intfs[0]
	return netns.Do(func(ns.NetNS) error {
		link, err := netlink.LinkByName(i.Name)
		if err != nil {
			return err
		}
		if primary && h.params.MAC != "" {
			hw, err := net.ParseMAC(h.params.MAC)
			if err != nil {
				return fmt.Errorf("%s mac: %w", h.name, err)
			}
			if err := netlink.LinkSetHardwareAddr(link, hw); err != nil {
				return err
			}
		}
		if primary && h.params.MTU > 0 {
			if err := netlink.LinkSetMTU(link, h.params.MTU); err != nil {
				return err
			}
		}
		if primary && h.params.IP != "" {
			addr, err := netlink.ParseAddr(h.params.IP)
			if err != nil {
				return fmt.Errorf("%s ip: %w", h.name, err)
			}
			if err := netlink.AddrAdd(link, addr); err != nil {
				return err
			}
		}
		if err := netlink.LinkSetUp(link); err != nil {
			return err
		}
		i.MAC = link.Attrs().HardwareAddr.String()
		if primary && h.params.Gateway != "" {
			return netlink.RouteAdd(&netlink.Route{
				LinkIndex: link.Attrs().Index,
				Gw:        net.ParseIP(h.params.Gateway),
			})
		}
		return nil
	})
}

func (h *Host) loopbackUp() error {
	return h.do(func() error {
		lo, err := netlink.LinkByName(topo.LoopbackName)
		if err != nil {
			return err
		}
		return netlink.LinkSetUp(lo)
	})
}

// AddVLAN creates "<eth>.<vlan>" on the host's first interface and
// assigns cidr to it.
func (h *Host) AddVLAN(_ context.Context, vlan int, cidr string) error {
	if len(h.intfs) == 0 {
		return fmt.Errorf("%s: no interface to tag", h.name)
	}
	parent := h.Intfs()[1].Name
	name := vlanDevName(parent, vlan)
	return h.do(func() error {
		p, err := netlink.LinkByName(parent)
		if err != nil {
			return err
		}
		return addVLAN(p, name, vlan, cidr)
	})
}

func vlanDevName(parent string, vlan int) string {
	name := fmt.Sprintf("%s.%d", parent, vlan)
	if len(name) > maxIfName {
		// keep the tag, shorten the parent
		suffix := "." + strconv.Itoa(vlan)
		name = strings.TrimSuffix(parent[:maxIfName-len(suffix)], "-") + suffix
	}
	return name
}

func addVLAN(parent netlink.Link, name string, vlan int, cidr string) error {
	v := &netlink.Vlan{
		LinkAttrs: netlink.LinkAttrs{Name: name, ParentIndex: parent.Attrs().Index},
		VlanId:    vlan,
	}
	if err := netlink.LinkAdd(v); err != nil {
		return fmt.Errorf("vlan %s: %w", name, err)
	}
	if cidr != "" {
		addr, err := netlink.ParseAddr(cidr)
		if err != nil {
			return fmt.Errorf("vlan %s: %w", name, err)
		}
		if err := netlink.AddrAdd(v, addr); err != nil {
			return fmt.Errorf("vlan %s address: %w", name, err)
		}
	}
	return netlink.LinkSetUp(v)
}

// Controller is a remote controller reference.
type Controller struct {
	name   string
	params topo.ControllerParams
}

var _ topo.Controller = (*Controller)(nil)

func (c *Controller) Name() string    { return c.name }
func (c *Controller) Address() string { return c.params.Address }

// Start is a no-op: controllers run elsewhere.
func (c *Controller) Start(context.Context) error { return nil }
