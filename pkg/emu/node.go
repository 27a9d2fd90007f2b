package emu

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/newtron-network/cordlab/pkg/topo"
)

// node is the state shared by emulated switches and hosts.
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

// Intfs returns the loopback followed by every port in port order.
func (n *node) Intfs() []*topo.Intf {
	out := make([]*topo.Intf, 0, len(n.intfs)+1)
	out = append(out, n.lo)
	sorted := append([]*topo.Intf(nil), n.intfs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Port < sorted[j].Port })
	return append(out, sorted...)
}

// Intf returns the interface with the given name.
func (n *node) Intf(name string) (*topo.Intf, bool) {
	for _, i := range n.intfs {
		if i.Name == name {
			return i, true
		}
	}
	return nil, false
}

func (n *node) newIntf(owner topo.Node, name string, requested int, mac string) (*topo.Intf, error) {
	port, err := n.ports.Allocate(requested)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	if name == "" {
		name = topo.IntfName(n.name, port)
	}
	intf := &topo.Intf{Name: name, Node: owner, Port: port, MAC: mac}
	n.intfs = append(n.intfs, intf)
	return intf, nil
}

// Switch is an emulated OpenFlow switch.
type Switch struct {
	node
	params      topo.SwitchParams
	dpid        string
	controllers []string
	started     bool
}

var _ topo.Switch = (*Switch)(nil)
var _ topo.Attachable = (*Switch)(nil)

func (s *Switch) DPID() string { return s.dpid }

// Params returns the declaration params the switch was created with.
func (s *Switch) Params() topo.SwitchParams { return s.params }

// Start connects the switch to controllers.
func (s *Switch) Start(_ context.Context, controllers []topo.Controller) error {
	s.controllers = s.controllers[:0]
	for _, c := range controllers {
		s.controllers = append(s.controllers, c.Address())
	}
	s.started = true
	return nil
}

// Started reports whether Start has been called.
func (s *Switch) Started() bool { return s.started }

// Controllers returns the controller addresses the switch was started with.
func (s *Switch) Controllers() []string { return append([]string(nil), s.controllers...) }

// Attach adopts dev as the switch's next free port.
func (s *Switch) Attach(_ context.Context, dev string) (*topo.Intf, error) {
	if _, ok := s.Intf(dev); ok {
		return nil, fmt.Errorf("%s: interface %s already attached", s.name, dev)
	}
	return s.newIntf(s, dev, 0, "")
}

// VLANIntf is a tagged sub-interface on an emulated host.
type VLANIntf struct {
	Name string
	VLAN int
	CIDR string
}

// Host is an emulated end host.
type Host struct {
	node
	params topo.HostParams
	mac    string
	vlans  []VLANIntf
}

var _ topo.Host = (*Host)(nil)
var _ topo.VLANCapable = (*Host)(nil)

func (h *Host) IP() string  { return h.params.IP }
func (h *Host) MAC() string { return h.mac }

// Params returns the declaration params the host was created with.
func (h *Host) Params() topo.HostParams { return h.params }

// AddVLAN adds a tagged sub-interface on the host's first port.
func (h *Host) AddVLAN(_ context.Context, vlan int, cidr string) error {
	if len(h.intfs) == 0 {
		return fmt.Errorf("%s: no interface to tag", h.name)
	}
	parent := h.Intfs()[1]
	h.vlans = append(h.vlans, VLANIntf{
		Name: fmt.Sprintf("%s.%d", parent.Name, vlan),
		VLAN: vlan,
		CIDR: cidr,
	})
	return nil
}

// VLANs returns the sub-interfaces added by AddVLAN.
func (h *Host) VLANs() []VLANIntf { return append([]VLANIntf(nil), h.vlans...) }

// Controller is an emulated remote controller reference.
type Controller struct {
	name    string
	params  topo.ControllerParams
	started bool
}

var _ topo.Controller = (*Controller)(nil)

func (c *Controller) Name() string    { return c.name }
func (c *Controller) Address() string { return c.params.Address }

func (c *Controller) Start(_ context.Context) error {
	c.started = true
	return nil
}

// Started reports whether Start has been called.
func (c *Controller) Started() bool { return c.started }

// GenerateMAC derives a stable locally administered MAC from a host name.
func GenerateMAC(name string) string {
	hash := sha256.Sum256([]byte(name))
	return fmt.Sprintf("02:00:%02x:%02x:%02x:%02x", hash[0], hash[1], hash[2], hash[3])
}
