// Package emu is an in-memory network emulator. It assigns DPIDs, ports
// and interface names the way a Mininet-style emulator does, without
// creating any kernel state.
package emu

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// Network holds every node injected into it, across domains.
type Network struct {
	switches    map[string]*Switch
	switchOrder []string
	hosts       map[string]*Host
	hostOrder   []string
	links       []*topo.Link
	controllers map[string]*Controller
	built       bool
	log         *logrus.Entry
}

var _ topo.Injector = (*Network)(nil)

// New returns an empty network.
func New() *Network {
	return &Network{
		switches:    make(map[string]*Switch),
		hosts:       make(map[string]*Host),
		controllers: make(map[string]*Controller),
		log:         util.WithComponent("emu"),
	}
}

func (n *Network) checkName(name string) error {
	_, sw := n.switches[name]
	_, h := n.hosts[name]
	if sw || h {
		return fmt.Errorf("%q: %w", name, util.ErrDuplicateName)
	}
	return nil
}

// AddSwitch creates a switch. The DPID comes from params or, failing
// that, from the digits in the name.
func (n *Network) AddSwitch(_ context.Context, name string, params topo.SwitchParams) (topo.Switch, error) {
	if err := n.checkName(name); err != nil {
		return nil, err
	}
	dpid := params.DPID
	if dpid == "" {
		var err error
		if dpid, err = topo.DefaultDPID(name); err != nil {
			return nil, err
		}
	}
	sw := &Switch{node: newNode(name, topo.SwitchPortBase), params: params, dpid: dpid}
	n.switches[name] = sw
	n.switchOrder = append(n.switchOrder, name)
	n.log.Debugf("switch %s dpid %s", name, dpid)
	return sw, nil
}

// AddHost creates a host. Without a MAC in params one is derived from the name.
func (n *Network) AddHost(_ context.Context, name string, params topo.HostParams) (topo.Host, error) {
	if err := n.checkName(name); err != nil {
		return nil, err
	}
	mac := params.MAC
	if mac == "" {
		mac = GenerateMAC(name)
	}
	h := &Host{node: newNode(name, topo.HostPortBase), params: params, mac: mac}
	n.hosts[name] = h
	n.hostOrder = append(n.hostOrder, name)
	return h, nil
}

// AddLink connects two nodes previously created by this network.
func (n *Network) AddLink(_ context.Context, a, b topo.Node, params topo.LinkParams) (*topo.Link, error) {
	i1, err := n.endpoint(a, params.Port1)
	if err != nil {
		return nil, err
	}
	i2, err := n.endpoint(b, params.Port2)
	if err != nil {
		return nil, err
	}
	l := topo.NewLink(i1, i2, params)
	n.links = append(n.links, l)
	n.log.Debugf("link %s <-> %s", i1.Name, i2.Name)
	return l, nil
}

func (n *Network) endpoint(nd topo.Node, port int) (*topo.Intf, error) {
	switch v := nd.(type) {
	case *Switch:
		if n.switches[v.name] != v {
			break
		}
		return v.newIntf(v, "", port, "")
	case *Host:
		if n.hosts[v.name] != v {
			break
		}
		return v.newIntf(v, "", port, v.mac)
	}
	return nil, fmt.Errorf("node %s is not part of this network: %w", nd.Name(), util.ErrUnknownNode)
}

// AddController records a remote controller.
func (n *Network) AddController(_ context.Context, name string, params topo.ControllerParams) (topo.Controller, error) {
	if _, ok := n.controllers[name]; ok {
		return nil, fmt.Errorf("controller %q: %w", name, util.ErrDuplicateName)
	}
	c := &Controller{name: name, params: params}
	n.controllers[name] = c
	return c, nil
}

// Build finalizes the network.
func (n *Network) Build(_ context.Context) error {
	n.built = true
	n.log.Infof("built %d switches, %d hosts, %d links", len(n.switches), len(n.hosts), len(n.links))
	return nil
}

// Built reports whether Build has been called.
func (n *Network) Built() bool { return n.built }

// Switch returns a switch by name.
func (n *Network) Switch(name string) (*Switch, bool) {
	sw, ok := n.switches[name]
	return sw, ok
}

// Host returns a host by name.
func (n *Network) Host(name string) (*Host, bool) {
	h, ok := n.hosts[name]
	return h, ok
}

// Switches returns switches in creation order.
func (n *Network) Switches() []*Switch {
	out := make([]*Switch, 0, len(n.switchOrder))
	for _, name := range n.switchOrder {
		out = append(out, n.switches[name])
	}
	return out
}

// Hosts returns hosts in creation order.
func (n *Network) Hosts() []*Host {
	out := make([]*Host, 0, len(n.hostOrder))
	for _, name := range n.hostOrder {
		out = append(out, n.hosts[name])
	}
	return out
}

// Links returns links in creation order.
func (n *Network) Links() []*topo.Link { return append([]*topo.Link(nil), n.links...) }
