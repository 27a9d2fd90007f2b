//go:build linux

// Package ovsnet injects topologies into the local kernel: Open vSwitch
// bridges for switches, network namespaces for hosts and veth pairs for
// links.
package ovsnet

import (
	"context"
	"fmt"
	"strings"

	"github.com/digitalocean/go-openvswitch/ovs"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/newtron-network/cordlab/pkg/remote"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// NetnsDir is where named network namespaces are mounted.
const NetnsDir = "/var/run/netns"

// Linux interface names are limited to 15 bytes.
const maxIfName = 15

// Network is a topo.Injector backed by Open vSwitch and netlink.
type Network struct {
	ovs    *ovs.Client
	runner remote.Runner

	switches    map[string]*Switch
	switchOrder []string
	hosts       map[string]*Host
	hostOrder   []string
	controllers map[string]*Controller
	links       []*topo.Link
	built       bool

	log *logrus.Entry
}

var _ topo.Injector = (*Network)(nil)

// Option configures a Network.
type Option func(*Network)

// WithOVSClient replaces the default Open vSwitch client.
func WithOVSClient(c *ovs.Client) Option {
	return func(n *Network) { n.ovs = c }
}

// WithRunner replaces the local runner used for ovs-vsctl settings and
// namespace management.
func WithRunner(r remote.Runner) Option {
	return func(n *Network) { n.runner = r }
}

// New returns an empty network using ovs-vsctl through sudo.
func New(opts ...Option) *Network {
	n := &Network{
		switches:    make(map[string]*Switch),
		hosts:       make(map[string]*Host),
		controllers: make(map[string]*Controller),
		log:         util.WithComponent("ovsnet"),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.ovs == nil {
		n.ovs = ovs.New(ovs.Sudo())
	}
	if n.runner == nil {
		n.runner = remote.LocalRunner{}
	}
	return n
}

func (n *Network) checkName(name string) error {
	if len(name) > maxIfName {
		return util.NewValidationError(fmt.Sprintf("node name %q is longer than %d bytes", name, maxIfName))
	}
	_, sw := n.switches[name]
	_, h := n.hosts[name]
	if sw || h {
		return fmt.Errorf("%q: %w", name, util.ErrDuplicateName)
	}
	return nil
}

func (n *Network) vsctl(ctx context.Context, args ...string) error {
	_, err := n.runner.Run(ctx, "ovs-vsctl "+remote.QuoteArgs(args...))
	return err
}

// AddSwitch creates an OpenFlow 1.3 bridge with the switch's DPID.
func (n *Network) AddSwitch(ctx context.Context, name string, params topo.SwitchParams) (topo.Switch, error) {
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

	if err := n.ovs.VSwitch.AddBridge(name); err != nil {
		return nil, fmt.Errorf("add bridge %s: %w", name, err)
	}
	if err := n.ovs.VSwitch.Set.Bridge(name, ovs.BridgeOptions{
		Protocols: []string{ovs.ProtocolOpenFlow13},
	}); err != nil {
		return nil, fmt.Errorf("bridge %s protocols: %w", name, err)
	}
	if err := n.vsctl(ctx, "set", "bridge", name,
		"other-config:datapath-id="+dpid, "fail-mode=secure"); err != nil {
		return nil, fmt.Errorf("bridge %s datapath-id: %w", name, err)
	}
	if params.DPOpts != "" {
		n.log.WithField("switch", name).Debugf("ignoring datapath options %q", params.DPOpts)
	}

	sw := &Switch{
		node:   newNode(name, topo.SwitchPortBase),
		net:    n,
		params: params,
		dpid:   dpid,
	}
	n.switches[name] = sw
	n.switchOrder = append(n.switchOrder, name)
	n.log.WithField("switch", name).Debugf("bridge created, dpid %s", dpid)
	return sw, nil
}

// AddHost creates a named network namespace for the host.
func (n *Network) AddHost(ctx context.Context, name string, params topo.HostParams) (topo.Host, error) {
	if err := n.checkName(name); err != nil {
		return nil, err
	}
	if _, err := n.runner.Run(ctx, "ip netns add "+remote.Quote(name)); err != nil {
		return nil, fmt.Errorf("host %s: %w", name, err)
	}
	h := &Host{
		node:   newNode(name, topo.HostPortBase),
		params: params,
		nsPath: NetnsDir + "/" + name,
	}
	n.hosts[name] = h
	n.hostOrder = append(n.hostOrder, name)
	return h, nil
}

// AddLink creates a veth pair between a and b. Switch ends join the
// switch's bridge at their port number; host ends move into the host's
// namespace and get the host's address.
func (n *Network) AddLink(ctx context.Context, a, b topo.Node, params topo.LinkParams) (*topo.Link, error) {
	na, err := n.owner(a)
	if err != nil {
		return nil, err
	}
	nb, err := n.owner(b)
	if err != nil {
		return nil, err
	}
	i1, err := na.newIntf(a, "", params.Port1, "")
	if err != nil {
		return nil, err
	}
	i2, err := nb.newIntf(b, "", params.Port2, "")
	if err != nil {
		return nil, err
	}

	veth := &netlink.Veth{
		LinkAttrs: netlink.LinkAttrs{Name: i1.Name},
		PeerName:  i2.Name,
	}
	if err := netlink.LinkAdd(veth); err != nil {
		return nil, fmt.Errorf("veth %s/%s: %w", i1.Name, i2.Name, err)
	}
	for _, i := range []*topo.Intf{i1, i2} {
		if err := n.plug(ctx, i); err != nil {
			return nil, err
		}
	}

	l := topo.NewLink(i1, i2, params)
	n.links = append(n.links, l)
	return l, nil
}

func (n *Network) owner(nd topo.Node) (*node, error) {
	switch v := nd.(type) {
	case *Switch:
		if n.switches[v.name] == v {
			return &v.node, nil
		}
	case *Host:
		if n.hosts[v.name] == v {
			return &v.node, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", nd.Name(), util.ErrUnknownNode)
}

// plug wires one end of a fresh veth into its node.
func (n *Network) plug(ctx context.Context, i *topo.Intf) error {
	switch nd := i.Node.(type) {
	case *Switch:
		return nd.addPort(ctx, i)
	case *Host:
		return nd.adopt(i)
	}
	return fmt.Errorf("%s: %w", i.Name, util.ErrUnknownNode)
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

// Build brings up every host loopback.
func (n *Network) Build(_ context.Context) error {
	for _, name := range n.hostOrder {
		if err := n.hosts[name].loopbackUp(); err != nil {
			return err
		}
	}
	n.built = true
	n.log.Infof("built %d bridges, %d hosts, %d links",
		len(n.switchOrder), len(n.hostOrder), len(n.links))
	return nil
}

// Built reports whether Build has run.
func (n *Network) Built() bool { return n.built }

// Switch returns a switch by name.
func (n *Network) Switch(name string) (*Switch, bool) {
	s, ok := n.switches[name]
	return s, ok
}

// Host returns a host by name.
func (n *Network) Host(name string) (*Host, bool) {
	h, ok := n.hosts[name]
	return h, ok
}

// Destroy removes every bridge and namespace this network created.
// Veth pairs disappear with their namespaces and bridges. All errors are
// collected; teardown continues past failures.
func (n *Network) Destroy(ctx context.Context) error {
	var errs []string
	for _, name := range n.switchOrder {
		if err := n.ovs.VSwitch.DeleteBridge(name); err != nil {
			errs = append(errs, fmt.Sprintf("bridge %s: %v", name, err))
		}
	}
	for _, name := range n.hostOrder {
		if _, err := n.runner.Run(ctx, "ip netns del "+remote.Quote(name)); err != nil {
			errs = append(errs, fmt.Sprintf("netns %s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("destroy: %s", strings.Join(errs, "; "))
	}
	n.log.Infof("destroyed %d bridges, %d hosts", len(n.switchOrder), len(n.hostOrder))
	return nil
}
