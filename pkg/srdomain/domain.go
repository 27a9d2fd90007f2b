// Package srdomain is a topology graph that also knows how to describe
// itself as a segment-routing network configuration.
package srdomain

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// Compiler fills a domain's document from its injected instances.
type Compiler interface {
	Compile(d *Domain) error
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(d *Domain) error

// Compile calls f(d).
func (f CompilerFunc) Compile(d *Domain) error { return f(d) }

// Option configures a Domain.
type Option func(*Domain)

// WithTetherBridge makes AddTether place a dedicated bridge in front of the
// tether leaf when a bridge name and DPID are supplied.
func WithTetherBridge(enabled bool) Option {
	return func(d *Domain) { d.tetherBridge = enabled }
}

// Domain is a segment-routed topology graph.
type Domain struct {
	*topo.Graph

	compiler     Compiler
	tetherBridge bool

	leaves []string
	tether string

	cfg   *netcfg.Document
	sw2id map[string]string

	log *logrus.Entry
}

// New returns an empty domain with id, compiled by c.
func New(id int, c Compiler, opts ...Option) *Domain {
	d := &Domain{
		Graph:    topo.New(id),
		compiler: c,
		cfg:      netcfg.New(),
		sw2id:    make(map[string]string),
		log:      util.WithDomain(id),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NoteLeaf marks name as a leaf and returns it. Repeated calls append again.
func (d *Domain) NoteLeaf(name string) string {
	d.leaves = append(d.leaves, name)
	return name
}

// Leaves returns leaf names in the order they were noted.
func (d *Domain) Leaves() []string {
	return append([]string(nil), d.leaves...)
}

// IsLeaf reports whether name was noted as a leaf.
func (d *Domain) IsLeaf(name string) bool {
	for _, l := range d.leaves {
		if l == name {
			return true
		}
	}
	return false
}

// Tether returns the switch designated as the domain's external attachment
// point, or "".
func (d *Domain) Tether() string { return d.tether }

// AddTether designates the tether for leaf sw. With bridging enabled and a
// bridge name and DPID given, a bridge is declared and linked to sw on its
// port 1, and the bridge becomes the tether. Otherwise sw is the tether.
// sw is always noted as a leaf.
func (d *Domain) AddTether(sw, bridge, bridgeDPID string) {
	if d.tetherBridge && bridge != "" && bridgeDPID != "" {
		d.AddSwitch(bridge, topo.KindTether, topo.SwitchParams{Class: "ovs", DPID: bridgeDPID})
		d.AddLink(bridge, sw, topo.LinkParams{Port1: 1})
		d.tether = bridge
	} else {
		d.tether = sw
	}
	d.NoteLeaf(sw)
}

// Config returns the current document.
func (d *Domain) Config() *netcfg.Document { return d.cfg }

// DeviceID returns the device id recorded for a switch by AddSwitchCfg.
func (d *Domain) DeviceID(sw string) (string, error) {
	id, ok := d.sw2id[sw]
	if !ok {
		return "", &topo.UnknownNodeError{Domain: d.ID(), Name: sw}
	}
	return id, nil
}

// AddSwitchCfg records the segment-routing config of an injected switch
// and returns its device id.
func (d *Domain) AddSwitchCfg(sw topo.Switch, sid, routerIP, routerMAC string, adjacencySIDs []netcfg.AdjacencySID) (string, error) {
	if sw.DPID() == "" {
		return "", fmt.Errorf("switch %s: %w", sw.Name(), util.ErrNotInjected)
	}
	if adjacencySIDs == nil {
		adjacencySIDs = []netcfg.AdjacencySID{}
	}
	did := netcfg.DeviceID(sw.DPID())
	edge := "false"
	if d.IsLeaf(sw.Name()) {
		edge = "true"
	}
	d.cfg.Devices[did] = netcfg.DeviceConfig{SegmentRouting: netcfg.SegmentRouting{
		Name:          sw.Name(),
		NodeSID:       sid,
		RouterIP:      routerIP,
		RouterMAC:     routerMAC,
		IsEdgeRouter:  edge,
		AdjacencySIDs: adjacencySIDs,
	}}
	d.sw2id[sw.Name()] = did
	return did, nil
}

// AddPortCfg opens an empty port record for intf on sw and returns its port id.
// The switch must already have a device record.
func (d *Domain) AddPortCfg(sw topo.Switch, intf *topo.Intf) (string, error) {
	did, err := d.DeviceID(sw.Name())
	if err != nil {
		return "", err
	}
	pid := netcfg.PortID(did, intf.Port)
	d.cfg.Ports[pid] = netcfg.PortConfig{Interfaces: []netcfg.Interface{}}
	return pid, nil
}

// IntfCfg appends an interface to a port record. Empty ips yields a bare
// VLAN record; an empty vlan means untagged.
func (d *Domain) IntfCfg(portID string, ips []string, vlan string) error {
	pc, ok := d.cfg.Ports[portID]
	if !ok {
		return fmt.Errorf("port %s: %w", portID, util.ErrNotFound)
	}
	if vlan == "" {
		vlan = netcfg.NoVLAN
	}
	ifc := netcfg.Interface{VLAN: vlan}
	if len(ips) > 0 {
		ifc.IPs = append([]string(nil), ips...)
	}
	pc.Interfaces = append(pc.Interfaces, ifc)
	d.cfg.Ports[portID] = pc
	return nil
}

// AddHostCfg records where host attaches to the fabric and returns its host id.
func (d *Domain) AddHostCfg(host topo.Host, vlan int) (string, error) {
	var attach *topo.Intf
	for _, intf := range host.Intfs() {
		if !intf.IsLoopback() {
			attach = intf
			break
		}
	}
	if attach == nil || attach.Link == nil {
		return "", &NoAttachmentError{Domain: d.ID(), Host: host.Name()}
	}
	remote := attach.Link.Peer(attach)
	did, err := d.DeviceID(remote.Node.Name())
	if err != nil {
		return "", fmt.Errorf("host %s: %w", host.Name(), err)
	}

	hid := netcfg.HostID(host.MAC(), vlan)
	basic := netcfg.HostBasic{Location: netcfg.PortID(did, remote.Port)}
	if host.IP() != "" {
		ip, _ := util.SplitIPMask(host.IP())
		basic.IPs = []string{ip}
	}
	d.cfg.Hosts[hid] = netcfg.HostConfig{Basic: basic}
	return hid, nil
}

// AddCrossConnect records that local (a port id in this domain) is
// cross-connected to remote.
func (d *Domain) AddCrossConnect(local, remote string) {
	if d.cfg.Links == nil {
		d.cfg.Links = make(map[string]netcfg.LinkConfig)
	}
	d.cfg.Links[local] = netcfg.LinkConfig{CrossConnect: netcfg.CrossConnect{Remote: remote}}
}

// Compile rebuilds the document from scratch with the domain's compiler.
func (d *Domain) Compile() (*netcfg.Document, error) {
	if !d.Injected() {
		return nil, fmt.Errorf("domain %d: %w", d.ID(), util.ErrNotInjected)
	}
	d.cfg = netcfg.New()
	d.sw2id = make(map[string]string)
	if d.compiler == nil {
		return d.cfg, nil
	}
	if err := d.compiler.Compile(d); err != nil {
		return nil, fmt.Errorf("compile domain %d: %w", d.ID(), err)
	}
	d.log.Debugf("compiled %d devices, %d ports, %d hosts",
		len(d.cfg.Devices), len(d.cfg.Ports), len(d.cfg.Hosts))
	return d.cfg, nil
}

// DumpCfg compiles the domain and writes the document to path.
func (d *Domain) DumpCfg(path string) error {
	if _, err := d.Compile(); err != nil {
		return err
	}
	return d.WriteCfg(path)
}

// WriteCfg writes the current document to path without recompiling.
func (d *Domain) WriteCfg(path string) error {
	if err := d.cfg.WriteFile(path); err != nil {
		return err
	}
	d.log.Infof("wrote %s", path)
	return nil
}
