package fabric

import (
	"fmt"

	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/srdomain"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// GatewayPrefixLen is the prefix length of leaf gateway interfaces.
const GatewayPrefixLen = 24

// Compiler is the leaf-gateway compile strategy. Switches are numbered from
// 1, leaves first in the order they were noted, then the remaining
// switches in declaration order; the number feeds node SID, router MAC
// and management address.
type Compiler struct {
	Gateways map[string]string
	MAC      MACStyle
}

var _ srdomain.Compiler = (*Compiler)(nil)

// Compile fills d's document.
func (c *Compiler) Compile(d *srdomain.Domain) error {
	did := d.ID()
	order, err := compileOrder(d)
	if err != nil {
		return err
	}

	for i, name := range order {
		idx := i + 1
		sw, ok := d.Switch(name)
		if !ok {
			return fmt.Errorf("switch %s: %w", name, util.ErrNotInjected)
		}
		sid := NodeSID(did, idx)
		mac := c.MAC.RouterMAC(did, idx)

		if !d.IsLeaf(name) {
			if _, err := d.AddSwitchCfg(sw, sid, MgmtIP(did, idx), mac, nil); err != nil {
				return err
			}
			continue
		}

		gw, ok := c.Gateways[name]
		if !ok {
			return fmt.Errorf("leaf %s: no gateway address", name)
		}
		if _, err := d.AddSwitchCfg(sw, sid, gw, mac, nil); err != nil {
			return err
		}
		for _, intf := range sw.Intfs() {
			if intf.IsLoopback() || intf.Link == nil || !facesEdge(d, intf.Link) {
				continue
			}
			pid, err := d.AddPortCfg(sw, intf)
			if err != nil {
				return err
			}
			if err := d.IntfCfg(pid, []string{util.WithPrefix(gw, GatewayPrefixLen)}, netcfg.NoVLAN); err != nil {
				return err
			}
		}
	}

	for _, h := range d.Hosts() {
		if _, err := d.AddHostCfg(h, -1); err != nil {
			return err
		}
	}
	return nil
}

// compileOrder lists each leaf once, then the other switches.
func compileOrder(d *srdomain.Domain) ([]string, error) {
	seen := make(map[string]bool)
	var order []string
	for _, leaf := range d.Leaves() {
		if seen[leaf] {
			continue
		}
		if k, ok := d.Kind(leaf); !ok || !k.IsSwitch() {
			return nil, &topo.UnknownNodeError{Domain: d.ID(), Name: leaf}
		}
		seen[leaf] = true
		order = append(order, leaf)
	}
	for _, name := range d.SwitchNames() {
		if !seen[name] {
			order = append(order, name)
		}
	}
	return order, nil
}

// facesEdge reports whether either end of l is a host or the tether bridge.
func facesEdge(d *srdomain.Domain, l *topo.Link) bool {
	for _, end := range []*topo.Intf{l.Intf1, l.Intf2} {
		if end == nil || end.Node == nil {
			continue
		}
		switch k, _ := d.Kind(end.Node.Name()); k {
		case topo.KindHost, topo.KindTether:
			return true
		}
	}
	return false
}
