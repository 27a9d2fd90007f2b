package fabric

import (
	"context"
	"fmt"

	"github.com/newtron-network/cordlab/pkg/remote"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// Provisioner creates and configures host network devices outside the
// emulated topology.
type Provisioner interface {
	AddVethPair(ctx context.Context, name, peer string) error
	SetHardwareAddr(ctx context.Context, dev, mac string) error
	AddVLAN(ctx context.Context, dev string, vlan int) error
	SetUp(ctx context.Context, dev string) error
}

// BootstrapEnv carries what Bootstrap needs beyond the fabric itself.
// Runner is used to move devices into switches that cannot attach them.
type BootstrapEnv struct {
	Provisioner Provisioner
	Runner      remote.Runner
}

// Bootstrap does the post-injection, pre-start work of a CO with an edge
// host: one tagged sub-interface per VLAN on the edge host and on the
// cross-connect device, a veth pair between the cross-connect and the
// first leaf, and the external interfaces attached to the tether.
func (f *Fabric) Bootstrap(ctx context.Context, env BootstrapEnv, vlans []int, ifs []string) error {
	did := f.ID()
	log := util.WithDomain(did)
	if !f.opts.EdgeHost {
		return fmt.Errorf("domain %d: bootstrap needs an edge host", did)
	}
	if env.Provisioner == nil {
		return fmt.Errorf("domain %d: bootstrap needs a provisioner", did)
	}

	eeName := EdgeHostName(did)
	ee, ok := f.Host(eeName)
	if !ok {
		return fmt.Errorf("host %s: %w", eeName, util.ErrNotInjected)
	}
	vh, ok := ee.(topo.VLANCapable)
	if !ok {
		return fmt.Errorf("host %s cannot carry VLANs", eeName)
	}
	leafName := LeafName(did, 1)
	leaf, ok := f.Switch(leafName)
	if !ok {
		return fmt.Errorf("switch %s: %w", leafName, util.ErrNotInjected)
	}

	xc, leafEnd := XCDev(did), LeafXCDev(did)
	if err := env.Provisioner.AddVethPair(ctx, xc, leafEnd); err != nil {
		return err
	}
	if err := env.Provisioner.SetHardwareAddr(ctx, xc, LocalMAC("10", "01", did)); err != nil {
		return err
	}
	if err := env.Provisioner.SetHardwareAddr(ctx, leafEnd, LocalMAC("01", "01", did)); err != nil {
		return err
	}
	if err := env.Provisioner.SetUp(ctx, xc); err != nil {
		return err
	}
	if err := env.Provisioner.SetUp(ctx, leafEnd); err != nil {
		return err
	}

	for i, vlan := range vlans {
		cidr := fmt.Sprintf("10.0.%d.%d/24", did, i+1)
		if err := vh.AddVLAN(ctx, vlan, cidr); err != nil {
			return fmt.Errorf("host %s vlan %d: %w", eeName, vlan, err)
		}
		if err := env.Provisioner.AddVLAN(ctx, xc, vlan); err != nil {
			return err
		}
		log.Debugf("vlan %d on %s (%s) and %s", vlan, eeName, cidr, xc)
	}

	if err := AttachDev(ctx, leaf, leafEnd, env.Runner); err != nil {
		return err
	}

	tether, ok := f.Switch(f.Tether())
	if len(ifs) > 0 && !ok {
		return fmt.Errorf("tether %q: %w", f.Tether(), util.ErrNotInjected)
	}
	for _, dev := range ifs {
		if err := AttachDev(ctx, tether, dev, env.Runner); err != nil {
			return err
		}
	}
	return nil
}

// AttachDev adds an existing network device to sw as a new port. Switches
// that cannot attach devices themselves but live in their own namespace
// get the device moved there through r.
func AttachDev(ctx context.Context, sw topo.Switch, dev string, r remote.Runner) error {
	switch s := sw.(type) {
	case topo.Attachable:
		if _, err := s.Attach(ctx, dev); err != nil {
			return fmt.Errorf("attach %s to %s: %w", dev, sw.Name(), err)
		}
	case topo.Namespaced:
		if r == nil {
			return fmt.Errorf("attach %s to %s: %w", dev, sw.Name(), util.ErrNotAttachable)
		}
		cmd := fmt.Sprintf("ip link set %s netns %d", remote.Quote(dev), s.PID())
		if _, err := r.Run(ctx, cmd); err != nil {
			return fmt.Errorf("attach %s to %s: %w", dev, sw.Name(), err)
		}
	default:
		return fmt.Errorf("attach %s to %s: %w", dev, sw.Name(), util.ErrNotAttachable)
	}
	util.WithNode(sw.Name()).Infof("interface %s attached", dev)
	return nil
}
