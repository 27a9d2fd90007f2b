package emu

import (
	"context"
	"fmt"
	"strings"

	"github.com/newtron-network/cordlab/pkg/util"
)

// Provisioner records host device operations instead of performing them.
type Provisioner struct {
	Ops  []string
	devs map[string]bool
}

// NewProvisioner returns an empty recording provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{devs: make(map[string]bool)}
}

func (p *Provisioner) record(format string, args ...interface{}) {
	op := fmt.Sprintf(format, args...)
	p.Ops = append(p.Ops, op)
	util.WithComponent("emu").Debugf("provision: %s", op)
}

func (p *Provisioner) need(dev string) error {
	if !p.devs[dev] {
		return fmt.Errorf("device %s: %w", dev, util.ErrNotFound)
	}
	return nil
}

func (p *Provisioner) AddVethPair(_ context.Context, name, peer string) error {
	if p.devs[name] || p.devs[peer] {
		return fmt.Errorf("veth %s/%s: %w", name, peer, util.ErrDuplicateName)
	}
	p.devs[name], p.devs[peer] = true, true
	p.record("veth %s %s", name, peer)
	return nil
}

func (p *Provisioner) SetHardwareAddr(_ context.Context, dev, mac string) error {
	if err := p.need(dev); err != nil {
		return err
	}
	p.record("mac %s %s", dev, mac)
	return nil
}

func (p *Provisioner) AddVLAN(_ context.Context, dev string, vlan int) error {
	if err := p.need(dev); err != nil {
		return err
	}
	p.devs[fmt.Sprintf("%s.%d", dev, vlan)] = true
	p.record("vlan %s %d", dev, vlan)
	return nil
}

func (p *Provisioner) SetUp(_ context.Context, dev string) error {
	if err := p.need(dev); err != nil {
		return err
	}
	p.record("up %s", dev)
	return nil
}

// String lists the recorded operations, one per line.
func (p *Provisioner) String() string {
	return strings.Join(p.Ops, "\n")
}
