// Package metro orchestrates multi-domain deployments: an optical core
// with CO fabrics cross-connected into it, and standalone COs.
package metro

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/cordlab/pkg/fabric"
	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/optical"
	"github.com/newtron-network/cordlab/pkg/push"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// Result summarizes a metro run.
type Result struct {
	ConfigFiles   []string
	TopologyFiles []string
	Pushed        int
	Warnings      []string
}

// Orchestrator builds, injects, compiles, cross-connects, starts and
// pushes a metro deployment.
type Orchestrator struct {
	cfg  *Config
	inj  topo.Injector
	sink push.Sink

	optical *optical.Domain
	fabrics []*fabric.Fabric

	log *logrus.Entry
}

// New returns an orchestrator for cfg. cfg is defaulted in place.
func New(cfg *Config, inj topo.Injector, sink push.Sink) *Orchestrator {
	cfg.ApplyDefaults()
	return &Orchestrator{
		cfg:  cfg,
		inj:  inj,
		sink: sink,
		log:  util.WithComponent("metro"),
	}
}

// Optical returns the optical core once Run has built it.
func (o *Orchestrator) Optical() *optical.Domain { return o.optical }

// Fabrics returns the CO fabrics once Run has built them.
func (o *Orchestrator) Fabrics() []*fabric.Fabric { return o.fabrics }

// Run executes the whole deployment. Push failures are reported as
// warnings in the result, not as errors.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}

	if err := o.build(); err != nil {
		return nil, err
	}
	graphs := []*topo.Graph{o.optical.Graph}
	for _, f := range o.fabrics {
		graphs = append(graphs, f.Graph)
	}
	if err := CheckUnique(graphs...); err != nil {
		return nil, fmt.Errorf("metro: %w", err)
	}

	for _, g := range graphs {
		if err := g.Inject(ctx, o.inj); err != nil {
			return nil, fmt.Errorf("metro: domain %d: %w", g.ID(), err)
		}
	}

	o.log.Info("generating routing configuration files for COs")
	for _, f := range o.fabrics {
		path := filepath.Join(o.cfg.OutputDir, fmt.Sprintf("domain%d-cfg.json", f.ID()))
		if err := f.DumpCfg(path); err != nil {
			return nil, fmt.Errorf("metro: %w", err)
		}
		res.ConfigFiles = append(res.ConfigFiles, path)
	}

	for _, f := range o.fabrics {
		if err := o.crossConnect(ctx, f); err != nil {
			return nil, fmt.Errorf("metro: %w", err)
		}
	}

	if err := o.inj.Build(ctx); err != nil {
		return nil, fmt.Errorf("metro: build: %w", err)
	}
	for _, g := range graphs {
		if err := g.Start(ctx); err != nil {
			return nil, fmt.Errorf("metro: %w", err)
		}
	}

	for _, f := range o.fabrics {
		path := filepath.Join(o.cfg.OutputDir, fmt.Sprintf("topology%d.json", f.ID()))
		if err := f.WriteCfg(path); err != nil {
			return nil, fmt.Errorf("metro: %w", err)
		}
		res.TopologyFiles = append(res.TopologyFiles, path)

		if w := o.push(ctx, f); w != "" {
			res.Warnings = append(res.Warnings, w)
		} else {
			res.Pushed++
		}
	}
	return res, nil
}

func (o *Orchestrator) build() error {
	o.optical = optical.New(o.cfg.OpticalNodes)
	if err := o.optical.Build(); err != nil {
		return fmt.Errorf("metro: %w", err)
	}
	addControllers(o.optical.Graph, o.cfg.Optical.Controllers)

	for _, dc := range o.cfg.Fabrics {
		f := fabric.New(dc.ID, o.cfg.Fabric)
		if err := f.Build(); err != nil {
			return fmt.Errorf("metro: %w", err)
		}
		addControllers(f.Graph, dc.Controllers)
		o.fabrics = append(o.fabrics, f)
	}
	return nil
}

// crossConnect links a fabric's tether to its optical node and records
// each port pair in the fabric's document.
func (o *Orchestrator) crossConnect(ctx context.Context, f *fabric.Fabric) error {
	tether, ok := f.Switch(f.Tether())
	if !ok {
		return fmt.Errorf("domain %d tether %q: %w", f.ID(), f.Tether(), util.ErrNotInjected)
	}
	oeName := optical.NodeName(f.ID())
	oe, ok := o.optical.Switch(oeName)
	if !ok {
		return &topo.UnknownNodeError{Domain: optical.DomainID, Name: oeName}
	}

	tetherID := netcfg.DeviceID(tether.DPID())
	oeID := netcfg.DeviceID(oe.DPID())
	for j := 0; j < o.cfg.CrossConnects; j++ {
		xc, och := o.cfg.XCPortBase+j, o.cfg.OchPortBase+j
		_, err := o.inj.AddLink(ctx, tether, oe, topo.LinkParams{
			Port1: xc,
			Port2: och,
			Speed: XCSpeed,
			Class: "linc",
			Annotations: map[string]string{
				"bandwidth": XCBandwidth,
				"durable":   "true",
			},
		})
		if err != nil {
			return fmt.Errorf("cross-connect %s/%d-%s/%d: %w", tether.Name(), xc, oeName, och, err)
		}
		f.AddCrossConnect(netcfg.PortID(tetherID, xc), netcfg.PortID(oeID, och))
	}
	util.WithDomain(f.ID()).Infof("%d cross-connects %s <-> %s", o.cfg.CrossConnects, tether.Name(), oeName)
	return nil
}

// push sends a fabric's document to its first controller. It returns a
// warning message, or "" on success.
func (o *Orchestrator) push(ctx context.Context, f *fabric.Fabric) string {
	ctrls := f.ControllerNames()
	if len(ctrls) == 0 || o.sink == nil {
		return fmt.Sprintf("domain %d: nowhere to push configuration", f.ID())
	}
	params, ok := f.ControllerParams(ctrls[0])
	if !ok {
		return fmt.Sprintf("domain %d: controller %s not declared", f.ID(), ctrls[0])
	}
	log := o.log.WithFields(logrus.Fields{"domain": f.ID(), "controller": params.Address})
	log.Infof("pushing topology to controller")

	out, err := o.sink.Push(ctx, params.Address, f.Config())
	switch {
	case err != nil:
		msg := fmt.Sprintf("could not push topology file to %s: %v", params.Address, err)
		log.Warn(msg)
		return msg
	case !push.Clean(out):
		msg := fmt.Sprintf("could not push topology file to %s: %s", params.Address, out)
		log.Warn(msg)
		return msg
	}
	return ""
}

// addControllers registers remote controllers c<d><j> for every address.
func addControllers(g *topo.Graph, addrs []string) {
	for j, addr := range addrs {
		g.AddController(fmt.Sprintf("c%d%d", g.ID(), j), topo.ControllerParams{Address: addr, Port: DefaultOFPort})
	}
}

// CheckUnique rejects switch or host names declared by more than one
// domain, and switches that would get the same datapath id. Switches without an explicit DPID are checked against the
// id an injector derives from their name.
func CheckUnique(graphs ...*topo.Graph) error {
	owners := make(map[string][]int)
	for _, g := range graphs {
		for _, name := range append(g.SwitchNames(), g.HostNames()...) {
			owners[name] = append(owners[name], g.ID())
		}
	}
	var dups []string
	for name, ids := range owners {
		if len(ids) > 1 {
			dups = append(dups, name)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return &util.DuplicateNameError{Name: dups[0], Domains: owners[dups[0]]}
	}
	return checkDPIDs(graphs)
}

func checkDPIDs(graphs []*topo.Graph) error {
	type owner struct {
		sw  string
		did int
	}
	owners := make(map[string][]owner)
	for _, g := range graphs {
		for _, name := range g.SwitchNames() {
			p, _ := g.SwitchParams(name)
			dpid := p.DPID
			if dpid == "" {
				var err error
				if dpid, err = topo.DefaultDPID(name); err != nil {
					continue
				}
			}
			id := netcfg.DeviceID(dpid)
			owners[id] = append(owners[id], owner{name, g.ID()})
		}
	}
	var dups []string
	for id, list := range owners {
		if len(list) > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	e := &util.DuplicateDPIDError{DPID: strings.TrimPrefix(dups[0], netcfg.DeviceScheme+":")}
	for _, o := range owners[dups[0]] {
		e.Switches = append(e.Switches, o.sw)
		e.Domains = append(e.Domains, o.did)
	}
	return e
}
