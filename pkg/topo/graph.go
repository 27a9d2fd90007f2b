package topo

import (
	"context"
	"fmt"

	"github.com/newtron-network/cordlab/pkg/util"
)

// LinkKey identifies a declared link by its endpoint names, in declaration order.
type LinkKey struct {
	A, B string
}

// LinkSpec is a declared link.
type LinkSpec struct {
	LinkKey
	Params LinkParams
}

// Graph records declarations in order and, once injected, the instances
// the injector returned for them.
type Graph struct {
	id int

	switchOrder  []string
	switchKinds  map[string]Kind
	switchParams map[string]SwitchParams
	hostOrder    []string
	hostParams   map[string]HostParams
	linkOrder    []LinkKey
	linkParams   map[LinkKey]LinkParams
	ctrlOrder    []string
	ctrlParams   map[string]ControllerParams

	switches    map[string]Switch
	hosts       map[string]Host
	links       map[LinkKey]*Link
	controllers map[string]Controller
	injected    bool
}

// New returns an empty graph for domain id.
func New(id int) *Graph {
	return &Graph{
		id:           id,
		switchKinds:  make(map[string]Kind),
		switchParams: make(map[string]SwitchParams),
		hostParams:   make(map[string]HostParams),
		linkParams:   make(map[LinkKey]LinkParams),
		ctrlParams:   make(map[string]ControllerParams),
		switches:     make(map[string]Switch),
		hosts:        make(map[string]Host),
		links:        make(map[LinkKey]*Link),
		controllers:  make(map[string]Controller),
	}
}

// ID returns the domain id.
func (g *Graph) ID() int { return g.id }

// AddSwitch declares a switch. Re-declaring a name replaces its kind and
// params and keeps its original position.
func (g *Graph) AddSwitch(name string, kind Kind, params SwitchParams) string {
	if !kind.IsSwitch() {
		kind = KindSwitch
	}
	if _, ok := g.switchParams[name]; !ok {
		g.switchOrder = append(g.switchOrder, name)
	}
	g.switchKinds[name] = kind
	g.switchParams[name] = params
	return name
}

// AddHost declares a host.
func (g *Graph) AddHost(name string, params HostParams) string {
	if _, ok := g.hostParams[name]; !ok {
		g.hostOrder = append(g.hostOrder, name)
	}
	g.hostParams[name] = params
	return name
}

// AddLink declares a link between two named nodes. Endpoints are only
// resolved at injection.
func (g *Graph) AddLink(a, b string, params LinkParams) LinkKey {
	key := LinkKey{A: a, B: b}
	if _, ok := g.linkParams[key]; !ok {
		g.linkOrder = append(g.linkOrder, key)
	}
	g.linkParams[key] = params
	return key
}

// AddController declares a controller.
func (g *Graph) AddController(name string, params ControllerParams) string {
	if _, ok := g.ctrlParams[name]; !ok {
		g.ctrlOrder = append(g.ctrlOrder, name)
	}
	g.ctrlParams[name] = params
	return name
}

// Kind returns the declared kind of a switch or host.
func (g *Graph) Kind(name string) (Kind, bool) {
	if k, ok := g.switchKinds[name]; ok {
		return k, true
	}
	if _, ok := g.hostParams[name]; ok {
		return KindHost, true
	}
	return "", false
}

// SwitchNames returns declared switch names in declaration order.
func (g *Graph) SwitchNames() []string { return append([]string(nil), g.switchOrder...) }

// HostNames returns declared host names in declaration order.
func (g *Graph) HostNames() []string { return append([]string(nil), g.hostOrder...) }

// ControllerNames returns declared controller names in declaration order.
func (g *Graph) ControllerNames() []string { return append([]string(nil), g.ctrlOrder...) }

// SwitchParams returns the params of a declared switch.
func (g *Graph) SwitchParams(name string) (SwitchParams, bool) {
	p, ok := g.switchParams[name]
	return p, ok
}

// HostParams returns the params of a declared host.
func (g *Graph) HostParams(name string) (HostParams, bool) {
	p, ok := g.hostParams[name]
	return p, ok
}

// ControllerParams returns the params of a declared controller.
func (g *Graph) ControllerParams(name string) (ControllerParams, bool) {
	p, ok := g.ctrlParams[name]
	return p, ok
}

// LinkSpecs returns declared links in declaration order.
func (g *Graph) LinkSpecs() []LinkSpec {
	specs := make([]LinkSpec, 0, len(g.linkOrder))
	for _, key := range g.linkOrder {
		specs = append(specs, LinkSpec{LinkKey: key, Params: g.linkParams[key]})
	}
	return specs
}

// Inject materializes every declaration through inj: switches, hosts,
// links, then controllers, each in declaration order.
func (g *Graph) Inject(ctx context.Context, inj Injector) error {
	log := util.WithDomain(g.id)

	for _, name := range g.switchOrder {
		sw, err := inj.AddSwitch(ctx, name, g.switchParams[name])
		if err != nil {
			return fmt.Errorf("inject switch %s: %w", name, err)
		}
		g.switches[name] = sw
	}
	for _, name := range g.hostOrder {
		h, err := inj.AddHost(ctx, name, g.hostParams[name])
		if err != nil {
			return fmt.Errorf("inject host %s: %w", name, err)
		}
		g.hosts[name] = h
	}
	for _, key := range g.linkOrder {
		a, err := g.node(key.A)
		if err != nil {
			return fmt.Errorf("inject link %s-%s: %w", key.A, key.B, err)
		}
		b, err := g.node(key.B)
		if err != nil {
			return fmt.Errorf("inject link %s-%s: %w", key.A, key.B, err)
		}
		l, err := inj.AddLink(ctx, a, b, g.linkParams[key])
		if err != nil {
			return fmt.Errorf("inject link %s-%s: %w", key.A, key.B, err)
		}
		g.links[key] = l
	}
	for _, name := range g.ctrlOrder {
		c, err := inj.AddController(ctx, name, g.ctrlParams[name])
		if err != nil {
			return fmt.Errorf("inject controller %s: %w", name, err)
		}
		g.controllers[name] = c
	}

	g.injected = true
	log.Debugf("injected %d switches, %d hosts, %d links, %d controllers",
		len(g.switchOrder), len(g.hostOrder), len(g.linkOrder), len(g.ctrlOrder))
	return nil
}

// node resolves a link endpoint, switches first.
func (g *Graph) node(name string) (Node, error) {
	if sw, ok := g.switches[name]; ok {
		return sw, nil
	}
	if h, ok := g.hosts[name]; ok {
		return h, nil
	}
	return nil, &UnknownNodeError{Domain: g.id, Name: name}
}

// Injected reports whether Inject has completed.
func (g *Graph) Injected() bool { return g.injected }

// Start starts every controller, then every switch against the full
// controller set.
func (g *Graph) Start(ctx context.Context) error {
	if !g.injected {
		return fmt.Errorf("domain %d: %w", g.id, util.ErrNotInjected)
	}
	ctrls := g.Controllers()
	for _, c := range ctrls {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start controller %s: %w", c.Name(), err)
		}
	}
	for _, sw := range g.Switches() {
		if err := sw.Start(ctx, ctrls); err != nil {
			return fmt.Errorf("start switch %s: %w", sw.Name(), err)
		}
	}
	util.WithDomain(g.id).Infof("started %d switches with %d controllers", len(g.switchOrder), len(ctrls))
	return nil
}

// Switch returns the injected instance of a switch.
func (g *Graph) Switch(name string) (Switch, bool) {
	sw, ok := g.switches[name]
	return sw, ok
}

// Host returns the injected instance of a host.
func (g *Graph) Host(name string) (Host, bool) {
	h, ok := g.hosts[name]
	return h, ok
}

// Controller returns the injected instance of a controller.
func (g *Graph) Controller(name string) (Controller, bool) {
	c, ok := g.controllers[name]
	return c, ok
}

// Link returns the injected instance of a declared link.
func (g *Graph) Link(key LinkKey) (*Link, bool) {
	l, ok := g.links[key]
	return l, ok
}

// Switches returns injected switches in declaration order.
func (g *Graph) Switches() []Switch {
	out := make([]Switch, 0, len(g.switches))
	for _, name := range g.switchOrder {
		if sw, ok := g.switches[name]; ok {
			out = append(out, sw)
		}
	}
	return out
}

// Hosts returns injected hosts in declaration order.
func (g *Graph) Hosts() []Host {
	out := make([]Host, 0, len(g.hosts))
	for _, name := range g.hostOrder {
		if h, ok := g.hosts[name]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Controllers returns injected controllers in declaration order.
func (g *Graph) Controllers() []Controller {
	out := make([]Controller, 0, len(g.controllers))
	for _, name := range g.ctrlOrder {
		if c, ok := g.controllers[name]; ok {
			out = append(out, c)
		}
	}
	return out
}
