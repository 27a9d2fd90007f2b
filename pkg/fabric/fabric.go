// Package fabric builds CO spine-leaf fabrics as segment-routed domains and
// compiles them with the leaf-gateway rule: a leaf port carries the leaf's
// gateway address iff it faces a host or the tether bridge.
package fabric

import (
	"fmt"

	"github.com/newtron-network/cordlab/pkg/srdomain"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// TetherMode selects how a fabric reaches outside its CO.
type TetherMode string

const (
	// TetherNone: no tether; every leaf carries hosts.
	TetherNone TetherMode = "none"
	// TetherBridge: the first leaf connects through a dedicated bridge
	// and carries no hosts.
	TetherBridge TetherMode = "bridge"
	// TetherLastLeaf: the last leaf is the tether; no fan-out hosts.
	TetherLastLeaf TetherMode = "last-leaf"
)

// Defaults.
const (
	DefaultSpines = 2
	DefaultLeaves = 2
	DefaultFanout = 2
	DefaultDPOpts = "--no-local-port"
	HostMTU       = 1490
)

// Options shape a fabric. Zero Spines, Leaves or Fanout take the defaults.
type Options struct {
	Spines     int        `yaml:"spines,omitempty"`
	Leaves     int        `yaml:"leaves,omitempty"`
	Fanout     int        `yaml:"fanout,omitempty"`
	Tether     TetherMode `yaml:"tether,omitempty"`
	SanityHost bool       `yaml:"sanity_host,omitempty"`
	EdgeHost   bool       `yaml:"edge_host,omitempty"`
	MAC        MACStyle   `yaml:"mac_style,omitempty"`
	DPOpts     string     `yaml:"dpopts,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Spines == 0 {
		o.Spines = DefaultSpines
	}
	if o.Leaves == 0 {
		o.Leaves = DefaultLeaves
	}
	if o.Fanout == 0 {
		o.Fanout = DefaultFanout
	}
	if o.Tether == "" {
		o.Tether = TetherNone
	}
	if o.DPOpts == "" {
		o.DPOpts = DefaultDPOpts
	}
	return o
}

// MaxDomainID bounds domain ids so they fit the top 16 bits of a DPID.
const MaxDomainID = 0xffff

// Validate checks the options after defaulting.
func (o Options) Validate() error {
	v := &util.ValidationBuilder{}
	o.validate(v, 0)
	return v.Build()
}

// ValidateDomain checks the options for a fabric of domain did. Router
// MACs must stay well formed: the decimal style has one digit for the
// domain id and one for the compile index, the hex style one octet each.
func (o Options) ValidateDomain(did int) error {
	v := &util.ValidationBuilder{}
	v.Add(did >= 1 && did <= MaxDomainID, fmt.Sprintf("domain ID must be between 1 and %d, got %d", MaxDomainID, did))
	o.validate(v, did)
	return v.Build()
}

// Switches is the number of switches a fabric built with o declares.
func (o Options) Switches() int {
	o = o.withDefaults()
	n := o.Spines + o.Leaves
	if o.Tether == TetherBridge {
		n++
	}
	return n
}

func (o Options) validate(v *util.ValidationBuilder, did int) {
	o = o.withDefaults()
	v.Add(o.Spines >= 1 && o.Spines <= 9, fmt.Sprintf("spines must be between 1 and 9, got %d", o.Spines))
	v.Add(o.Leaves >= 1 && o.Leaves <= 9, fmt.Sprintf("leaves must be between 1 and 9, got %d", o.Leaves))
	v.Add(o.Fanout >= 1 && o.Fanout <= 126, fmt.Sprintf("fanout must be between 1 and 126, got %d", o.Fanout))
	switch o.Tether {
	case TetherNone, TetherLastLeaf:
	case TetherBridge:
		v.Add(o.Leaves >= 2, "bridge tethering needs at least 2 leaves")
	default:
		v.AddErrorf("unknown tether mode %q", o.Tether)
	}
	switch o.MAC {
	case MACDecimal:
		v.Add(o.Switches() <= 9, fmt.Sprintf("decimal MAC style allows at most 9 switches, got %d (use hex)", o.Switches()))
		v.Add(did <= 9, fmt.Sprintf("decimal MAC style allows domain IDs up to 9, got %d (use hex)", did))
	case MACHex:
		v.Add(did <= 0xff, fmt.Sprintf("hex MAC style allows domain IDs up to 255, got %d", did))
	}
}

// Fabric is a CO spine-leaf domain.
type Fabric struct {
	*srdomain.Domain

	opts     Options
	gateways map[string]string
	spines   []string
	leaves   []string
	built    bool
}

// New returns an unbuilt fabric for domain did.
func New(did int, opts Options) *Fabric {
	opts = opts.withDefaults()
	f := &Fabric{opts: opts, gateways: make(map[string]string)}
	f.Domain = srdomain.New(did, &Compiler{Gateways: f.gateways, MAC: opts.MAC},
		srdomain.WithTetherBridge(opts.Tether == TetherBridge))
	return f
}

// Options returns the effective options.
func (f *Fabric) Options() Options { return f.opts }

// Gateway returns the gateway address assigned to a leaf.
func (f *Fabric) Gateway(leaf string) (string, bool) {
	gw, ok := f.gateways[leaf]
	return gw, ok
}

// SpineNames returns the spines in creation order.
func (f *Fabric) SpineNames() []string { return append([]string(nil), f.spines...) }

// LeafNames returns the leaves in creation order.
func (f *Fabric) LeafNames() []string { return append([]string(nil), f.leaves...) }

// Build declares the fabric: spines, leaves with their hosts, the tether,
// a full spine-leaf mesh and, if requested, the edge host.
func (f *Fabric) Build() error {
	if f.built {
		return fmt.Errorf("domain %d already built", f.ID())
	}
	if err := f.opts.ValidateDomain(f.ID()); err != nil {
		return err
	}
	did, o := f.ID(), f.opts

	for i := 1; i <= o.Spines; i++ {
		f.spines = append(f.spines, f.AddSwitch(SpineName(did, i), topo.KindSpine, f.switchParams(SpineDPID(did, i))))
	}

	switch o.Tether {
	case TetherBridge:
		leaf := f.addLeaf(1, false)
		f.AddTether(leaf, TetherName(did), TetherDPID(did))
		for i := 2; i <= o.Leaves; i++ {
			f.addLeaf(i, true)
		}
	case TetherLastLeaf:
		for i := 1; i <= o.Leaves; i++ {
			f.addLeaf(i, false)
		}
		f.AddTether(f.leaves[len(f.leaves)-1], "", "")
	default:
		for i := 1; i <= o.Leaves; i++ {
			f.addLeaf(i, true)
		}
	}

	if o.SanityHost {
		last := len(f.leaves)
		f.addHost(last, 2*o.Fanout+1)
	}

	for _, spine := range f.spines {
		for _, leaf := range f.leaves {
			f.AddLink(spine, leaf, topo.LinkParams{})
		}
	}

	if o.EdgeHost {
		ee := f.AddHost(EdgeHostName(did), topo.HostParams{Class: "vlan", MAC: LocalMAC("11", "11", did)})
		f.AddLink(ee, LeafName(did, 1), topo.LinkParams{})
	}

	f.built = true
	util.WithDomain(did).Infof("built fabric: %d spines, %d leaves, %d hosts, tether %q",
		len(f.spines), len(f.leaves), len(f.HostNames()), f.Tether())
	return nil
}

func (f *Fabric) switchParams(dpid string) topo.SwitchParams {
	return topo.SwitchParams{Class: "user", DPID: dpid, DPOpts: f.opts.DPOpts}
}

// addLeaf declares leaf ordinal i with its gateway and, when withHosts is
// set, its fan-out hosts.
func (f *Fabric) addLeaf(i int, withHosts bool) string {
	did := f.ID()
	leaf := f.AddSwitch(LeafName(did, i), topo.KindLeaf, f.switchParams(LeafDPID(did, i)))
	f.gateways[leaf] = Gateway(did, i)
	f.leaves = append(f.leaves, leaf)
	if f.opts.Tether != TetherBridge || i != 1 {
		f.NoteLeaf(leaf)
	}
	if withHosts {
		for h := 1; h <= f.opts.Fanout; h++ {
			f.addHost(i, f.opts.Fanout+h)
		}
	}
	return leaf
}

// addHost attaches host number h to the leaf with the given ordinal.
func (f *Fabric) addHost(ordinal, h int) string {
	did := f.ID()
	leaf := f.leaves[ordinal-1]
	host := f.AddHost(HostName(did, ordinal-1, h), topo.HostParams{
		Class:   "ip",
		IP:      HostIP(did, ordinal, h),
		Gateway: f.gateways[leaf],
		MTU:     HostMTU,
	})
	f.AddLink(host, leaf, topo.LinkParams{})
	return host
}
