package metro

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/cordlab/pkg/fabric"
	"github.com/newtron-network/cordlab/pkg/optical"
	"github.com/newtron-network/cordlab/pkg/util"
)

// Cross-connect defaults.
const (
	DefaultCrossConnects = 10
	DefaultXCPortBase    = 2
	DefaultOchPortBase   = 10
	DefaultOFPort        = 6653
	XCSpeed              = 10000
	XCBandwidth          = "10"
)

// DomainConfig is the per-domain part of a deployment.
type DomainConfig struct {
	ID          int      `yaml:"id"`
	Controllers []string `yaml:"controllers"`
	VLANs       []int    `yaml:"vlans,omitempty"`
	Interfaces  []string `yaml:"interfaces,omitempty"`
}

// Config describes a metro deployment: the optical core, its CO fabrics
// and how they cross-connect.
type Config struct {
	OutputDir     string         `yaml:"output_dir,omitempty"`
	OpticalNodes  int            `yaml:"optical_nodes,omitempty"`
	Optical       DomainConfig   `yaml:"optical"`
	Fabrics       []DomainConfig `yaml:"fabrics"`
	Fabric        fabric.Options `yaml:"fabric,omitempty"`
	CrossConnects int            `yaml:"cross_connects,omitempty"`
	XCPortBase    int            `yaml:"xc_port_base,omitempty"`
	OchPortBase   int            `yaml:"och_port_base,omitempty"`
}

// MetroFabricOptions are the fabric defaults of a metro CO: two spines,
// three leaves, one host per leaf, first leaf bridged to the core.
func MetroFabricOptions() fabric.Options {
	return fabric.Options{Spines: 2, Leaves: 3, Fanout: 1, Tether: fabric.TetherBridge}
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.OpticalNodes == 0 {
		c.OpticalNodes = optical.DefaultNodes
	}
	d := MetroFabricOptions()
	if c.Fabric.Spines == 0 {
		c.Fabric.Spines = d.Spines
	}
	if c.Fabric.Leaves == 0 {
		c.Fabric.Leaves = d.Leaves
	}
	if c.Fabric.Fanout == 0 {
		c.Fabric.Fanout = d.Fanout
	}
	if c.Fabric.Tether == "" {
		c.Fabric.Tether = d.Tether
	}
	if c.CrossConnects == 0 {
		c.CrossConnects = DefaultCrossConnects
	}
	if c.XCPortBase == 0 {
		c.XCPortBase = DefaultXCPortBase
	}
	if c.OchPortBase == 0 {
		c.OchPortBase = DefaultOchPortBase
	}
}

// Validate checks a defaulted config.
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(len(c.Optical.Controllers) > 0, "optical domain needs at least one controller")
	v.Add(len(c.Fabrics) > 0, "at least one fabric domain is required")
	v.Add(c.Fabric.Tether != fabric.TetherNone, "metro fabrics need a tether")
	v.Add(c.CrossConnects > 0, "cross_connects must be positive")
	v.Add(c.OchPortBase+c.CrossConnects <= 100, "och ports must stay below 100")
	if err := c.Fabric.Validate(); err != nil {
		v.AddErrorf("fabric: %v", err)
	}

	seen := make(map[int]bool)
	for i, f := range c.Fabrics {
		if f.ID < 1 || f.ID > c.OpticalNodes {
			v.AddErrorf("fabric %d: id %d has no optical node (1..%d)", i, f.ID, c.OpticalNodes)
		}
		if seen[f.ID] {
			v.AddErrorf("fabric %d: duplicate id %d", i, f.ID)
		}
		seen[f.ID] = true
		v.Add(len(f.Controllers) > 0, fmt.Sprintf("fabric %d needs at least one controller", f.ID))
	}
	return v.Build()
}

// ParseControllerSets reads positional controller sets: the first for the
// optical core, then one per fabric, whose id is its position.
func ParseControllerSets(args []string) (*Config, error) {
	if len(args) < 2 {
		return nil, util.NewValidationError("need an optical controller set and at least one fabric controller set")
	}
	cfg := &Config{Optical: DomainConfig{ID: optical.DomainID, Controllers: util.SplitCommaSeparated(args[0])}}
	for i, set := range args[1:] {
		cfg.Fabrics = append(cfg.Fabrics, DomainConfig{ID: i + 1, Controllers: util.SplitCommaSeparated(set)})
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseCOSpec parses "did:ctrls:vlans[:ifs]", each list comma-separated.
func ParseCOSpec(spec string) (DomainConfig, error) {
	fields := strings.Split(spec, ":")
	if len(fields) < 3 {
		return DomainConfig{}, util.NewValidationError(
			fmt.Sprintf("%q: must specify at least a domain ID, controller, and a VLAN", spec))
	}
	did, err := strconv.Atoi(fields[0])
	if err != nil {
		return DomainConfig{}, util.NewValidationError(fmt.Sprintf("%q: domain ID must be an integer value", spec))
	}
	d := DomainConfig{ID: did, Controllers: util.SplitCommaSeparated(fields[1])}

	v := &util.ValidationBuilder{}
	v.Add(did > 0, fmt.Sprintf("%q: domain ID must be positive", spec))
	v.Add(len(d.Controllers) > 0, fmt.Sprintf("%q: at least one controller is required", spec))
	if d.VLANs, err = util.SplitCommaSeparatedInts(fields[2]); err != nil {
		v.AddErrorf("%q: vlans: %v", spec, err)
	}
	for _, vlan := range d.VLANs {
		v.Add(vlan >= 1 && vlan <= 4094, fmt.Sprintf("%q: vlan %d out of range", spec, vlan))
	}
	if len(fields) > 3 {
		d.Interfaces = util.SplitCommaSeparated(fields[3])
	}
	if err := v.Build(); err != nil {
		return DomainConfig{}, err
	}
	return d, nil
}

// ParseCOSpecs parses one spec per CO and rejects repeated domain ids.
func ParseCOSpecs(args []string) ([]DomainConfig, error) {
	if len(args) == 0 {
		return nil, util.NewValidationError("at least one CO configuration is required")
	}
	seen := make(map[int]bool)
	var out []DomainConfig
	for _, arg := range args {
		d, err := ParseCOSpec(arg)
		if err != nil {
			return nil, err
		}
		if seen[d.ID] {
			return nil, util.NewValidationError(fmt.Sprintf("domain %d configured twice", d.ID))
		}
		seen[d.ID] = true
		out = append(out, d)
	}
	return out, nil
}

// LoadConfig reads a YAML deployment file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deployment file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing deployment YAML: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating deployment: %w", err)
	}
	return &cfg, nil
}
