package metro

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/newtron-network/cordlab/pkg/fabric"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// DefaultCOID is the domain id of a standalone CO.
const DefaultCOID = 1

// COOptions are the fabric defaults of a standalone CO: hosts on every
// leaf plus a sanity host on the last one.
func COOptions() fabric.Options {
	return fabric.Options{Spines: 2, Leaves: 2, Fanout: 2, SanityHost: true}
}

// EdgeCOOptions are the fabric defaults of a CO that faces another CO
// through an edge host: the last leaf is the tether, the edge host hangs
// off the first leaf and router MACs are hex.
func EdgeCOOptions() fabric.Options {
	return fabric.Options{
		Spines:   2,
		Leaves:   2,
		Fanout:   1,
		Tether:   fabric.TetherLastLeaf,
		EdgeHost: true,
		MAC:      fabric.MACHex,
		DPOpts:   fabric.DefaultDPOpts + " --no-slicing",
	}
}

// RunCO builds a single CO controlled by every address in ctrls, writes
// its document to outputDir/co.json and starts it.
func RunCO(ctx context.Context, ctrls []string, opts fabric.Options, inj topo.Injector, outputDir string) (*fabric.Fabric, error) {
	if len(ctrls) == 0 {
		return nil, util.NewValidationError("at least one controller is required")
	}
	f := fabric.New(DefaultCOID, opts)
	if err := f.Build(); err != nil {
		return nil, err
	}
	for i, addr := range ctrls {
		f.AddController(fmt.Sprintf("c%d", i), topo.ControllerParams{Address: addr, Port: DefaultOFPort})
	}

	if err := f.Inject(ctx, inj); err != nil {
		return nil, err
	}
	if err := f.DumpCfg(filepath.Join(outputDir, "co.json")); err != nil {
		return nil, err
	}
	if err := inj.Build(ctx); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if err := f.Start(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// RunCOs builds one edge-facing CO per domain config, bootstraps their
// edge hosts and cross-connect devices, then starts them. Documents are
// written to outputDir/co<d>.json when outputDir is set.
func RunCOs(ctx context.Context, doms []DomainConfig, opts fabric.Options, inj topo.Injector, env fabric.BootstrapEnv, outputDir string) ([]*fabric.Fabric, error) {
	if len(doms) == 0 {
		return nil, util.NewValidationError("at least one CO configuration is required")
	}
	var (
		fabrics []*fabric.Fabric
		graphs  []*topo.Graph
	)
	for _, d := range doms {
		f := fabric.New(d.ID, opts)
		if err := f.Build(); err != nil {
			return nil, err
		}
		for i, addr := range d.Controllers {
			f.AddController(fmt.Sprintf("c%d%d", d.ID, i), topo.ControllerParams{Address: addr, Port: DefaultOFPort})
		}
		fabrics = append(fabrics, f)
		graphs = append(graphs, f.Graph)
	}
	if err := CheckUnique(graphs...); err != nil {
		return nil, err
	}

	for _, f := range fabrics {
		if err := f.Inject(ctx, inj); err != nil {
			return nil, err
		}
		if outputDir == "" {
			continue
		}
		if err := f.DumpCfg(filepath.Join(outputDir, fmt.Sprintf("co%d.json", f.ID()))); err != nil {
			return nil, err
		}
	}

	for i, f := range fabrics {
		if err := f.Bootstrap(ctx, env, doms[i].VLANs, doms[i].Interfaces); err != nil {
			return nil, err
		}
	}

	if err := inj.Build(ctx); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	for _, f := range fabrics {
		if err := f.Start(ctx); err != nil {
			return nil, err
		}
	}
	return fabrics, nil
}
