package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cordlab/pkg/fabric"
	"github.com/newtron-network/cordlab/pkg/metro"
	"github.com/newtron-network/cordlab/pkg/util"
)

func newCOCmd() *cobra.Command {
	opts := metro.COOptions()
	var mac string

	cmd := &cobra.Command{
		Use:   "co <ctls>",
		Short: "Deploy a single CO fabric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := fabric.ParseMACStyle(mac)
			if err != nil {
				return err
			}
			opts.MAC = style

			dir, err := resolveOutputDir()
			if err != nil {
				return err
			}
			b, err := newBackend()
			if err != nil {
				return err
			}

			ctx := context.Background()
			f, err := metro.RunCO(ctx, util.SplitCommaSeparated(args[0]), opts, b.inj, dir)
			if err != nil {
				return err
			}
			fmt.Printf("%s CO %d up: %d switches, %d hosts\n",
				green("✓"), f.ID(), len(f.SwitchNames()), len(f.HostNames()))
			return hold(ctx, b)
		},
	}

	cmd.Flags().IntVar(&opts.Spines, "spines", opts.Spines, "number of spines")
	cmd.Flags().IntVar(&opts.Leaves, "leaves", opts.Leaves, "number of leaves")
	cmd.Flags().IntVar(&opts.Fanout, "fanout", opts.Fanout, "hosts per leaf")
	cmd.Flags().StringVar(&mac, "mac-style", "decimal", "router MAC style: decimal or hex")
	return cmd
}

func newCOsCmd() *cobra.Command {
	var writeCfg bool

	cmd := &cobra.Command{
		Use:   "cos <did:ctls:vlans[:ifs]> ...",
		Short: "Deploy edge-facing COs with VLAN edge hosts",
		Long: `Deploy one CO per argument. Each argument is
"<domain id>:<controllers>:<vlans>[:<interfaces>]", lists comma-separated.
The edge host of each CO gets one tagged interface per VLAN; the
interfaces are attached to the CO's tether leaf.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doms, err := metro.ParseCOSpecs(args)
			if err != nil {
				return err
			}
			dir := ""
			if writeCfg {
				if dir, err = resolveOutputDir(); err != nil {
					return err
				}
			}
			b, err := newBackend()
			if err != nil {
				return err
			}

			ctx := context.Background()
			env := fabric.BootstrapEnv{Provisioner: b.prov, Runner: b.runner}
			fabrics, err := metro.RunCOs(ctx, doms, metro.EdgeCOOptions(), b.inj, env, dir)
			if err != nil {
				return err
			}
			for _, f := range fabrics {
				fmt.Printf("%s CO %d up, tether %s\n", green("✓"), f.ID(), f.Tether())
			}
			return hold(ctx, b)
		},
	}

	cmd.Flags().BoolVar(&writeCfg, "write-cfg", false, "write co<d>.json for each CO")
	return cmd
}
