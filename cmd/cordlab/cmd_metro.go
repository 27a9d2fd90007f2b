package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cordlab/pkg/cli"
	"github.com/newtron-network/cordlab/pkg/metro"
)

func newMetroCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "metro [<optical-ctls> <fabric1-ctls> ...]",
		Short: "Deploy CO fabrics cross-connected through an optical core",
		Long: `Deploy an optical ROADM ring and one CO fabric per controller set.

Each argument is a comma-separated controller list; the first is for the
optical core, the rest for fabrics 1, 2, ... A YAML deployment file
given with --config replaces the arguments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := metroConfig(configPath, args)
			if err != nil {
				return err
			}
			if mc.OutputDir == "" {
				if mc.OutputDir, err = resolveOutputDir(); err != nil {
					return err
				}
			}

			b, err := newBackend()
			if err != nil {
				return err
			}
			sink, closeSink, err := newSink(mc.OutputDir)
			if err != nil {
				return err
			}
			defer closeSink()

			ctx := context.Background()
			res, err := metro.New(mc, b.inj, sink).Run(ctx)
			if err != nil {
				return err
			}
			printResult(res)
			return hold(ctx, b)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML deployment file")
	return cmd
}

func metroConfig(path string, args []string) (*metro.Config, error) {
	if path != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--config and controller arguments are mutually exclusive")
		}
		return metro.LoadConfig(path)
	}
	return metro.ParseControllerSets(args)
}

func printResult(res *metro.Result) {
	t := cli.NewTable("DOMAIN", "CONFIG", "TOPOLOGY")
	for i := range res.ConfigFiles {
		topo := ""
		if i < len(res.TopologyFiles) {
			topo = filepath.Base(res.TopologyFiles[i])
		}
		t.Row(strconv.Itoa(i+1), filepath.Base(res.ConfigFiles[i]), topo)
	}
	t.Flush()

	for _, w := range res.Warnings {
		fmt.Printf("%s %s\n", yellow("!"), w)
	}
	fmt.Printf("%s %d of %d fabrics configured\n", green("✓"), res.Pushed, len(res.ConfigFiles))
}
