package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cordlab/pkg/emu"
	"github.com/newtron-network/cordlab/pkg/metro"
	"github.com/newtron-network/cordlab/pkg/push"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <clab.yml> <optical-ctls> <fabric1-ctls> ...",
		Short: "Write a metro deployment as a containerlab topology",
		Long: `Build the metro deployment in memory, write its configuration documents
to the output directory and the emulated network as a containerlab file.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := metro.ParseControllerSets(args[1:])
			if err != nil {
				return err
			}
			if mc.OutputDir, err = resolveOutputDir(); err != nil {
				return err
			}

			n := emu.New()
			if _, err := metro.New(mc, n, &push.FileSink{Dir: mc.OutputDir}).Run(context.Background()); err != nil {
				return err
			}

			path := args[0]
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if err := n.WriteClab(name, path); err != nil {
				return err
			}
			fmt.Printf("%s wrote %s (%d switches, %d hosts)\n", green("✓"), path, len(n.Switches()), len(n.Hosts()))
			return nil
		},
	}
}
