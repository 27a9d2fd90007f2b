package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cordlab/pkg/cli"
	"github.com/newtron-network/cordlab/pkg/settings"
	"github.com/newtron-network/cordlab/pkg/version"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persistent settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return showSettings()
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a value (empty value clears it)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Printf("%s %s saved\n", green("✓"), args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Reset all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg.Clear()
				return cfg.Save()
			},
		},
	)
	return cmd
}

func showSettings() error {
	fmt.Println(cli.Bold("Settings file:"), settings.DefaultSettingsPath())
	t := cli.NewTable("KEY", "VALUE")
	for _, k := range settings.Keys() {
		v, err := cfg.Get(k)
		if err != nil {
			return err
		}
		t.Row(k, maskSecret(k, v))
	}
	t.Flush()
	return nil
}

// maskSecret hides password values.
func maskSecret(key, value string) string {
	if value == "" || !strings.HasSuffix(key, "password") {
		return value
	}
	return "********"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("cordlab dev build (stamp version info with -ldflags)")
			} else {
				fmt.Printf("cordlab %s\n", version.Info())
			}
		},
	}
}
