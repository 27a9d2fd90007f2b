package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cordlab/pkg/audit"
	"github.com/newtron-network/cordlab/pkg/cli"
)

func newAuditCmd() *cobra.Command {
	var filter audit.Filter
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recorded configuration pushes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AuditLog == "none" {
				return fmt.Errorf("auditing is disabled (audit_log is \"none\")")
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}
			log, err := audit.NewFileLogger(auditPath(), audit.RotationConfig{})
			if err != nil {
				return err
			}
			defer log.Close()

			events, err := log.Query(filter)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("no matching pushes")
				return nil
			}

			t := cli.NewTable("TIME", "USER", "CONTROLLER", "SINK", "DEVICES", "LINKS", "RESULT")
			for _, ev := range events {
				result := green("ok")
				if !ev.Success {
					result = red(ev.Error)
				}
				t.Row(ev.Timestamp.Format("2006-01-02 15:04:05"), ev.User, ev.Controller, ev.Sink,
					strconv.Itoa(ev.Devices), strconv.Itoa(ev.Links), result)
			}
			t.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Controller, "controller", "", "only pushes to this controller")
	cmd.Flags().BoolVar(&filter.FailureOnly, "failed", false, "only failed pushes")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "show at most this many (newest) pushes")
	cmd.Flags().DurationVar(&since, "since", 0, "only pushes within this long ago")
	return cmd
}
