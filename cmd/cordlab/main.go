// cordlab: segment-routing CO fabrics and their metro optical core
//
// cordlab builds emulated CO spine-leaf fabrics, compiles a
// segment-routing network configuration for each and pushes it to the
// fabric's SDN controllers. In metro mode the fabrics are tethered to
// an optical ROADM ring through cross-connects.
//
// Usage:
//
//	cordlab metro <optical-ctls> <fabric1-ctls> [<fabric2-ctls> ...]
//	cordlab co <ctls>
//	cordlab cos <did:ctls:vlans[:ifs]> ...
//	cordlab export <clab.yml> <optical-ctls> <fabric1-ctls> ...
//	cordlab settings [show|set <key> <value>]
//	cordlab audit [--controller <addr>] [--failed]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cordlab/pkg/audit"
	"github.com/newtron-network/cordlab/pkg/cli"
	"github.com/newtron-network/cordlab/pkg/emu"
	"github.com/newtron-network/cordlab/pkg/fabric"
	"github.com/newtron-network/cordlab/pkg/push"
	"github.com/newtron-network/cordlab/pkg/remote"
	"github.com/newtron-network/cordlab/pkg/settings"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

var (
	verbose   bool
	outputDir string
	emulator  string
	sinkKind  string
	sshHost   string
	wait      bool

	cfg *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "cordlab",
	Short:             "Segment-routing CO fabrics with an optical metro core",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `cordlab emulates CO spine-leaf fabrics, compiles their segment-routing
network configuration and pushes it to each fabric's controllers.

  cordlab metro 10.0.0.1 10.0.1.1 10.0.2.1`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("info")
		}
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		cfg = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory (default: $"+settings.OutputEnv+", settings, or .)")
	rootCmd.PersistentFlags().StringVar(&emulator, "emulator", "", "network backend: memory or ovs")
	rootCmd.PersistentFlags().StringVar(&sinkKind, "sink", "", "configuration sink: file, rest, redis or command")
	rootCmd.PersistentFlags().StringVar(&sshHost, "ssh-host", "", "run the command sink on this host over SSH")
	rootCmd.PersistentFlags().BoolVar(&wait, "wait", false, "keep the network up until interrupted")

	rootCmd.AddCommand(
		newMetroCmd(),
		newCOCmd(),
		newCOsCmd(),
		newExportCmd(),
		newSettingsCmd(),
		newAuditCmd(),
		newVersionCmd(),
	)
}

// resolveOutputDir resolves the output directory: -o flag > $CORDLAB_OUTPUT > settings > ".".
func resolveOutputDir() (string, error) {
	dir := outputDir
	if dir == "" {
		dir = cfg.GetOutputDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("output directory: %w", err)
	}
	return dir, nil
}

// backend is a network injector with what the CO bootstrap needs.
type backend struct {
	inj     topo.Injector
	prov    fabric.Provisioner
	runner  remote.Runner
	destroy func(context.Context) error
}

func newBackend() (*backend, error) {
	kind := emulator
	if kind == "" {
		kind = cfg.GetEmulator()
	}
	switch kind {
	case "memory":
		return &backend{inj: emu.New(), prov: emu.NewProvisioner()}, nil
	case "ovs":
		return ovsBackend()
	}
	return nil, fmt.Errorf("unknown emulator %q (want memory or ovs)", kind)
}

// newSink builds the configured sink, wrapped in an audit recorder
// unless auditing is off.
func newSink(dir string) (push.Sink, func(), error) {
	kind := sinkKind
	if kind == "" {
		kind = cfg.GetSink()
	}
	sink, closeSink, err := baseSink(kind, dir)
	if err != nil || cfg.AuditLog == "none" {
		return sink, closeSink, err
	}
	log, err := audit.NewFileLogger(auditPath(), audit.RotationConfig{MaxSize: 10 << 20, MaxBackups: 5})
	if err != nil {
		closeSink()
		return nil, nil, err
	}
	audited := &push.AuditSink{Sink: sink, Log: log, User: os.Getenv("USER"), Kind: kind}
	return audited, func() { closeSink(); log.Close() }, nil
}

func auditPath() string {
	if cfg.AuditLog != "" {
		return cfg.AuditLog
	}
	return audit.DefaultPath()
}

func baseSink(kind, dir string) (push.Sink, func(), error) {
	noop := func() {}
	switch kind {
	case "file":
		return &push.FileSink{Dir: dir}, noop, nil
	case "rest":
		return push.NewRESTSink(cfg.RESTPort, cfg.RESTUser, cfg.RESTPassword, 10*time.Second), noop, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("redis sink needs redis_addr: run 'cordlab settings set redis_addr <host:port>'")
		}
		s := push.NewRedisSink(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return s, func() { s.Close() }, nil
	case "command":
		var r remote.Runner = remote.LocalRunner{}
		if sshHost != "" {
			r = &remote.SSHRunner{
				Host:     sshHost,
				User:     cfg.SSHUser,
				Password: cfg.SSHPassword,
				KeyFile:  cfg.SSHKeyFile,
			}
		}
		return &push.CommandSink{Runner: r, Dir: dir}, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q (want file, rest, redis or command)", kind)
}

// hold blocks until SIGINT or SIGTERM when --wait is set, then tears the
// backend down.
func hold(ctx context.Context, b *backend) error {
	if !wait {
		return nil
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Println(yellow("network is up; press Ctrl-C to tear it down"))
	<-ctx.Done()
	if b.destroy == nil {
		return nil
	}
	return b.destroy(context.Background())
}

// Color helpers, delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
