// Package remote runs shell commands locally or on a remote host over SSH.
package remote

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/newtron-network/cordlab/pkg/util"
)

// Runner executes a shell command line and returns its combined output.
type Runner interface {
	Run(ctx context.Context, cmd string) (string, error)
}

// LocalRunner runs commands with sh -c on this host.
type LocalRunner struct{}

// Run executes cmd locally.
func (LocalRunner) Run(ctx context.Context, cmd string) (string, error) {
	util.Debugf("exec: %s", cmd)
	out, err := exec.CommandContext(ctx, "sh", "-c", cmd).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %w: %s", cmd, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Quote wraps s in single quotes, escaping any embedded single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// QuoteArgs joins args into a command line, quoting each.
func QuoteArgs(args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}
