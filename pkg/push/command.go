package push

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/remote"
	"github.com/newtron-network/cordlab/pkg/util"
)

// DefaultCommand is the controller's netcfg upload tool.
const DefaultCommand = "onos-netcfg"

// Uploader is implemented by runners that execute on another host and
// need files staged there first.
type Uploader interface {
	Upload(ctx context.Context, data []byte, path string) error
}

// CommandSink stages the document as a file and runs
// "<Command> <controller> <file>" through Runner.
type CommandSink struct {
	Runner  remote.Runner
	Command string
	Dir     string
}

// Push stages doc and runs the upload command, returning its output.
func (s *CommandSink) Push(ctx context.Context, controller string, doc *netcfg.Document) (string, error) {
	data, err := doc.Marshal()
	if err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fileName(controller))

	if up, ok := s.Runner.(Uploader); ok {
		if err := up.Upload(ctx, data, path); err != nil {
			return "", err
		}
	} else if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	cmd := s.Command
	if cmd == "" {
		cmd = DefaultCommand
	}
	line := cmd + " " + remote.QuoteArgs(controller, path)
	util.WithField("controller", controller).Debugf("push: %s", line)
	return s.Runner.Run(ctx, line)
}
