package push

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/util"
)

// FileSink writes each pushed document to a file in Dir instead of
// contacting the controller.
type FileSink struct {
	Dir string
}

// Push writes netcfg-<controller>.json and reports success.
func (s *FileSink) Push(_ context.Context, controller string, doc *netcfg.Document) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, fileName(controller))
	if err := doc.WriteFile(path); err != nil {
		return "", err
	}
	util.WithField("controller", controller).Infof("netcfg written to %s", path)
	return "{}", nil
}
