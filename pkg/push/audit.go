package push

import (
	"context"
	"fmt"
	"time"

	"github.com/newtron-network/cordlab/pkg/audit"
	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/util"
)

// AuditSink records every push made through Sink in an audit log. A
// failure to record is logged, never returned.
type AuditSink struct {
	Sink Sink
	Log  audit.Logger
	User string
	Kind string
}

// Push forwards to the wrapped sink and records the outcome.
func (s *AuditSink) Push(ctx context.Context, controller string, doc *netcfg.Document) (string, error) {
	start := time.Now()
	out, err := s.Sink.Push(ctx, controller, doc)

	ev := audit.NewEvent(s.User, controller, audit.OpPush).
		WithSink(s.Kind).
		WithCounts(len(doc.Devices), len(doc.Ports), len(doc.Hosts), len(doc.Links)).
		WithDuration(time.Since(start))
	switch {
	case err != nil:
		ev.WithError(err)
	case !Clean(out):
		ev.WithError(fmt.Errorf("controller replied: %s", out))
	default:
		ev.WithSuccess()
	}
	if lerr := s.Log.Log(ev); lerr != nil {
		util.Warnf("audit: recording push to %s: %v", controller, lerr)
	}
	return out, err
}
