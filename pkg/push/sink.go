// Package push delivers compiled network configuration documents to SDN
// controllers.
package push

import (
	"context"
	"strings"

	"github.com/newtron-network/cordlab/pkg/netcfg"
)

// Sink accepts a document for the controller at the given address and
// returns the controller's response text.
type Sink interface {
	Push(ctx context.Context, controller string, doc *netcfg.Document) (string, error)
}

// Clean reports whether a push response signals success: nothing but
// whitespace and the empty object marker "{}".
func Clean(out string) bool {
	return strings.Trim(strings.TrimSpace(out), "{}") == ""
}

// fileName is a filesystem-safe name for a controller's document.
func fileName(controller string) string {
	r := strings.NewReplacer(":", "_", "/", "_", " ", "_")
	return "netcfg-" + r.Replace(controller) + ".json"
}
