//go:build integration && linux

package ovsnet

import (
	"testing"

	"github.com/newtron-network/cordlab/internal/testutil"
	"github.com/newtron-network/cordlab/pkg/fabric"
)

func TestInjectFabric(t *testing.T) {
	testutil.SkipUnlessRoot(t)
	ctx := testutil.Context(t)

	n := New()
	t.Cleanup(func() {
		if err := n.Destroy(ctx); err != nil {
			t.Errorf("Destroy: %v", err)
		}
	})

	f := fabric.New(9, fabric.Options{Spines: 1, Leaves: 2, Fanout: 1})
	if err := f.Build(); err != nil {
		t.Fatal(err)
	}
	if err := f.Inject(ctx, n); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if err := n.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}

	doc, err := f.Compile()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Devices) != 3 || len(doc.Hosts) != 2 {
		t.Errorf("compiled %d devices, %d hosts", len(doc.Devices), len(doc.Hosts))
	}
	h, _ := n.Host("h902")
	if h.MAC() == "" {
		t.Error("host MAC not learned from its interface")
	}
}
