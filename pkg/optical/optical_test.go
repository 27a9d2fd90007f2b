package optical

import (
	"context"
	"errors"
	"testing"

	"github.com/newtron-network/cordlab/pkg/emu"
	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

func TestBuildRing(t *testing.T) {
	d := New(0)
	if err := d.Build(); err != nil {
		t.Fatal(err)
	}

	wantLinks := []struct {
		a, b         string
		port1, port2 int
	}{
		{"OE1", "OE2", 1200, 2100},
		{"OE2", "OE3", 2300, 3200},
		{"OE3", "OE1", 3100, 1300},
	}
	specs := d.LinkSpecs()
	if len(specs) != len(wantLinks) {
		t.Fatalf("links = %v", specs)
	}
	for i, w := range wantLinks {
		s := specs[i]
		if s.A != w.a || s.B != w.b || s.Params.Port1 != w.port1 || s.Params.Port2 != w.port2 {
			t.Errorf("link %d = %+v, want %+v", i, s, w)
		}
		if s.Params.Annotations["durable"] != "true" {
			t.Errorf("link %d annotations = %v", i, s.Params.Annotations)
		}
	}

	p, _ := d.SwitchParams("OE2")
	if p.DPID != "0000ffffffffff02" || p.Annotations["optical.regens"] != "0" {
		t.Errorf("OE2 params = %+v", p)
	}
	if k, _ := d.Kind("OE1"); k != topo.KindROADM {
		t.Errorf("OE1 kind = %s", k)
	}
	if err := d.Build(); err == nil {
		t.Error("second Build should fail")
	}
}

func TestInjectRing(t *testing.T) {
	d := New(3)
	if err := d.Build(); err != nil {
		t.Fatal(err)
	}
	n := emu.New()
	if err := d.Inject(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	oe1, _ := n.Switch("OE1")
	ports := map[int]bool{}
	for _, intf := range oe1.Intfs() {
		ports[intf.Port] = true
	}
	if !ports[1200] || !ports[1300] {
		t.Errorf("OE1 ports = %v", ports)
	}
}

func TestRingSize(t *testing.T) {
	for _, nodes := range []int{2, 10} {
		if err := New(nodes).Build(); !errors.Is(err, util.ErrValidationFailed) {
			t.Errorf("New(%d).Build() = %v", nodes, err)
		}
	}
	d := New(4)
	if err := d.Build(); err != nil {
		t.Fatal(err)
	}
	last := d.LinkSpecs()[3]
	if last.A != "OE4" || last.B != "OE1" || last.Params.Port1 != 4100 || last.Params.Port2 != 1400 {
		t.Errorf("closing link = %+v", last)
	}
}
