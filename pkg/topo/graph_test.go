package topo

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/newtron-network/cordlab/pkg/util"
)

type fakeNode struct {
	name  string
	intfs []*Intf
	ports *PortMap
}

func (n *fakeNode) Name() string   { return n.name }
func (n *fakeNode) Intfs() []*Intf { return n.intfs }

type fakeSwitch struct {
	fakeNode
	started []string
}

func (s *fakeSwitch) DPID() string { return "1" }
func (s *fakeSwitch) Start(_ context.Context, ctrls []Controller) error {
	for _, c := range ctrls {
		s.started = append(s.started, c.Name())
	}
	return nil
}

type fakeHost struct{ fakeNode }

func (h *fakeHost) IP() string  { return "" }
func (h *fakeHost) MAC() string { return "" }

type fakeController struct {
	name    string
	started bool
}

func (c *fakeController) Name() string                  { return c.name }
func (c *fakeController) Address() string               { return "127.0.0.1" }
func (c *fakeController) Start(_ context.Context) error { c.started = true; return nil }

// recorder logs the order of injector calls.
type recorder struct {
	calls []string
}

func (r *recorder) AddSwitch(_ context.Context, name string, _ SwitchParams) (Switch, error) {
	r.calls = append(r.calls, "switch:"+name)
	return &fakeSwitch{fakeNode: fakeNode{name: name, ports: NewPortMap(SwitchPortBase)}}, nil
}

func (r *recorder) AddHost(_ context.Context, name string, _ HostParams) (Host, error) {
	r.calls = append(r.calls, "host:"+name)
	return &fakeHost{fakeNode{name: name, ports: NewPortMap(HostPortBase)}}, nil
}

func (r *recorder) AddLink(_ context.Context, a, b Node, p LinkParams) (*Link, error) {
	r.calls = append(r.calls, "link:"+a.Name()+"-"+b.Name())
	return NewLink(&Intf{Name: a.Name() + "-x", Node: a}, &Intf{Name: b.Name() + "-x", Node: b}, p), nil
}

func (r *recorder) AddController(_ context.Context, name string, _ ControllerParams) (Controller, error) {
	r.calls = append(r.calls, "controller:"+name)
	return &fakeController{name: name}, nil
}

func (r *recorder) Build(_ context.Context) error { return nil }

func TestInjectOrder(t *testing.T) {
	g := New(1)
	g.AddController("c11", ControllerParams{Address: "10.0.0.1"})
	g.AddLink("leaf101", "h1011", LinkParams{})
	g.AddHost("h1011", HostParams{IP: "10.1.1.1/24"})
	g.AddSwitch("spine11", KindSpine, SwitchParams{})
	g.AddSwitch("leaf101", KindLeaf, SwitchParams{})
	g.AddLink("spine11", "leaf101", LinkParams{})

	rec := &recorder{}
	if err := g.Inject(context.Background(), rec); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	want := []string{
		"switch:spine11", "switch:leaf101",
		"host:h1011",
		"link:leaf101-h1011", "link:spine11-leaf101",
		"controller:c11",
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}
	if !g.Injected() {
		t.Error("Injected() = false after Inject")
	}
	if _, ok := g.Link(LinkKey{A: "spine11", B: "leaf101"}); !ok {
		t.Error("link instance not recorded")
	}
}

func TestInjectUnknownNode(t *testing.T) {
	g := New(3)
	g.AddSwitch("leaf301", KindLeaf, SwitchParams{})
	g.AddLink("leaf301", "ghost", LinkParams{})

	err := g.Inject(context.Background(), &recorder{})
	if !errors.Is(err, util.ErrUnknownNode) {
		t.Fatalf("Inject error = %v, want ErrUnknownNode", err)
	}
	var unknown *UnknownNodeError
	if !errors.As(err, &unknown) || unknown.Name != "ghost" || unknown.Domain != 3 {
		t.Errorf("unexpected error detail: %v", err)
	}
}

func TestRedeclareKeepsPosition(t *testing.T) {
	g := New(1)
	g.AddSwitch("a", KindSpine, SwitchParams{})
	g.AddSwitch("b", KindLeaf, SwitchParams{})
	g.AddSwitch("a", KindLeaf, SwitchParams{DPID: "42"})

	if got := g.SwitchNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("SwitchNames() = %v", got)
	}
	if k, _ := g.Kind("a"); k != KindLeaf {
		t.Errorf("Kind(a) = %s, want leaf", k)
	}
	if p, _ := g.SwitchParams("a"); p.DPID != "42" {
		t.Errorf("params not replaced: %+v", p)
	}
}

func TestKind(t *testing.T) {
	g := New(1)
	g.AddSwitch("s", "", SwitchParams{})
	g.AddHost("h", HostParams{})

	tests := []struct {
		name   string
		want   Kind
		wantOK bool
	}{
		{"s", KindSwitch, true},
		{"h", KindHost, true},
		{"x", "", false},
	}
	for _, tt := range tests {
		got, ok := g.Kind(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Kind(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStart(t *testing.T) {
	g := New(1)
	if err := g.Start(context.Background()); !errors.Is(err, util.ErrNotInjected) {
		t.Fatalf("Start before Inject = %v, want ErrNotInjected", err)
	}

	g.AddSwitch("spine11", KindSpine, SwitchParams{})
	g.AddController("c11", ControllerParams{})
	g.AddController("c12", ControllerParams{})
	if err := g.Inject(context.Background(), &recorder{}); err != nil {
		t.Fatal(err)
	}
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, c := range g.Controllers() {
		if !c.(*fakeController).started {
			t.Errorf("controller %s not started", c.Name())
		}
	}
	sw, _ := g.Switch("spine11")
	if got := sw.(*fakeSwitch).started; !reflect.DeepEqual(got, []string{"c11", "c12"}) {
		t.Errorf("switch started with %v", got)
	}
}

func TestLinkPeer(t *testing.T) {
	a := &Intf{Name: "a-eth1"}
	b := &Intf{Name: "b-eth0"}
	l := NewLink(a, b, LinkParams{})

	if l.Peer(a) != b || l.Peer(b) != a {
		t.Error("Peer does not return the opposite end")
	}
	if l.Peer(&Intf{}) != nil {
		t.Error("Peer of a foreign interface should be nil")
	}
	if a.Link != l || b.Link != l {
		t.Error("NewLink should back-reference both ends")
	}
}
