//go:build linux

package ovsnet

import (
	"context"
	"errors"
	"testing"

	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

type recordRunner struct {
	cmds []string
	err  error
}

func (r *recordRunner) Run(_ context.Context, cmd string) (string, error) {
	r.cmds = append(r.cmds, cmd)
	return "", r.err
}

func TestAddHostCreatesNamespace(t *testing.T) {
	r := &recordRunner{}
	n := New(WithRunner(r))

	h, err := n.AddHost(context.Background(), "h103", topo.HostParams{IP: "10.1.1.3/24"})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.cmds) != 1 || r.cmds[0] != "ip netns add 'h103'" {
		t.Errorf("commands = %v", r.cmds)
	}
	if h.IP() != "10.1.1.3/24" {
		t.Errorf("IP = %q", h.IP())
	}
	if got := h.(*Host).nsPath; got != "/var/run/netns/h103" {
		t.Errorf("nsPath = %q", got)
	}

	if _, err := n.AddHost(context.Background(), "h103", topo.HostParams{}); !errors.Is(err, util.ErrDuplicateName) {
		t.Errorf("duplicate: err = %v", err)
	}
	if _, err := n.AddHost(context.Background(), "averyveryverylonghost", topo.HostParams{}); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("long name: err = %v", err)
	}
}

func TestAddHostRunnerError(t *testing.T) {
	n := New(WithRunner(&recordRunner{err: errors.New("permission denied")}))
	if _, err := n.AddHost(context.Background(), "h1", topo.HostParams{}); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := n.Host("h1"); ok {
		t.Error("failed host was registered")
	}
}

func TestAddLinkUnknownNode(t *testing.T) {
	n := New(WithRunner(&recordRunner{}))
	other := New(WithRunner(&recordRunner{}))
	a, _ := n.AddHost(context.Background(), "h1", topo.HostParams{})
	b, _ := other.AddHost(context.Background(), "h2", topo.HostParams{})

	if _, err := n.AddLink(context.Background(), a, b, topo.LinkParams{}); !errors.Is(err, util.ErrUnknownNode) {
		t.Errorf("err = %v", err)
	}
}

func TestAddController(t *testing.T) {
	n := New(WithRunner(&recordRunner{}))
	c, err := n.AddController(context.Background(), "c10", topo.ControllerParams{Address: "10.0.1.1", Port: 6633})
	if err != nil {
		t.Fatal(err)
	}
	if got := controllerTarget(c); got != "tcp:10.0.1.1:6633" {
		t.Errorf("target = %q", got)
	}
	if _, err := n.AddController(context.Background(), "c10", topo.ControllerParams{}); !errors.Is(err, util.ErrDuplicateName) {
		t.Errorf("duplicate: err = %v", err)
	}

	c2, _ := n.AddController(context.Background(), "c11", topo.ControllerParams{Address: "fd00::1"})
	if got := controllerTarget(c2); got != "tcp:[fd00::1]:6653" {
		t.Errorf("target = %q", got)
	}
}

func TestVLANDevName(t *testing.T) {
	tests := []struct {
		parent string
		vlan   int
		want   string
	}{
		{"h111-eth0", 100, "h111-eth0.100"},
		{"xc1-eth0", 4094, "xc1-eth0.4094"},
		{"h1011-eth0", 4094, "h1011-eth0.4094"},
		{"leaf1001-eth10", 100, "leaf1001-et.100"},
		{"spine1234-e", 4094, "spine1234.4094"},
	}
	for _, tt := range tests {
		got := vlanDevName(tt.parent, tt.vlan)
		if got != tt.want {
			t.Errorf("vlanDevName(%q, %d) = %q, want %q", tt.parent, tt.vlan, got, tt.want)
		}
		if len(got) > maxIfName {
			t.Errorf("%q exceeds %d bytes", got, maxIfName)
		}
	}
}
