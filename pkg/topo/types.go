// Package topo models an emulated network as a named graph of switches,
// hosts, links and controllers, and materializes it through an Injector.
package topo

import (
	"context"
	"fmt"

	"github.com/newtron-network/cordlab/pkg/util"
)

// Kind tags a declared node with its role in the fabric.
type Kind string

const (
	KindSwitch Kind = "switch"
	KindSpine  Kind = "spine"
	KindLeaf   Kind = "leaf"
	KindTether Kind = "tether"
	KindBridge Kind = "bridge"
	KindROADM  Kind = "roadm"
	KindHost   Kind = "host"
)

// IsSwitch reports whether nodes of this kind are injected as switches.
func (k Kind) IsSwitch() bool {
	return k != KindHost && k != ""
}

// LoopbackName is the name of the unnumbered interface every node carries.
const LoopbackName = "lo"

// SwitchParams are the device-specific parameters of a switch declaration.
type SwitchParams struct {
	Class       string            `json:"class,omitempty" yaml:"class,omitempty"`
	DPID        string            `json:"dpid,omitempty" yaml:"dpid,omitempty"`
	DPOpts      string            `json:"dpopts,omitempty" yaml:"dpopts,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// HostParams are the parameters of a host declaration. IP is in CIDR form.
type HostParams struct {
	Class   string `json:"class,omitempty" yaml:"class,omitempty"`
	IP      string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Gateway string `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	MAC     string `json:"mac,omitempty" yaml:"mac,omitempty"`
	MTU     int    `json:"mtu,omitempty" yaml:"mtu,omitempty"`
}

// LinkParams are the parameters of a link declaration. A zero port
// selects the next free port on that end.
type LinkParams struct {
	Port1       int               `json:"port1,omitempty" yaml:"port1,omitempty"`
	Port2       int               `json:"port2,omitempty" yaml:"port2,omitempty"`
	Speed       int               `json:"speed,omitempty" yaml:"speed,omitempty"`
	Class       string            `json:"class,omitempty" yaml:"class,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// ControllerParams locate a remote SDN controller.
type ControllerParams struct {
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// Node is an injected switch or host.
type Node interface {
	Name() string
	// Intfs returns the node's interfaces in port order, loopback first.
	Intfs() []*Intf
}

// Switch is an injected switch instance.
type Switch interface {
	Node
	DPID() string
	Start(ctx context.Context, controllers []Controller) error
}

// Host is an injected host instance.
type Host interface {
	Node
	// IP returns the configured address in CIDR form, or "".
	IP() string
	MAC() string
}

// Controller is an injected controller instance.
type Controller interface {
	Name() string
	Address() string
	Start(ctx context.Context) error
}

// Attachable is implemented by switches that can adopt an existing
// network device as a new port.
type Attachable interface {
	Attach(ctx context.Context, dev string) (*Intf, error)
}

// Namespaced is implemented by nodes running in their own network
// namespace, identified by the pid of a process inside it.
type Namespaced interface {
	PID() int
}

// VLANCapable is implemented by hosts that can carry tagged sub-interfaces.
type VLANCapable interface {
	AddVLAN(ctx context.Context, vlan int, cidr string) error
}

// Injector materializes declarations into a running (or simulated) network.
type Injector interface {
	AddSwitch(ctx context.Context, name string, params SwitchParams) (Switch, error)
	AddHost(ctx context.Context, name string, params HostParams) (Host, error)
	AddLink(ctx context.Context, a, b Node, params LinkParams) (*Link, error)
	AddController(ctx context.Context, name string, params ControllerParams) (Controller, error)
	Build(ctx context.Context) error
}

// Intf is one end of a link, or the loopback.
type Intf struct {
	Name string
	Node Node
	Port int
	MAC  string
	Link *Link
}

// IsLoopback reports whether this is the node's loopback interface.
func (i *Intf) IsLoopback() bool {
	return i.Name == LoopbackName
}

// Link joins two interfaces.
type Link struct {
	Intf1  *Intf
	Intf2  *Intf
	Params LinkParams
}

// NewLink connects a and b and back-references the link from both ends.
func NewLink(a, b *Intf, params LinkParams) *Link {
	l := &Link{Intf1: a, Intf2: b, Params: params}
	a.Link = l
	b.Link = l
	return l
}

// Peer returns the end of the link opposite i, or nil if i is not on the link.
func (l *Link) Peer(i *Intf) *Intf {
	switch i {
	case l.Intf1:
		return l.Intf2
	case l.Intf2:
		return l.Intf1
	}
	return nil
}

// IntfName is the conventional interface name for a node port.
func IntfName(node string, port int) string {
	return fmt.Sprintf("%s-eth%d", node, port)
}

// UnknownNodeError reports a reference to a name that was never declared.
type UnknownNodeError struct {
	Domain int
	Name   string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("domain %d: unknown node %q", e.Domain, e.Name)
}

func (e *UnknownNodeError) Unwrap() error {
	return util.ErrUnknownNode
}
