// Package optical models the metro core: a ring of ROADM nodes that CO
// fabrics cross-connect into.
package optical

import (
	"fmt"

	"github.com/newtron-network/cordlab/pkg/topo"
	"github.com/newtron-network/cordlab/pkg/util"
)

// DomainID is the id of the optical core.
const DomainID = 0

// DefaultNodes is the ring size.
const DefaultNodes = 3

// Domain is the optical core.
type Domain struct {
	*topo.Graph
	nodes int
	built bool
}

// New returns an unbuilt ring of nodes ROADMs; zero means DefaultNodes.
func New(nodes int) *Domain {
	if nodes == 0 {
		nodes = DefaultNodes
	}
	return &Domain{Graph: topo.New(DomainID), nodes: nodes}
}

// NodeName is "OE<i>".
func NodeName(i int) string { return fmt.Sprintf("OE%d", i) }

// NodeDPID is "0000ffffffffff<i in hex>".
func NodeDPID(i int) string { return fmt.Sprintf("0000ffffffffff%02x", i) }

// RingPort numbers the port on node a facing node b: "<a><b>00". Ports
// below 100 stay free for add/drop (Och) ports.
func RingPort(a, b int) int { return a*1000 + b*100 }

// Nodes returns the ring size.
func (d *Domain) Nodes() int { return d.nodes }

// Build declares the ROADMs and the ring links between neighbours.
func (d *Domain) Build() error {
	if d.built {
		return fmt.Errorf("optical domain already built")
	}
	if d.nodes < 3 || d.nodes > 9 {
		return util.NewValidationError(fmt.Sprintf("optical ring needs 3 to 9 nodes, got %d", d.nodes))
	}
	for i := 1; i <= d.nodes; i++ {
		d.AddSwitch(NodeName(i), topo.KindROADM, topo.SwitchParams{
			Class:       "linc",
			DPID:        NodeDPID(i),
			Annotations: map[string]string{"optical.regens": "0"},
		})
	}
	for i := 1; i <= d.nodes; i++ {
		j := i%d.nodes + 1
		d.AddLink(NodeName(i), NodeName(j), topo.LinkParams{
			Port1:       RingPort(i, j),
			Port2:       RingPort(j, i),
			Class:       "linc",
			Annotations: map[string]string{"durable": "true"},
		})
	}
	d.built = true
	util.WithDomain(DomainID).Infof("built optical ring of %d nodes", d.nodes)
	return nil
}
