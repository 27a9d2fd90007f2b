package emu

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClabTopology is the containerlab topology file layout.
type ClabTopology struct {
	Name     string       `yaml:"name"`
	Topology ClabTopoSpec `yaml:"topology"`
}

// ClabTopoSpec contains the nodes and links sections.
type ClabTopoSpec struct {
	Nodes map[string]*ClabNode `yaml:"nodes"`
	Links []ClabLink           `yaml:"links"`
}

// ClabNode defines a single containerlab node.
type ClabNode struct {
	Kind   string            `yaml:"kind"`
	Image  string            `yaml:"image,omitempty"`
	Cmd    string            `yaml:"cmd,omitempty"`
	Labels map[string]string `yaml:"labels,omitempty"`
	Exec   []string          `yaml:"exec,omitempty"`
}

// ClabLink defines a containerlab link.
type ClabLink struct {
	Endpoints []string `yaml:"endpoints"`
}

const hostImage = "nicolaka/netshoot:latest"

// Clab renders the network as a containerlab topology: switches become
// ovs-bridge nodes, hosts become linux containers with their address and
// MAC applied on startup.
func (n *Network) Clab(name string) *ClabTopology {
	clab := &ClabTopology{
		Name:     name,
		Topology: ClabTopoSpec{Nodes: make(map[string]*ClabNode)},
	}

	for _, sw := range n.Switches() {
		labels := map[string]string{"dpid": sw.dpid}
		if sw.params.Class != "" {
			labels["class"] = sw.params.Class
		}
		clab.Topology.Nodes[sw.name] = &ClabNode{Kind: "ovs-bridge", Labels: labels}
	}

	for _, h := range n.Hosts() {
		node := &ClabNode{Kind: "linux", Image: hostImage, Cmd: "sleep infinity"}
		if len(h.intfs) > 0 {
			eth := h.Intfs()[1].Name
			node.Exec = append(node.Exec, fmt.Sprintf("ip link set %s address %s", eth, h.mac))
			if h.params.IP != "" {
				node.Exec = append(node.Exec, fmt.Sprintf("ip addr add %s dev %s", h.params.IP, eth))
			}
			if h.params.Gateway != "" {
				node.Exec = append(node.Exec, fmt.Sprintf("ip route replace default via %s", h.params.Gateway))
			}
		}
		clab.Topology.Nodes[h.name] = node
	}

	for _, l := range n.links {
		clab.Topology.Links = append(clab.Topology.Links, ClabLink{
			Endpoints: []string{
				l.Intf1.Node.Name() + ":" + l.Intf1.Name,
				l.Intf2.Node.Name() + ":" + l.Intf2.Name,
			},
		})
	}
	return clab
}

// WriteClab writes the containerlab topology for the network to path.
func (n *Network) WriteClab(name, path string) error {
	data, err := yaml.Marshal(n.Clab(name))
	if err != nil {
		return fmt.Errorf("marshalling containerlab YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
