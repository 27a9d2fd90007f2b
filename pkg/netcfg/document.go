// Package netcfg defines the segment-routing network configuration
// document pushed to an SDN controller, and its deterministic encoding.
package netcfg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/newtron-network/cordlab/pkg/util"
)

// DeviceScheme prefixes every device id.
const DeviceScheme = "of"

// NoVLAN is the VLAN value of an untagged interface or host.
const NoVLAN = "-1"

// Document is a controller network configuration. Top-level keys encode
// in the order devices, ports, hosts, links; map keys are sorted.
type Document struct {
	Devices map[string]DeviceConfig `json:"devices"`
	Ports   map[string]PortConfig   `json:"ports"`
	Hosts   map[string]HostConfig   `json:"hosts"`
	Links   map[string]LinkConfig   `json:"links,omitempty"`
}

// DeviceConfig wraps the segment-routing record of one device.
type DeviceConfig struct {
	SegmentRouting SegmentRouting `json:"segmentrouting"`
}

// SegmentRouting is the per-switch segment-routing record.
type SegmentRouting struct {
	Name          string         `json:"name"`
	NodeSID       string         `json:"nodeSid"`
	RouterIP      string         `json:"routerIp"`
	RouterMAC     string         `json:"routerMac"`
	IsEdgeRouter  string         `json:"isEdgeRouter"`
	AdjacencySIDs []AdjacencySID `json:"adjacencySids"`
}

// MarshalJSON encodes a nil adjacency list as [].
func (s SegmentRouting) MarshalJSON() ([]byte, error) {
	type plain SegmentRouting
	if s.AdjacencySIDs == nil {
		s.AdjacencySIDs = []AdjacencySID{}
	}
	return json.Marshal(plain(s))
}

// AdjacencySID binds a segment id to a set of local ports.
type AdjacencySID struct {
	AdjSID int   `json:"adjSid"`
	Ports  []int `json:"ports"`
}

// PortConfig lists the interfaces configured on one port.
type PortConfig struct {
	Interfaces []Interface `json:"interfaces"`
}

// Interface is one addressed (or bare VLAN) interface on a port.
type Interface struct {
	VLAN string   `json:"vlan"`
	IPs  []string `json:"ips,omitempty"`
}

// HostConfig wraps the basic record of one host.
type HostConfig struct {
	Basic HostBasic `json:"basic"`
}

// HostBasic locates a host on the fabric.
type HostBasic struct {
	IPs      []string `json:"ips,omitempty"`
	Location string   `json:"location"`
}

// LinkConfig annotates a port with its cross-connect.
type LinkConfig struct {
	CrossConnect CrossConnect `json:"cross-connect"`
}

// CrossConnect names the remote port of a cross-connect.
type CrossConnect struct {
	Remote string `json:"remote"`
}

// New returns an empty document.
func New() *Document {
	return &Document{
		Devices: make(map[string]DeviceConfig),
		Ports:   make(map[string]PortConfig),
		Hosts:   make(map[string]HostConfig),
	}
}

// DeviceID normalizes a datapath id into a device id: "of:" followed by
// the dpid zero-padded to 16 hex digits.
func DeviceID(dpid string) string {
	return DeviceScheme + ":" + util.LeftPad(strings.ToLower(dpid), 16, '0')
}

// PortID is "<deviceId>/<port>".
func PortID(deviceID string, port int) string {
	return fmt.Sprintf("%s/%d", deviceID, port)
}

// HostID is "<mac>/<vlan>".
func HostID(mac string, vlan int) string {
	return fmt.Sprintf("%s/%d", mac, vlan)
}

// Marshal encodes the document with 4-space indentation. The output is
// byte-identical for equal documents.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding netcfg: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the encoded document to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing netcfg %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a document written by WriteFile.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading netcfg %s: %w", path, err)
	}
	d := New()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("parsing netcfg %s: %w", path, err)
	}
	return d, nil
}
