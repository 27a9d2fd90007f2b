package fabric

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MACStyle selects how router MACs render the domain id and switch index.
type MACStyle int

const (
	// MACDecimal renders "00:00:00:0<d>:0<i>:80".
	MACDecimal MACStyle = iota
	// MACHex renders "00:00:00:%02x:%02x:80".
	MACHex
)

// ParseMACStyle accepts "decimal" or "hex".
func ParseMACStyle(s string) (MACStyle, error) {
	switch strings.ToLower(s) {
	case "", "decimal":
		return MACDecimal, nil
	case "hex":
		return MACHex, nil
	}
	return 0, fmt.Errorf("unknown MAC style %q (want decimal or hex)", s)
}

func (s MACStyle) String() string {
	if s == MACHex {
		return "hex"
	}
	return "decimal"
}

// RouterMAC returns the router MAC of the switch at compile index idx.
func (s MACStyle) RouterMAC(did, idx int) string {
	if s == MACHex {
		return fmt.Sprintf("00:00:00:%02x:%02x:80", did, idx)
	}
	return fmt.Sprintf("00:00:00:0%d:0%d:80", did, idx)
}

// MarshalYAML encodes the style by name.
func (s MACStyle) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes "decimal" or "hex".
func (s *MACStyle) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	style, err := ParseMACStyle(name)
	if err != nil {
		return err
	}
	*s = style
	return nil
}

func SpineName(did, i int) string { return fmt.Sprintf("spine%d%d", did, i) }
func LeafName(did, i int) string  { return fmt.Sprintf("leaf%d0%d", did, i) }

// HostName names fan-out host h (1-based, already offset) on the leaf at
// zero-based position leaf.
func HostName(did, leaf, h int) string { return fmt.Sprintf("h%d%d%d", did, leaf, h) }

// HostIP is "10.<d>.<leaf ordinal>.<h>/24".
func HostIP(did, ordinal, h int) string { return fmt.Sprintf("10.%d.%d.%d/24", did, ordinal, h) }

// Gateway is the leaf gateway "10.<d>.<leaf ordinal>.254".
func Gateway(did, ordinal int) string { return fmt.Sprintf("10.%d.%d.254", did, ordinal) }

// NodeSID is "<d>0<i>".
func NodeSID(did, idx int) string { return fmt.Sprintf("%d0%d", did, idx) }

// MgmtIP is the router address of a non-leaf switch, "192.168.<d>.<i>".
func MgmtIP(did, idx int) string { return fmt.Sprintf("192.168.%d.%d", did, idx) }

// TetherName names the metro-facing bridge of a domain.
func TetherName(did int) string { return fmt.Sprintf("tether%d", did) }

// TetherDPID is the DPID of the metro-facing bridge.
func TetherDPID(did int) string { return fmt.Sprintf("0000ffffffff%04x", did) }

// SwitchDPID returns the datapath id of switch n of domain did. The domain
// id fills the top 16 bits; tether bridges and ROADMs keep them zero.
func SwitchDPID(did, n int) string { return fmt.Sprintf("%04x%012x", did, n) }

// SpineDPID and LeafDPID number spines from 11 and leaves from 101 within
// their domain.
func SpineDPID(did, i int) string { return SwitchDPID(did, 10+i) }
func LeafDPID(did, i int) string  { return SwitchDPID(did, 100+i) }

// EdgeHostName names the VLAN-capable customer edge host.
func EdgeHostName(did int) string { return fmt.Sprintf("h%d11", did) }

// LocalMAC builds "02:ff:0a:<a>:<b>:<did in hex>".
func LocalMAC(a, b string, did int) string { return fmt.Sprintf("02:ff:0a:%s:%s:%02x", a, b, did) }

// XCDev is the cross-connect end of the CO veth pair.
func XCDev(did int) string { return fmt.Sprintf("xc%d-eth0", did) }

// LeafXCDev is the leaf end of the CO veth pair.
func LeafXCDev(did int) string { return fmt.Sprintf("leaf%d01-eth0", did) }
