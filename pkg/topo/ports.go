package topo

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/newtron-network/cordlab/pkg/util"
)

// Port numbering bases.
const (
	SwitchPortBase = 1
	HostPortBase   = 0
)

// PortMap allocates port numbers on one node.
type PortMap struct {
	base int
	next int
	used map[int]bool
}

// NewPortMap returns an allocator whose first automatic port is base.
func NewPortMap(base int) *PortMap {
	return &PortMap{base: base, next: base, used: make(map[int]bool)}
}

// Allocate claims the requested port, or the next free one when requested is 0.
func (m *PortMap) Allocate(requested int) (int, error) {
	port := requested
	if port == 0 {
		port = m.next
		for m.used[port] {
			port++
		}
	}
	if m.used[port] {
		return 0, fmt.Errorf("port %d already in use", port)
	}
	m.used[port] = true
	if port >= m.next {
		m.next = port + 1
	}
	return port, nil
}

// InUse reports whether port has been allocated.
func (m *PortMap) InUse(port int) bool {
	return m.used[port]
}

var digitsRE = regexp.MustCompile(`\d+`)

// DefaultDPID derives a datapath id from the first run of digits in a
// switch name, rendered in hex and padded to 16 digits: "leaf101" is
// "0000000000000065".
func DefaultDPID(name string) (string, error) {
	digits := digitsRE.FindString(name)
	if digits == "" {
		return "", fmt.Errorf("unable to derive DPID for %q: no digits in name", name)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return "", fmt.Errorf("unable to derive DPID for %q: %w", name, err)
	}
	return util.LeftPad(strconv.FormatUint(n, 16), 16, '0'), nil
}
