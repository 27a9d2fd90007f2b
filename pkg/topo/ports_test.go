package topo

import "testing"

func TestPortMap(t *testing.T) {
	m := NewPortMap(SwitchPortBase)

	steps := []struct {
		requested int
		want      int
		wantErr   bool
	}{
		{0, 1, false},
		{0, 2, false},
		{10, 10, false},
		{0, 11, false},
		{2, 0, true},
		{5, 5, false},
		{0, 12, false},
	}
	for i, s := range steps {
		got, err := m.Allocate(s.requested)
		if (err != nil) != s.wantErr {
			t.Fatalf("step %d: Allocate(%d) error = %v, wantErr %v", i, s.requested, err, s.wantErr)
		}
		if !s.wantErr && got != s.want {
			t.Errorf("step %d: Allocate(%d) = %d, want %d", i, s.requested, got, s.want)
		}
	}
	if !m.InUse(5) || m.InUse(6) {
		t.Error("InUse does not reflect allocations")
	}
}

func TestHostPortsStartAtZero(t *testing.T) {
	m := NewPortMap(HostPortBase)
	if p, _ := m.Allocate(0); p != 0 {
		t.Errorf("first host port = %d, want 0", p)
	}
	if p, _ := m.Allocate(0); p != 1 {
		t.Errorf("second host port = %d, want 1", p)
	}
}

func TestDefaultDPID(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"leaf101", "0000000000000065", false},
		{"spine11", "000000000000000b", false},
		{"tether1", "0000000000000001", false},
		{"s1x22", "0000000000000001", false},
		{"nodigits", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultDPID(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DefaultDPID(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("DefaultDPID(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestIntfName(t *testing.T) {
	if got := IntfName("leaf101", 3); got != "leaf101-eth3" {
		t.Errorf("IntfName = %q", got)
	}
}
