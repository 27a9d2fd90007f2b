package netcfg

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDeviceID(t *testing.T) {
	tests := []struct {
		dpid string
		want string
	}{
		{"65", "of:0000000000000065"},
		{"0000ffffffffff01", "of:0000ffffffffff01"},
		{"0000FFFFFFFF0001", "of:0000ffffffff0001"},
	}
	for _, tt := range tests {
		if got := DeviceID(tt.dpid); got != tt.want {
			t.Errorf("DeviceID(%q) = %q, want %q", tt.dpid, got, tt.want)
		}
	}
}

func TestPortAndHostID(t *testing.T) {
	if got := PortID("of:0000000000000065", 3); got != "of:0000000000000065/3" {
		t.Errorf("PortID = %q", got)
	}
	if got := HostID("00:00:00:00:00:01", -1); got != "00:00:00:00:00:01/-1" {
		t.Errorf("HostID = %q", got)
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := New().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n    \"devices\": {},\n    \"ports\": {},\n    \"hosts\": {}\n}\n"
	if string(data) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, want)
	}
}

func TestMarshalLayout(t *testing.T) {
	d := New()
	d.Devices["of:0000000000000066"] = DeviceConfig{SegmentRouting: SegmentRouting{Name: "leaf102", NodeSID: "102"}}
	d.Devices["of:0000000000000065"] = DeviceConfig{SegmentRouting: SegmentRouting{
		Name:         "leaf101",
		NodeSID:      "101",
		RouterIP:     "10.1.1.254",
		RouterMAC:    "00:00:00:01:01:80",
		IsEdgeRouter: "true",
	}}
	d.Ports["of:0000000000000065/3"] = PortConfig{Interfaces: []Interface{{IPs: []string{"10.1.1.254/24"}, VLAN: NoVLAN}}}
	d.Ports["of:0000000000000065/4"] = PortConfig{Interfaces: []Interface{{VLAN: "100"}}}

	data, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		`"adjacencySids": []`,
		`"isEdgeRouter": "true"`,
		`"ips": [`,
		`"vlan": "100"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"links"`) {
		t.Error("links section should be omitted when empty")
	}
	if v, ips := strings.Index(out, `"vlan": "-1"`), strings.Index(out, `"ips": [`); v < 0 || v > ips {
		t.Errorf("interface record should list vlan before ips:\n%s", out)
	}
	if strings.Index(out, "leaf101") > strings.Index(out, "leaf102") {
		t.Error("device keys are not sorted")
	}
	if strings.Index(out, `"devices"`) > strings.Index(out, `"ports"`) ||
		strings.Index(out, `"ports"`) > strings.Index(out, `"hosts"`) {
		t.Error("top-level sections out of order")
	}
	name := strings.Index(out, `"name"`)
	for _, field := range []string{`"nodeSid"`, `"routerIp"`, `"routerMac"`, `"isEdgeRouter"`, `"adjacencySids"`} {
		idx := strings.Index(out, field)
		if idx < name {
			t.Errorf("%s precedes name", field)
		}
		name = idx
	}

	again, _ := d.Marshal()
	if string(again) != out {
		t.Error("Marshal is not deterministic")
	}
}

func TestMarshalLinks(t *testing.T) {
	d := New()
	d.Links = map[string]LinkConfig{
		"of:0000ffffffff0001/2": {CrossConnect: CrossConnect{Remote: "of:0000ffffffffff01/10"}},
	}
	data, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"cross-connect": {`) ||
		!strings.Contains(string(data), `"remote": "of:0000ffffffffff01/10"`) {
		t.Errorf("unexpected links encoding:\n%s", data)
	}
}

func TestWriteReadFile(t *testing.T) {
	d := New()
	d.Hosts["00:00:00:00:00:01/-1"] = HostConfig{Basic: HostBasic{
		IPs:      []string{"10.1.1.1"},
		Location: "of:0000000000000065/3",
	}}
	path := filepath.Join(t.TempDir(), "domain1-cfg.json")
	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	h, ok := got.Hosts["00:00:00:00:00:01/-1"]
	if !ok || h.Basic.Location != "of:0000000000000065/3" {
		t.Errorf("host record not read back: %+v", got.Hosts)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
