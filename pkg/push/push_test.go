package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/newtron-network/cordlab/pkg/netcfg"
)

func testDoc() *netcfg.Document {
	d := netcfg.New()
	d.Devices["of:0000000000000065"] = netcfg.DeviceConfig{SegmentRouting: netcfg.SegmentRouting{
		Name: "leaf101", NodeSID: "101", RouterIP: "10.1.1.254", RouterMAC: "00:00:00:01:01:80", IsEdgeRouter: "true",
	}}
	d.Links = map[string]netcfg.LinkConfig{
		"of:0000ffffffff0001/2": {CrossConnect: netcfg.CrossConnect{Remote: "of:0000ffffffffff01/10"}},
	}
	return d
}

func TestClean(t *testing.T) {
	tests := []struct {
		out  string
		want bool
	}{
		{"{}", true},
		{"{}\n", true},
		{"", true},
		{"  {}  ", true},
		{"Error: connection refused", false},
		{`{"code": 500}`, false},
	}
	for _, tt := range tests {
		if got := Clean(tt.out); got != tt.want {
			t.Errorf("Clean(%q) = %v, want %v", tt.out, got, tt.want)
		}
	}
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := &FileSink{Dir: dir}

	out, err := s.Push(context.Background(), "10.0.0.11", testDoc())
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if !Clean(out) {
		t.Errorf("output = %q", out)
	}
	doc, err := netcfg.ReadFile(filepath.Join(dir, "netcfg-10.0.0.11.json"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Links["of:0000ffffffff0001/2"].CrossConnect.Remote != "of:0000ffffffffff01/10" {
		t.Errorf("document not written intact: %+v", doc)
	}
}

func newTestRESTSink(t *testing.T, handler http.HandlerFunc) (*RESTSink, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())
	return NewRESTSink(port, "", "", 0), u.Hostname()
}

func TestRESTSink(t *testing.T) {
	var got netcfg.Document
	s, host := newTestRESTSink(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if r.Method != http.MethodPost || r.URL.Path != NetcfgPath || !ok || user != "onos" || pass != "rocks" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	out, err := s.Push(context.Background(), host, testDoc())
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if !Clean(out) {
		t.Errorf("output = %q", out)
	}
	if got.Devices["of:0000000000000065"].SegmentRouting.Name != "leaf101" {
		t.Errorf("server received %+v", got)
	}
}

func TestRESTSinkError(t *testing.T) {
	s, host := newTestRESTSink(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"message": "bad config"}`)
	})

	out, err := s.Push(context.Background(), host, testDoc())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Push error = %v", err)
	}
	if Clean(out) {
		t.Errorf("error body should not be clean: %q", out)
	}
}

func TestRESTSinkURL(t *testing.T) {
	s := NewRESTSink(0, "", "", 0)
	if got := s.URL("10.0.0.1"); got != "http://10.0.0.1:8181/onos/v1/network/configuration" {
		t.Errorf("URL = %s", got)
	}
}

type fakeRunner struct {
	cmds []string
	out  string
}

func (r *fakeRunner) Run(_ context.Context, cmd string) (string, error) {
	r.cmds = append(r.cmds, cmd)
	return r.out, nil
}

type uploadRunner struct {
	fakeRunner
	uploads map[string][]byte
}

func (r *uploadRunner) Upload(_ context.Context, data []byte, path string) error {
	r.uploads[path] = data
	return nil
}

func TestCommandSink(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{out: "{}"}
	s := &CommandSink{Runner: r, Dir: dir}

	out, err := s.Push(context.Background(), "10.0.0.11", testDoc())
	if err != nil {
		t.Fatal(err)
	}
	if out != "{}" {
		t.Errorf("output = %q", out)
	}
	path := filepath.Join(dir, "netcfg-10.0.0.11.json")
	want := "onos-netcfg '10.0.0.11' '" + path + "'"
	if len(r.cmds) != 1 || r.cmds[0] != want {
		t.Errorf("commands = %v, want %s", r.cmds, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("document not staged locally: %v", err)
	}
}

func TestCommandSinkUploads(t *testing.T) {
	r := &uploadRunner{uploads: map[string][]byte{}}
	s := &CommandSink{Runner: r, Command: "/opt/onos/tools/test/bin/onos-netcfg", Dir: "/tmp/cordlab"}

	if _, err := s.Push(context.Background(), "10.0.0.12", testDoc()); err != nil {
		t.Fatal(err)
	}
	data, ok := r.uploads["/tmp/cordlab/netcfg-10.0.0.12.json"]
	if !ok || !strings.Contains(string(data), "leaf101") {
		t.Errorf("uploads = %v", r.uploads)
	}
	if !strings.HasPrefix(r.cmds[0], "/opt/onos/tools/test/bin/onos-netcfg ") {
		t.Errorf("command = %s", r.cmds[0])
	}
}

func TestKey(t *testing.T) {
	if got := Key("10.0.0.1", "DEVICE", "of:0000000000000065"); got != "NETCFG|10.0.0.1|DEVICE|of:0000000000000065" {
		t.Errorf("Key = %s", got)
	}
}
