package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/newtron-network/cordlab/pkg/emu"
	"github.com/newtron-network/cordlab/pkg/push"
	"github.com/newtron-network/cordlab/pkg/remote"
	"github.com/newtron-network/cordlab/pkg/settings"
)

// withSettings installs s as the loaded settings and resets the global
// flags for the duration of a test.
func withSettings(t *testing.T, s *settings.Settings) {
	t.Helper()
	oldCfg, oldSink, oldEmu, oldOut, oldSSH := cfg, sinkKind, emulator, outputDir, sshHost
	t.Cleanup(func() {
		cfg, sinkKind, emulator, outputDir, sshHost = oldCfg, oldSink, oldEmu, oldOut, oldSSH
	})
	cfg = s
	sinkKind, emulator, outputDir, sshHost = "", "", "", ""
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"rest_password", "rocks", "********"},
		{"ssh_password", "", ""},
		{"rest_user", "onos", "onos"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.key, tt.value); got != tt.want {
			t.Errorf("maskSecret(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestMetroConfig(t *testing.T) {
	if _, err := metroConfig("metro.yaml", []string{"10.0.0.1"}); err == nil {
		t.Error("--config with arguments should fail")
	}
	mc, err := metroConfig("", []string{"10.0.0.1", "10.0.1.1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(mc.Fabrics) != 1 {
		t.Errorf("fabrics = %+v", mc.Fabrics)
	}
}

func TestNewSink(t *testing.T) {
	withSettings(t, &settings.Settings{AuditLog: "none"})
	dir := t.TempDir()

	s, closeSink, err := newSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer closeSink()
	if fs, ok := s.(*push.FileSink); !ok || fs.Dir != dir {
		t.Errorf("default sink = %#v", s)
	}

	sinkKind = "command"
	s, _, err = newSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cs, ok := s.(*push.CommandSink); !ok {
		t.Errorf("command sink = %#v", s)
	} else if _, local := cs.Runner.(remote.LocalRunner); !local {
		t.Errorf("command sink runner = %#v", cs.Runner)
	}

	sshHost = "onos1"
	s, _, _ = newSink(dir)
	if r, ok := s.(*push.CommandSink).Runner.(*remote.SSHRunner); !ok || r.Host != "onos1" {
		t.Errorf("ssh runner = %#v", s.(*push.CommandSink).Runner)
	}

	sinkKind = "redis"
	if _, _, err := newSink(dir); err == nil {
		t.Error("redis sink without an address should fail")
	}

	sinkKind = "pigeon"
	if _, _, err := newSink(dir); err == nil {
		t.Error("unknown sink should fail")
	}
}

func TestNewSinkAudited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	withSettings(t, &settings.Settings{AuditLog: path})

	s, closeSink, err := newSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer closeSink()
	as, ok := s.(*push.AuditSink)
	if !ok {
		t.Fatalf("sink = %#v", s)
	}
	if _, ok := as.Sink.(*push.FileSink); !ok || as.Kind != "file" {
		t.Errorf("audited sink = %#v", as)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("audit log not opened: %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	withSettings(t, &settings.Settings{})

	b, err := newBackend()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.inj.(*emu.Network); !ok {
		t.Errorf("default backend = %#v", b.inj)
	}
	if _, ok := b.prov.(*emu.Provisioner); !ok {
		t.Errorf("default provisioner = %#v", b.prov)
	}

	emulator = "mininet"
	if _, err := newBackend(); err == nil {
		t.Error("unknown emulator should fail")
	}
}

func TestResolveOutputDir(t *testing.T) {
	base := t.TempDir()
	withSettings(t, &settings.Settings{OutputDir: filepath.Join(base, "saved")})
	t.Setenv(settings.OutputEnv, "")

	got, err := resolveOutputDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(base, "saved") {
		t.Errorf("got %q", got)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("output dir not created: %v", err)
	}

	outputDir = filepath.Join(base, "flag")
	if got, _ := resolveOutputDir(); got != outputDir {
		t.Errorf("flag not honoured: %q", got)
	}
}
