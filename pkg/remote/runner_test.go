package remote

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"eth1", "'eth1'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
		{"a b", "'a b'"},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuoteArgs(t *testing.T) {
	got := QuoteArgs("onos-netcfg", "10.0.0.1", "topology 1.json")
	if got != "'onos-netcfg' '10.0.0.1' 'topology 1.json'" {
		t.Errorf("QuoteArgs = %s", got)
	}
}

func TestLocalRunner(t *testing.T) {
	out, err := LocalRunner{}.Run(context.Background(), "echo {}")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "{}" {
		t.Errorf("output = %q", out)
	}

	out, err = LocalRunner{}.Run(context.Background(), "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(out, "boom") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("output = %q, err = %v", out, err)
	}
}

func TestLocalRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := (LocalRunner{}).Run(ctx, "sleep 5"); err == nil {
		t.Error("expected error when the context expires")
	}
}

func TestSSHRunnerNeedsCredentials(t *testing.T) {
	r := &SSHRunner{Host: "10.0.0.1", User: "onos"}
	if _, err := r.Run(context.Background(), "true"); err == nil || !strings.Contains(err.Error(), "no password or key") {
		t.Errorf("Run without credentials = %v", err)
	}

	r.KeyFile = "/nonexistent/id_rsa"
	if _, err := r.Run(context.Background(), "true"); err == nil || !strings.Contains(err.Error(), "reading ssh key") {
		t.Errorf("Run with missing key = %v", err)
	}
}
