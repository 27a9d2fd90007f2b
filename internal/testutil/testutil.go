//go:build integration

// Package testutil provides helpers for integration tests that need a
// Redis server or root privileges.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the test Redis address (IP:port). It first checks
// CORDLAB_REDIS_ADDR, then the IP of the cordlab-test-redis container.
func RedisAddr() string {
	if addr := os.Getenv("CORDLAB_REDIS_ADDR"); addr != "" {
		return addr
	}
	out, err := exec.Command("docker", "inspect",
		"--format", "{{range .NetworkSettings.Networks}}{{.IPAddress}}{{end}}",
		"cordlab-test-redis").Output()
	if err != nil {
		return ""
	}
	if ip := strings.TrimSpace(string(out)); ip != "" {
		return ip + ":6379"
	}
	return ""
}

// SkipIfNoRedis skips the test if the test Redis server is not reachable.
func SkipIfNoRedis(t *testing.T) string {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set CORDLAB_REDIS_ADDR or start cordlab-test-redis")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
	return addr
}

// RedisClient returns a client on db, flushed now and again at cleanup.
func RedisClient(t *testing.T, addr string, db int) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	flush := func() {
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Errorf("failed to flush DB %d: %v", db, err)
		}
	}
	flush()
	t.Cleanup(func() {
		flush()
		client.Close()
	})
	return client
}

// SkipUnlessRoot skips tests that create kernel network state.
func SkipUnlessRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("needs root")
	}
	if _, err := exec.LookPath("ovs-vsctl"); err != nil {
		t.Skip("ovs-vsctl not installed")
	}
}

// Context returns a context cancelled at the end of the test.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
