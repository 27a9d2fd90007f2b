package remote

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/cordlab/pkg/util"
)

// SSHRunner runs commands on a remote host. Password auth is used when
// Password is set, otherwise the private key at KeyFile.
type SSHRunner struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string
	Timeout  time.Duration
}

func (r *SSHRunner) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	switch {
	case r.Password != "":
		auth = append(auth, ssh.Password(r.Password))
	case r.KeyFile != "":
		key, err := os.ReadFile(r.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing ssh key %s: %w", r.KeyFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	default:
		return nil, fmt.Errorf("ssh %s: no password or key configured", r.Host)
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ssh.ClientConfig{
		User:            r.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

func (r *SSHRunner) dial() (*ssh.Client, error) {
	config, err := r.clientConfig()
	if err != nil {
		return nil, err
	}
	port := r.Port
	if port == 0 {
		port = 22
	}
	addr := fmt.Sprintf("%s:%d", r.Host, port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	return client, nil
}

// Upload writes data to path on the remote host.
func (r *SSHRunner) Upload(_ context.Context, data []byte, path string) error {
	client, err := r.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("ssh session %s: %w", r.Host, err)
	}
	defer session.Close()

	session.Stdin = bytes.NewReader(data)
	if out, err := session.CombinedOutput("cat > " + Quote(path)); err != nil {
		return fmt.Errorf("ssh upload %s:%s: %w: %s", r.Host, path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Run executes cmd on the remote host. Cancelling ctx closes the connection.
func (r *SSHRunner) Run(ctx context.Context, cmd string) (string, error) {
	client, err := r.dial()
	if err != nil {
		return "", err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("ssh session %s: %w", r.Host, err)
	}
	defer session.Close()

	util.WithField("host", r.Host).Debugf("ssh exec: %s", cmd)

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		client.Close()
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return string(res.out), fmt.Errorf("ssh %s: %s: %w: %s", r.Host, cmd, res.err, strings.TrimSpace(string(res.out)))
		}
		return string(res.out), nil
	}
}
