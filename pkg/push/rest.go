package push

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/util"
)

// ONOS REST defaults.
const (
	DefaultRESTPort = 8181
	DefaultUser     = "onos"
	DefaultPassword = "rocks"
	NetcfgPath      = "/onos/v1/network/configuration"
)

// RESTSink posts documents to a controller's network configuration API.
type RESTSink struct {
	client   *http.Client
	port     int
	user     string
	password string
	scheme   string

	logger *logrus.Entry
}

// NewRESTSink returns a sink that posts to http://<controller>:<port>.
// Zero or empty arguments take the ONOS defaults.
func NewRESTSink(port int, user, password string, timeout time.Duration) *RESTSink {
	if port == 0 {
		port = DefaultRESTPort
	}
	if user == "" {
		user, password = DefaultUser, DefaultPassword
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &RESTSink{
		client:   &http.Client{Timeout: timeout},
		port:     port,
		user:     user,
		password: password,
		scheme:   "http",
		logger:   util.WithComponent("rest-sink"),
	}
}

// URL returns the configuration endpoint of a controller.
func (s *RESTSink) URL(controller string) string {
	return s.scheme + "://" + net.JoinHostPort(controller, strconv.Itoa(s.port)) + NetcfgPath
}

// Push posts doc and returns the response body.
func (s *RESTSink) Push(ctx context.Context, controller string, doc *netcfg.Document) (string, error) {
	body, err := doc.Marshal()
	if err != nil {
		return "", err
	}
	url := s.URL(controller)
	log := s.logger.WithField("server-url", url)
	log.WithField("body-length", len(body)).Debugf("Issuing request.")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("unable to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.SetBasicAuth(s.user, s.password)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to perform http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("Cannot close response body: %v.", err)
		}
	}()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read response body: %w", err)
	}
	log.WithField("body-length", len(out)).Debugf("Received response: %d.", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(out), fmt.Errorf("controller %s returned %d: %s", controller, resp.StatusCode, bytes.TrimSpace(out))
	}
	return string(out), nil
}
