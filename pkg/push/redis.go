package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/cordlab/pkg/netcfg"
	"github.com/newtron-network/cordlab/pkg/util"
)

// RedisSink stores documents in Redis for controllers that pull their
// configuration. Each record becomes a hash under
// "NETCFG|<controller>|<SECTION>|<key>" and the whole document is kept as
// a string under "NETCFG|<controller>|DOCUMENT".
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink connects to the Redis server at addr.
func NewRedisSink(addr, password string, db int) *RedisSink {
	return &RedisSink{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Close releases the connection pool.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

// Key builds a NETCFG key.
func Key(controller string, parts ...string) string {
	return "NETCFG|" + controller + "|" + strings.Join(parts, "|")
}

// Push replaces the controller's stored document.
func (s *RedisSink) Push(ctx context.Context, controller string, doc *netcfg.Document) (string, error) {
	data, err := doc.Marshal()
	if err != nil {
		return "", err
	}

	old, err := s.client.Keys(ctx, Key(controller, "*")).Result()
	if err != nil {
		return "", fmt.Errorf("redis keys: %w", err)
	}

	pipe := s.client.TxPipeline()
	if len(old) > 0 {
		pipe.Del(ctx, old...)
	}
	pipe.Set(ctx, Key(controller, "DOCUMENT"), data, 0)
	for id, dev := range doc.Devices {
		sr := dev.SegmentRouting
		pipe.HSet(ctx, Key(controller, "DEVICE", id),
			"name", sr.Name,
			"nodeSid", sr.NodeSID,
			"routerIp", sr.RouterIP,
			"routerMac", sr.RouterMAC,
			"isEdgeRouter", sr.IsEdgeRouter)
	}
	for id, port := range doc.Ports {
		ifs, err := json.Marshal(port.Interfaces)
		if err != nil {
			return "", err
		}
		pipe.HSet(ctx, Key(controller, "PORT", id), "interfaces", string(ifs))
	}
	for id, host := range doc.Hosts {
		pipe.HSet(ctx, Key(controller, "HOST", id),
			"ips", strings.Join(host.Basic.IPs, ","),
			"location", host.Basic.Location)
	}
	for id, link := range doc.Links {
		pipe.HSet(ctx, Key(controller, "LINK", id), "remote", link.CrossConnect.Remote)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("redis write for %s: %w", controller, err)
	}
	util.WithField("controller", controller).Infof("netcfg stored in redis (%d devices)", len(doc.Devices))
	return "{}", nil
}
