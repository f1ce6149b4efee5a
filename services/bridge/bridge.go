// Package bridge links the local bus to an MQTT broker: lamp commands come
// in under <base>/cmnd and <base>/config, state and health go out.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"lampcode-go/bus"
	"lampcode-go/services/heartbeat"
	"lampcode-go/services/lamp"
	"lampcode-go/types"
)

const DefaultBase = "ikea_lamp"

var (
	topicConfigBridge = bus.T("config", "bridge")
	TopicState        = bus.T("bridge", "state")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config is the configuration expected on "config/bridge".
type Config struct {
	Broker     string `json:"broker"` // tcp://host:1883
	ClientID   string `json:"client_id,omitempty"`
	Base       string `json:"base,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	KeepAliveS int    `json:"keepalive_s,omitempty"`
}

func (c Config) base() string {
	if c.Base == "" {
		return DefaultBase
	}
	return strings.Trim(c.Base, "/")
}

// Client is the broker connection the bridge drives. The paho client is the
// production implementation.
type Client interface {
	Connect(ctx context.Context) error
	Subscribe(filter string, fn func(topic string, payload []byte)) error
	Publish(topic string, payload []byte, retained bool) error
	// Lost delivers the error when an established connection drops.
	Lost() <-chan error
	Disconnect()
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type Service struct {
	conn *bus.Connection
	log  hclog.Logger

	// Dial builds a client for cfg. Defaults to paho.
	Dial func(cfg Config) Client

	mu     sync.Mutex
	curRun context.CancelFunc
}

func New(conn *bus.Connection, log hclog.Logger) *Service {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{conn: conn, log: log.Named("bridge"), Dial: dialPaho}
}

// Start runs a bridge until ctx is cancelled.
func Start(ctx context.Context, conn *bus.Connection, log hclog.Logger) {
	New(conn, log).Run(ctx)
}

// Run waits for config and supervises a single link.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigBridge)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState("idle", "awaiting_config", nil)

	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("error", "config_subscription_closed", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err == nil && cfg.Broker == "" {
				err = errors.New("broker is required")
			}
			if err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			s.reconfigure(ctx, cfg)
		}
	}
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
}

func (s *Service) reconfigure(parent context.Context, cfg Config) {
	s.stopCurrent()
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.curRun = cancel
	s.mu.Unlock()

	s.log.Info("bridge configured", "broker", cfg.Broker, "base", cfg.base())
	go s.runLink(ctx, cfg)
}

// -----------------------------------------------------------------------------
// Link supervision
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg Config) {
	backoff := backoffSeq(250*time.Millisecond, 30*time.Second)
	for {
		cl := s.Dial(cfg)
		if err := cl.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", fmt.Errorf("%w (retry in %s)", err, delay))
			s.log.Warn("broker connect failed", "broker", cfg.Broker, "retry", delay, "error", err)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.publishState("up", "link_established", nil)
		err := s.handleLink(ctx, cl, cfg.base())
		cl.Disconnect()
		if err == nil {
			return
		}
		delay := backoff()
		s.publishState("degraded", "link_lost_retrying", fmt.Errorf("%w (retry in %s)", err, delay))
		s.log.Warn("broker link lost", "retry", delay, "error", err)
		if !sleep(ctx, delay) {
			return
		}
	}
}

// handleLink owns one connected session. It returns nil when ctx ends.
func (s *Service) handleLink(ctx context.Context, cl Client, base string) error {
	inbound := func(topic string, payload []byte) {
		cmd, ok := Inbound(base, topic, payload)
		if !ok {
			return
		}
		s.conn.Publish(s.conn.NewMessage(lamp.TopicCommand, cmd, false))
	}
	for _, f := range []string{base + "/cmnd/#", base + "/config/#"} {
		if err := cl.Subscribe(f, inbound); err != nil {
			return err
		}
	}

	stateSub := s.conn.Subscribe(lamp.TopicState)
	cfgSub := s.conn.Subscribe(lamp.TopicConfig)
	healthSub := s.conn.Subscribe(heartbeat.TopicHealth)
	defer s.conn.Unsubscribe(stateSub)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(healthSub)

	for {
		var (
			msg *bus.Message
			out string
		)
		select {
		case <-ctx.Done():
			return nil
		case err := <-cl.Lost():
			if err == nil {
				err = errors.New("connection lost")
			}
			return err
		case msg = <-stateSub.Channel():
			out = base + "/state/json"
		case msg = <-cfgSub.Channel():
			out = base + "/config/state"
		case msg = <-healthSub.Channel():
			out = base + "/system/health"
		}
		if msg == nil {
			continue
		}
		b, err := json.Marshal(msg.Payload)
		if err != nil {
			s.log.Error("encode failed", "topic", msg.Topic.String(), "error", err)
			continue
		}
		if err := cl.Publish(out, b, msg.Retained); err != nil {
			return err
		}
	}
}

// -----------------------------------------------------------------------------
// Topic mapping
// -----------------------------------------------------------------------------

// Inbound maps a broker message under base to a lamp command:
//
//	<base>/cmnd/<name>          -> cmnd/<name>
//	<base>/config/<key>/set     -> config/<key>/set
//	<base>/config/<verb>        -> config/<verb>   (save, reset, request)
//
// Our own <base>/config/state echo is ignored.
func Inbound(base, topic string, payload []byte) (types.Command, bool) {
	root, t := bus.ParseTopic(base), bus.ParseTopic(topic)
	if !t.HasPrefix(root) {
		return types.Command{}, false
	}
	parts := t[len(root):]
	arg := strings.TrimSpace(string(payload))
	switch {
	case len(parts) == 2 && parts[0] == "cmnd" && parts[1] != "":
		cmd := types.Cmd(parts[1], arg)
		cmd.Source = "mqtt"
		return cmd, true
	case len(parts) == 3 && parts[0] == "config" && parts[2] == "set":
		cmd := types.ConfigSet(parts[1], arg)
		cmd.Source = "mqtt"
		return cmd, true
	case len(parts) == 2 && parts[0] == "config" && parts[1] != "state":
		return types.Command{Path: []string{"config", parts[1]}, Source: "mqtt"}, true
	}
	return types.Command{}, false
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func decodeConfig(p any) (Config, error) {
	var cfg Config
	switch v := p.(type) {
	case Config:
		return v, nil
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return cfg, err
		}
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config payload type: %T", p)
	}
	return cfg, nil
}

func (s *Service) publishState(level, status string, err error) {
	payload := map[string]any{
		"level":  level,  // "up", "degraded", "error", "idle"
		"status": status, // short machine string
		"ts_ms":  time.Now().UnixMilli(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(TopicState, payload, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
