// Package heartbeat publishes a periodic health report.
package heartbeat

import (
	"context"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"

	"lampcode-go/bus"
	"lampcode-go/types"
	"lampcode-go/x/timex"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	TopicHealth          = bus.T("system", "health")
)

const defaultInterval = 5 * time.Second

// Source reports liveness of the main loop.
type Source interface {
	Ticks() uint64
	Session() string
}

type Service struct {
	Source Source
	Clock  timex.Clock
	Log    hclog.Logger

	started time.Time
}

// Health builds one report as of now.
func (s *Service) Health(now time.Time) types.Health {
	h := types.Health{
		UptimeS:    int64(now.Sub(s.started) / time.Second),
		Goroutines: runtime.NumGoroutine(),
		TS:         now.UnixMilli(),
	}
	if s.Source != nil {
		h.Ticks = s.Source.Ticks()
		h.Session = s.Source.Session()
	}
	return h
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("heartbeat service stopping")
			return
		case <-tick.C:
			h := s.Health(s.Clock.Now())
			conn.Publish(conn.NewMessage(TopicHealth, h, false))
			s.Log.Debug("heartbeat", "uptime_s", h.UptimeS, "ticks", h.Ticks)
		case msg := <-cfgSub.Channel():
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
				s.Log.Info("heartbeat interval set", "interval", d)
			}
		}
	}
}

// interval reads {"interval": seconds} from a config section. JSON profiles
// decode numbers as float64, YAML settings as int.
func interval(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	var secs float64
	switch v := m["interval"].(type) {
	case float64:
		secs = v
	case int:
		secs = float64(v)
	default:
		return 0, false
	}
	if secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.Clock == nil {
		s.Clock = timex.System{}
	}
	if s.Log == nil {
		s.Log = hclog.NewNullLogger()
	}
	s.Log = s.Log.Named("heartbeat")
	s.started = s.Clock.Now()
	go s.serviceLoop(ctx, conn)
	return nil
}
