// Package schedule fires lamp commands from cron alarms configured in the
// "schedule" section, e.g. {"spec":"30 6 * * 1-5","command":"animation sunrise"}.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/robfig/cron/v3"

	"lampcode-go/bus"
	"lampcode-go/services/console"
	"lampcode-go/types"
)

var topicConfigSchedule = bus.T("config", "schedule")

// Alarm is one scheduled console command.
type Alarm struct {
	Name    string `json:"name,omitempty"`
	Spec    string `json:"spec"`
	Command string `json:"command"`
}

type Service struct {
	Topic    bus.Topic // where commands are published
	Log      hclog.Logger
	Location *time.Location
}

// cronLogger routes cron's own logging through hclog.
type cronLogger struct{ l hclog.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Trace(msg, kv...) }
func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, append(kv, "error", err)...)
}

// Build parses alarms into a stopped cron. Bad alarms are logged and
// skipped; the count of those is returned.
func (s *Service) Build(alarms []Alarm, fire func(types.Command)) (*cron.Cron, int) {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	lg := cronLogger{s.Log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(lg),
		cron.WithChain(cron.Recover(lg)),
	)
	skipped := 0
	for _, a := range alarms {
		cmd, ok, err := console.ParseLine(a.Command)
		if err == nil && !ok {
			err = errors.New("empty command")
		}
		if err != nil {
			s.Log.Warn("alarm skipped", "alarm", a.Name, "command", a.Command, "error", err)
			skipped++
			continue
		}
		cmd.Source = "schedule"
		name := a.Name
		if _, err := c.AddFunc(a.Spec, func() {
			s.Log.Info("alarm", "alarm", name, "route", cmd.Route(), "arg", cmd.Arg)
			fire(cmd)
		}); err != nil {
			s.Log.Warn("alarm skipped", "alarm", a.Name, "spec", a.Spec, "error", err)
			skipped++
		}
	}
	return c, skipped
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigSchedule)
	defer conn.Unsubscribe(cfgSub)

	fire := func(cmd types.Command) {
		conn.Publish(conn.NewMessage(s.Topic, cmd, false))
	}
	var cur *cron.Cron
	stop := func() {
		if cur != nil {
			<-cur.Stop().Done()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("schedule service stopping")
			return
		case msg := <-cfgSub.Channel():
			alarms, err := decodeAlarms(msg.Payload)
			if err != nil {
				s.Log.Error("bad schedule config", "error", err)
				continue
			}
			stop()
			var skipped int
			cur, skipped = s.Build(alarms, fire)
			cur.Start()
			s.Log.Info("schedule loaded", "alarms", len(cur.Entries()), "skipped", skipped)
		}
	}
}

// Start the schedule service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.Log == nil {
		s.Log = hclog.NewNullLogger()
	}
	s.Log = s.Log.Named("schedule")
	go s.serviceLoop(ctx, conn)
	return nil
}

// decodeAlarms accepts a decoded JSON or YAML list, or raw JSON.
func decodeAlarms(p any) ([]Alarm, error) {
	var raw []byte
	switch v := p.(type) {
	case []Alarm:
		return v, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		return nil, fmt.Errorf("unsupported schedule payload type: %T", p)
	}
	var out []Alarm
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
