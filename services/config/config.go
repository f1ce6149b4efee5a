package config

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"lampcode-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

var (
	TopicDevice = bus.T("lamp", "config")
)

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

// ConfigService publishes daemon sections as retained config/<section>
// messages. Overrides replace profile sections of the same name.
type ConfigService struct {
	Name      string
	Profile   string
	Overrides map[string]any
	Log       hclog.Logger
}

func NewConfigService(profile string, log hclog.Logger) *ConfigService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &ConfigService{Name: serviceName, Profile: profile, Log: log.Named(serviceName)}
}

// Sections returns the merged daemon sections.
func (s *ConfigService) Sections() (map[string]any, error) {
	p, err := LoadProfile(s.Profile)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(p.Sections)+len(s.Overrides))
	for k, v := range p.Sections {
		out[k] = v
	}
	for k, v := range s.Overrides {
		out[k] = v
	}
	return out, nil
}

func (s *ConfigService) publishConfig(conn *bus.Connection) error {
	secs, err := s.Sections()
	if err != nil {
		return err
	}
	if len(secs) == 0 {
		return errors.New("profile has no sections: " + s.Profile)
	}
	for k, v := range secs {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		})
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(conn); err != nil {
			s.Log.Error("publish failed", "profile", s.Profile, "error", err)
		}
	}()
}

// PublishDevice publishes the device configuration snapshot retained.
func PublishDevice(conn *bus.Connection, d *Device) {
	conn.Publish(&bus.Message{Topic: TopicDevice, Payload: d.Payload(), Retained: true})
}
