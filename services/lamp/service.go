// Package lamp is the controller service: it owns the device state, the
// configuration and the animation engine, and is the only goroutine that
// touches them.
package lamp

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"lampcode-go/bus"
	"lampcode-go/services/config"
	"lampcode-go/services/hal/devices/gpio_button"
	"lampcode-go/services/hal/devices/rgb_pwm"
	"lampcode-go/services/lamp/anim"
	"lampcode-go/services/lamp/state"
	"lampcode-go/services/metrics"
	"lampcode-go/types"
	"lampcode-go/x/timex"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

var (
	TopicCommand = bus.T("lamp", "cmnd")   // payload types.Command
	TopicState   = bus.T("lamp", "state")  // retained types.StatePayload
	TopicConfig  = config.TopicDevice      // retained types.ConfigPayload
	TopicButton  = gpio_button.TopicEvent  // payload types.ButtonEvent
)

// Actuator drives the physical output. *rgb_pwm.Device satisfies it.
type Actuator interface {
	Apply(power bool, brightness uint8, c types.Color, minPWM, maxPWM uint8) rgb_pwm.Duty
}

type Options struct {
	Conn     *bus.Connection
	Clock    timex.Clock
	Log      hclog.Logger
	Store    config.Store
	Config   config.Device
	Actuator Actuator
	Metrics  *metrics.Metrics

	TickInterval    time.Duration // default 10ms
	PublishInterval time.Duration // minimum gap between state publishes, default 200ms
	BootFlash       time.Duration // dim white shown at boot; 0 disables
}

// output is the tuple last written to the actuator.
type output struct {
	power      bool
	brightness uint8
	color      types.Color
	minPWM     uint8
	maxPWM     uint8
}

type Service struct {
	conn    *bus.Connection
	clock   timex.Clock
	log     hclog.Logger
	store   config.Store
	act     Actuator
	metrics *metrics.Metrics

	tickEvery time.Duration
	pubEvery  time.Duration
	bootFlash time.Duration

	ctx    context.Context
	cfg    config.Device
	dirty  bool
	st     *state.Device
	eng    *anim.Engine
	timers timex.Timers

	applied  output
	hasOut   bool
	flashing bool

	pubVersion uint64
	pubAt      time.Time
	published  bool

	ticks atomic.Uint64
}

func New(o Options) *Service {
	if o.Clock == nil {
		o.Clock = timex.System{}
	}
	if o.Log == nil {
		o.Log = hclog.NewNullLogger()
	}
	if o.Store == nil {
		o.Store = config.NewMemStore(o.Config)
	}
	if o.TickInterval <= 0 {
		o.TickInterval = 10 * time.Millisecond
	}
	if o.PublishInterval <= 0 {
		o.PublishInterval = 200 * time.Millisecond
	}
	s := &Service{
		conn:      o.Conn,
		clock:     o.Clock,
		log:       o.Log.Named("lamp"),
		store:     o.Store,
		act:       o.Actuator,
		metrics:   o.Metrics,
		tickEvery: o.TickInterval,
		pubEvery:  o.PublishInterval,
		bootFlash: o.BootFlash,
		ctx:       context.Background(),
		cfg:       o.Config.Clone(),
		st:        state.New(),
	}
	s.st.Brightness = s.cfg.DefaultBrightness
	s.st.Color = s.cfg.DefaultColor
	s.st.BumpVersion()

	s.eng = anim.New(o.Clock, o.Log)
	s.eng.OnStart = func(e anim.Effect) { s.metrics.EffectStarted(e.String()) }
	s.eng.Begin(s.st, &s.cfg)
	return s
}

// Ticks reports how many loop iterations have run. Safe from any goroutine.
func (s *Service) Ticks() uint64 { return s.ticks.Load() }

// Session identifies this run.
func (s *Service) Session() string { return s.st.SessionID }

// -----------------------------------------------------------------------------
// Main loop
// -----------------------------------------------------------------------------

// Boot applies the initial output, schedules the boot flash and publishes
// the initial retained state and configuration.
func (s *Service) Boot(now time.Time) {
	if s.bootFlash > 0 && s.act != nil {
		s.flashing = true
		s.act.Apply(true, 30, types.Color{R: 255, G: 255, B: 255}, s.cfg.MinPWM, s.cfg.MaxPWM)
		s.timers.After(now, s.bootFlash, func(time.Time) {
			s.flashing = false
			s.hasOut = false
		})
	}
	s.applyOutput()
	s.publishConfig()
	s.publishState(now, true)
	s.log.Info("lamp ready", "session", s.st.SessionID, "brightness", s.st.Brightness)
}

// Tick runs one cooperative iteration.
func (s *Service) Tick(now time.Time) {
	s.ticks.Add(1)
	s.timers.Run(now)
	s.eng.Loop()
	s.applyOutput()
	s.publishState(now, false)
}

// Run drives the service until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.ctx = ctx
	cmdSub := s.conn.Subscribe(TopicCommand)
	btnSub := s.conn.Subscribe(TopicButton)
	defer s.conn.Unsubscribe(cmdSub)
	defer s.conn.Unsubscribe(btnSub)

	s.Boot(s.clock.Now())

	tick := time.NewTicker(s.tickEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.eng.Stop()
			s.log.Info("lamp service stopping")
			return ctx.Err()

		case <-tick.C:
			s.Tick(s.clock.Now())

		case msg := <-cmdSub.Channel():
			cmd, ok := msg.Payload.(types.Command)
			if !ok {
				s.log.Warn("dropping non-command payload", "topic", msg.Topic.String())
				continue
			}
			_ = s.Handle(cmd)

		case msg := <-btnSub.Channel():
			if ev, ok := msg.Payload.(types.ButtonEvent); ok {
				s.HandleButton(ev)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Output and publication
// -----------------------------------------------------------------------------

func (s *Service) applyOutput() {
	if s.act == nil || s.flashing {
		return
	}
	o := output{s.st.PowerOn, s.st.Brightness, s.st.Color, s.cfg.MinPWM, s.cfg.MaxPWM}
	if s.hasOut && o == s.applied {
		return
	}
	d := s.act.Apply(o.power, o.brightness, o.color, o.minPWM, o.maxPWM)
	s.applied, s.hasOut = o, true
	s.metrics.ActuatorApplied()
	s.log.Trace("applied", "power", o.power, "brightness", o.brightness, "color", o.color.String(), "duty", d)
}

// publishState emits the retained state when the version moved, at most
// once per publish interval unless forced.
func (s *Service) publishState(now time.Time, force bool) {
	if s.conn == nil {
		return
	}
	if !force {
		if s.published && s.st.Version == s.pubVersion {
			return
		}
		if s.published && now.Sub(s.pubAt) < s.pubEvery {
			return
		}
	}
	s.conn.Publish(s.conn.NewMessage(TopicState, s.st.Snapshot(), true))
	s.pubVersion = s.st.Version
	s.pubAt = now
	s.published = true
	s.metrics.StatePublished(s.st.Version)
}

func (s *Service) publishConfig() {
	if s.conn == nil {
		return
	}
	config.PublishDevice(s.conn, &s.cfg)
}
