package anim

import (
	"github.com/hashicorp/go-hclog"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/optx"
	"lampcode-go/x/timex"
)

// Engine owns one generator per effect and keeps at most one active.
// It is not safe for concurrent use; the lamp loop drives it.
type Engine struct {
	clock timex.Clock
	log   hclog.Logger

	st  *state.Device
	cfg *config.Device

	gens [numEffects]Generator

	// OnStart, when set, is called after an effect starts.
	OnStart func(Effect)
}

// New builds an engine with every generator idle. Nothing runs until Begin.
func New(clock timex.Clock, log hclog.Logger) *Engine {
	if clock == nil {
		clock = timex.System{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	e := &Engine{clock: clock, log: log.Named("anim")}
	e.register(newSunrise())
	e.register(newSunset())
	e.register(newRainbow())
	e.register(newFire())
	e.register(newBreathe())
	e.register(newOcean())
	return e
}

func (e *Engine) register(g Generator) { e.gens[g.Effect()] = g }

// Begin binds the engine to the state it drives and the configuration it
// reads defaults from.
func (e *Engine) Begin(st *state.Device, cfg *config.Device) {
	e.st = st
	e.cfg = cfg
}

func (e *Engine) bound() bool { return e.st != nil && e.cfg != nil }

// Start stops whatever is running and starts eff with p.
func (e *Engine) Start(eff Effect, p Params) {
	if !e.bound() || eff >= numEffects {
		return
	}
	e.Stop()
	e.gens[eff].Start(e.st, e.cfg, p, e.clock.Now())
	e.log.Info("effect started", "effect", eff.String())
	if e.OnStart != nil {
		e.OnStart(eff)
	}
}

// StartSunrise ramps up over duration minutes to final brightness in color.
func (e *Engine) StartSunrise(duration, final *int, color *types.Color) {
	e.Start(Sunrise, Params{Duration: duration, Brightness: final, Color: color})
}

func (e *Engine) StartSunset(duration, final *int) {
	e.Start(Sunset, Params{Duration: duration, Brightness: final})
}

func (e *Engine) StartRainbow() { e.Start(Rainbow, Params{}) }

func (e *Engine) StartFire(intensity, speed *int) {
	e.Start(Fire, Params{Intensity: intensity, Speed: speed})
}

func (e *Engine) StartBreathe(cycle, hi, lo *int, color *types.Color) {
	e.Start(Breathe, Params{Cycle: cycle, Brightness: hi, MinBrightness: lo, Color: color})
}

func (e *Engine) StartOcean(speed, brightness *int) {
	e.Start(Ocean, Params{Speed: speed, Brightness: brightness})
}

// StartFavorite starts the configured favourite. An unknown name falls
// back to fire with its defaults.
func (e *Engine) StartFavorite() {
	if !e.bound() {
		return
	}
	fav := e.cfg.Favorite
	eff, ok := ParseEffect(fav.Name)
	if !ok {
		e.log.Warn("unknown favourite, using fire", "favorite", fav.Name)
		e.Start(Fire, Params{})
		return
	}
	var p Params
	for i, key := range config.FavoriteKeys[eff.String()] {
		if v := fav.Param(i); v != nil {
			p.set(key, optx.Of(*v))
		}
	}
	if fav.Color != nil {
		p.Color = optx.Of(*fav.Color)
	}
	e.Start(eff, p)
}

// Stop stops the active effect, if any.
func (e *Engine) Stop() {
	if e.st == nil {
		return
	}
	for _, g := range e.gens {
		if g != nil && g.IsActive() {
			g.Stop(e.st)
			e.log.Debug("effect stopped", "effect", g.Effect().String())
		}
	}
}

func (e *Engine) SetPaused(paused bool) {
	if e.st == nil {
		return
	}
	if g := e.active(); g != nil {
		g.SetPaused(paused, e.st, e.clock.Now())
	}
}

func (e *Engine) TogglePause() {
	if g := e.active(); g != nil {
		e.SetPaused(!g.IsPaused())
	}
}

// Loop advances the active effect. It reports true on the tick a finite
// effect completes. Cheap when nothing is running.
func (e *Engine) Loop() bool {
	if !e.bound() {
		return false
	}
	g := e.active()
	if g == nil {
		return false
	}
	done := g.Update(e.st, e.clock.Now())
	if done {
		e.log.Info("effect complete", "effect", g.Effect().String())
	}
	return done
}

func (e *Engine) IsActive() bool { return e.active() != nil }

// Active returns the running effect.
func (e *Engine) Active() (Effect, bool) {
	if g := e.active(); g != nil {
		return g.Effect(), true
	}
	return 0, false
}

func (e *Engine) IsPaused() bool {
	g := e.active()
	return g != nil && g.IsPaused()
}

func (e *Engine) active() Generator {
	for _, g := range e.gens {
		if g != nil && g.IsActive() {
			return g
		}
	}
	return nil
}
