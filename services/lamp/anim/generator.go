package anim

import (
	"time"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
)

// Generator is one effect's progression law plus its own timing state.
// Configuration is only read inside Start.
type Generator interface {
	Effect() Effect
	Start(st *state.Device, cfg *config.Device, p Params, now time.Time)
	Stop(st *state.Device)
	SetPaused(paused bool, st *state.Device, now time.Time)
	// Update recomputes the output. It returns true exactly once, on the
	// tick that completes a finite effect.
	Update(st *state.Device, now time.Time) bool
	IsActive() bool
	IsPaused() bool
}

// Recompute cadences.
const (
	rampEvery  = 100 * time.Millisecond
	frameEvery = 33 * time.Millisecond
)

// run is the timing state shared by every generator. All progress is a
// function of elapsed run time, which is frozen while paused, so pausing
// never moves progress.
type run struct {
	active bool
	paused bool
	start  time.Time
	frozen time.Duration // elapsed at the moment of pausing
	last   time.Duration // elapsed at the previous recompute
	fresh  bool          // no recompute since start
	every  time.Duration
}

func (r *run) begin(now time.Time) {
	*r = run{active: true, start: now, fresh: true, every: r.every}
}

func (r *run) elapsed(now time.Time) time.Duration {
	if r.paused {
		return r.frozen
	}
	if e := now.Sub(r.start); e > 0 {
		return e
	}
	return 0
}

// due reports whether a recompute should happen now and the elapsed time
// to compute it at. The first call after begin is always due.
func (r *run) due(now time.Time) (time.Duration, bool) {
	if !r.active || r.paused {
		return 0, false
	}
	e := r.elapsed(now)
	if !r.fresh && e-r.last < r.every {
		return 0, false
	}
	r.fresh = false
	r.last = e
	return e, true
}

// finish marks the run inactive without touching state.
func (r *run) finish() {
	r.active = false
	r.paused = false
}

func (r *run) Stop(st *state.Device) {
	if !r.active || st == nil {
		return
	}
	r.finish()
	st.SetStaticMode()
}

func (r *run) SetPaused(paused bool, st *state.Device, now time.Time) {
	if !r.active || st == nil {
		return
	}
	switch {
	case paused && !r.paused:
		r.frozen = r.elapsed(now)
		r.paused = true
		st.SetPaused(true)
	case !paused && r.paused:
		r.start = now.Add(-r.frozen)
		r.paused = false
		st.SetPaused(false)
	}
}

func (r *run) IsActive() bool { return r.active }
func (r *run) IsPaused() bool { return r.paused }

// show writes one frame into the device state, bumping the version only
// when something visible changed.
func show(st *state.Device, brightness uint8, c types.Color, progress uint8) {
	if st.PowerOn && st.Brightness == brightness && st.Color == c && st.Progress == progress {
		return
	}
	st.PowerOn = true
	st.Brightness = brightness
	st.Color = c
	st.Progress = progress
	st.BumpVersion()
}

// enter moves the state into animation mode for e with the given preview.
func enter(st *state.Device, e Effect, pv types.Preview) {
	st.SetAnimationMode(e.String())
	st.PowerOn = true
	st.Preview = pv
}

// progressPct floors frac*100 into 0..99 so 100 is only reported on
// completion.
func progressPct(frac float64) uint8 {
	switch {
	case frac <= 0:
		return 0
	case frac >= 0.99:
		return 99
	}
	return uint8(frac*100 + 1e-9)
}
