package anim

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/optx"
	"lampcode-go/x/timex"
)

var t0 = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

type rig struct {
	eng *Engine
	st  *state.Device
	cfg *config.Device
	clk *timex.Manual
}

func newRig(t *testing.T) *rig {
	t.Helper()
	cfg := config.Builtin()
	r := &rig{
		eng: New(timex.NewManual(t0), hclog.NewNullLogger()),
		st:  state.New(),
		cfg: &cfg,
	}
	r.clk = r.eng.clock.(*timex.Manual)
	r.eng.Begin(r.st, r.cfg)
	return r
}

// step advances the clock by d and runs one loop.
func (r *rig) step(d time.Duration) bool {
	r.clk.Advance(d)
	return r.eng.Loop()
}

func (r *rig) activeCount() int {
	n := 0
	for _, g := range r.eng.gens {
		if g.IsActive() {
			n++
		}
	}
	return n
}

// frame is the visible output minus bookkeeping.
type frame struct {
	Power      bool
	Brightness uint8
	Color      types.Color
	Progress   uint8
	Mode       types.Mode
	Paused     bool
}

func (r *rig) frame() frame {
	return frame{r.st.PowerOn, r.st.Brightness, r.st.Color, r.st.Progress, r.st.Mode, r.st.Paused}
}

// spy records stop calls on the generator it wraps.
type spy struct {
	Generator
	stops int
}

func (s *spy) Stop(st *state.Device) {
	s.stops++
	s.Generator.Stop(st)
}

func TestScenario_SunriseToCompletion(t *testing.T) {
	r := newRig(t)
	r.eng.StartSunrise(optx.Of(1), optx.Of(80), &types.Color{R: 200, G: 100, B: 50})
	require.False(t, r.eng.Loop())
	assert.Equal(t, uint8(1), r.st.Brightness)

	trues := 0
	for i := 0; i < 600; i++ {
		if r.step(100 * time.Millisecond) {
			trues++
		}
	}
	assert.Equal(t, 1, trues)
	assert.Equal(t, uint8(100), r.st.Progress)
	assert.Equal(t, uint8(80), r.st.Brightness)
	assert.Equal(t, types.Color{R: 200, G: 100, B: 50}, r.st.Color)
	assert.Equal(t, types.ModeStatic, r.st.Mode)
	assert.True(t, r.st.PowerOn)
	assert.False(t, r.eng.IsActive())

	assert.False(t, r.step(time.Second))
	assert.Equal(t, uint8(100), r.st.Progress)
}

func TestSunrise_MonotonicAndExactFinal(t *testing.T) {
	r := newRig(t)
	r.cfg.SunriseFinalBrightness = 93
	r.eng.StartSunrise(optx.Of(2), nil, nil)
	assert.Equal(t, r.cfg.DefaultColor, r.st.Color)

	last := r.st.Brightness
	done := false
	for i := 0; i < 10000 && !done; i++ {
		done = r.step(37 * time.Millisecond)
		require.GreaterOrEqual(t, r.st.Brightness, last)
		last = r.st.Brightness
		if !done {
			require.Less(t, r.st.Progress, uint8(100))
		}
	}
	require.True(t, done)
	assert.Equal(t, uint8(93), r.st.Brightness)
}

func TestSunrise_Midpoint(t *testing.T) {
	r := newRig(t)
	r.eng.StartSunrise(optx.Of(1), optx.Of(80), nil)
	r.eng.Loop()
	r.step(30 * time.Second)
	assert.Equal(t, uint8(41), r.st.Brightness)
	assert.Equal(t, uint8(50), r.st.Progress)
	assert.Equal(t, types.ModeAnimation, r.st.Mode)
	assert.Equal(t, "sunrise", r.st.Animation)
}

func TestSunrise_ClampsParams(t *testing.T) {
	r := newRig(t)
	r.eng.StartSunrise(optx.Of(999), optx.Of(0), nil)
	assert.Equal(t, 180, r.st.Preview.DurationMinutes)
	assert.Equal(t, uint8(1), r.st.Preview.FinalBrightness)
	assert.Equal(t, types.EndStatic, r.st.Preview.End)

	r.eng.StartSunrise(optx.Of(0), nil, nil)
	assert.Equal(t, 1, r.st.Preview.DurationMinutes)
}

func TestSunset_PowerOffOnlyOnCompletionTick(t *testing.T) {
	r := newRig(t)
	r.st.PowerOn = true
	r.st.Brightness = 60
	r.eng.StartSunset(optx.Of(1), optx.Of(0))
	assert.Equal(t, types.EndOff, r.st.Preview.End)

	done := false
	for i := 0; i < 1000 && !done; i++ {
		done = r.step(100 * time.Millisecond)
		if !done {
			require.True(t, r.st.PowerOn, "power cleared before completion at step %d", i)
		}
	}
	require.True(t, done)
	assert.False(t, r.st.PowerOn)
	assert.Equal(t, uint8(0), r.st.Brightness)
	assert.Equal(t, uint8(100), r.st.Progress)
	assert.Equal(t, types.ModeStatic, r.st.Mode)
}

func TestSunset_MidpointAndNonZeroFinal(t *testing.T) {
	r := newRig(t)
	r.st.Brightness = 60
	r.st.Color = types.Color{R: 255, G: 147, B: 41}
	r.eng.StartSunset(optx.Of(1), nil)
	r.eng.Loop()
	r.step(30 * time.Second)
	assert.Equal(t, uint8(30), r.st.Brightness)
	assert.Equal(t, types.Color{R: 255, G: 99, B: 12}, r.st.Color)
	assert.Equal(t, uint8(50), r.st.Progress)

	r.step(20 * time.Second)
	assert.Equal(t, sunsetWarm, r.st.Color)

	r.eng.StartSunset(optx.Of(1), optx.Of(30))
	assert.Equal(t, types.EndStatic, r.st.Preview.End)
	require.True(t, r.step(time.Minute))
	assert.True(t, r.st.PowerOn)
	assert.Equal(t, uint8(30), r.st.Brightness)
}

func TestRainbow_HueFollowsTime(t *testing.T) {
	r := newRig(t)
	r.cfg.DefaultBrightness = 100
	r.eng.StartRainbow()
	assert.Equal(t, types.EndLoop, r.st.Preview.End)

	r.eng.Loop()
	assert.Equal(t, types.Color{R: 255}, r.st.Color)
	assert.Equal(t, uint8(100), r.st.Brightness)

	r.step(5 * time.Second)
	assert.Equal(t, types.Color{G: 255, B: 255}, r.st.Color)
	assert.Equal(t, uint8(50), r.st.Progress)

	// value tracks live brightness
	r.st.Brightness = 0
	r.step(time.Second)
	assert.Equal(t, types.Color{}, r.st.Color)

	for i := 0; i < 100; i++ {
		assert.False(t, r.step(time.Second))
	}
	assert.True(t, r.eng.IsActive())
}

func TestFire_FirstFrameAndBounds(t *testing.T) {
	r := newRig(t)
	r.eng.StartFire(nil, nil)
	r.eng.Loop()
	assert.Equal(t, types.Color{R: 255, G: 130}, r.st.Color)
	assert.Equal(t, uint8(35), r.st.Brightness)

	for i := 0; i < 500; i++ {
		require.False(t, r.step(33*time.Millisecond))
		require.Equal(t, uint8(255), r.st.Color.R)
		require.Zero(t, r.st.Color.B)
		require.GreaterOrEqual(t, r.st.Color.G, uint8(80))
		require.LessOrEqual(t, r.st.Color.G, uint8(180))
		require.GreaterOrEqual(t, r.st.Brightness, uint8(21))
		require.LessOrEqual(t, r.st.Brightness, uint8(70))
		require.Zero(t, r.st.Progress)
	}
}

func TestFire_ZeroIntensityHoldsBrightness(t *testing.T) {
	r := newRig(t)
	r.eng.StartFire(optx.Of(0), optx.Of(10))
	for i := 0; i < 50; i++ {
		r.step(50 * time.Millisecond)
		require.Equal(t, uint8(35), r.st.Brightness)
	}
}

func TestBreathe_Envelope(t *testing.T) {
	r := newRig(t)
	r.eng.StartBreathe(optx.Of(4), optx.Of(70), optx.Of(10), nil)
	r.eng.Loop()
	assert.Equal(t, uint8(10), r.st.Brightness)

	r.step(time.Second)
	assert.Equal(t, uint8(40), r.st.Brightness)
	assert.Equal(t, uint8(25), r.st.Progress)

	r.step(time.Second)
	assert.Equal(t, uint8(70), r.st.Brightness)
	assert.Equal(t, uint8(50), r.st.Progress)

	r.step(2 * time.Second)
	assert.Equal(t, uint8(10), r.st.Brightness)
	assert.Equal(t, uint8(0), r.st.Progress)
}

func TestBreathe_ColorAndSwappedBounds(t *testing.T) {
	r := newRig(t)
	r.st.Color = types.Color{R: 9, G: 8, B: 7}
	r.eng.StartBreathe(nil, optx.Of(10), optx.Of(70), nil)
	r.eng.Loop()
	assert.Equal(t, types.Color{R: 9, G: 8, B: 7}, r.st.Color)
	assert.Equal(t, uint8(10), r.st.Brightness)
	assert.Equal(t, uint8(70), r.st.Preview.FinalBrightness)

	// a present zero colour is black, not "unset"
	r.eng.StartBreathe(nil, nil, nil, &types.Color{})
	r.eng.Loop()
	assert.Equal(t, types.Color{}, r.st.Color)
}

func TestOcean_FirstFrameAndRange(t *testing.T) {
	r := newRig(t)
	r.eng.StartOcean(nil, nil)
	r.eng.Loop()
	assert.Equal(t, uint8(49), r.st.Brightness)
	assert.Zero(t, r.st.Color.R)
	assert.Zero(t, r.st.Progress)

	for i := 0; i < 2000; i++ {
		require.False(t, r.step(40*time.Millisecond))
		c := r.st.Color
		require.Zero(t, c.R)
		require.GreaterOrEqual(t, c.G, uint8(100))
		require.LessOrEqual(t, c.G, uint8(200))
		require.GreaterOrEqual(t, c.B, uint8(180))
		require.LessOrEqual(t, c.B, uint8(220))
		require.GreaterOrEqual(t, r.st.Brightness, uint8(49))
		require.LessOrEqual(t, r.st.Brightness, uint8(70))
		require.Less(t, r.st.Progress, uint8(100))
	}
}

func TestExclusivity_AnySequence(t *testing.T) {
	r := newRig(t)
	starts := []func(){
		func() { r.eng.StartSunrise(nil, nil, nil) },
		r.eng.StartRainbow,
		func() { r.eng.StartFire(nil, nil) },
		func() { r.eng.StartFire(optx.Of(10), nil) },
		func() { r.eng.StartBreathe(nil, nil, nil, nil) },
		func() { r.eng.StartOcean(nil, nil) },
		func() { r.eng.StartSunset(nil, nil) },
		r.eng.StartFavorite,
		r.eng.Stop,
		r.eng.StartRainbow,
	}
	for i, start := range starts {
		start()
		r.step(50 * time.Millisecond)
		require.LessOrEqual(t, r.activeCount(), 1, "after call %d", i)
		if eff, ok := r.eng.Active(); ok {
			assert.Equal(t, types.ModeAnimation, r.st.Mode)
			assert.Equal(t, eff.String(), r.st.Animation)
		} else {
			assert.Equal(t, types.ModeStatic, r.st.Mode)
		}
	}
}

func TestScenario_ExclusivitySwitch(t *testing.T) {
	r := newRig(t)
	sp := &spy{Generator: newSunrise()}
	r.eng.register(sp)

	r.eng.StartSunrise(optx.Of(10), optx.Of(90), nil)
	require.True(t, sp.IsActive())
	r.eng.StartRainbow()

	assert.False(t, sp.IsActive())
	assert.True(t, r.eng.gens[Rainbow].IsActive())
	assert.Equal(t, 1, sp.stops)
	eff, ok := r.eng.Active()
	assert.True(t, ok)
	assert.Equal(t, Rainbow, eff)
}

func TestPauseResume_NoDrift(t *testing.T) {
	for _, eff := range Effects() {
		t.Run(eff.String(), func(t *testing.T) {
			paused, ref := newRig(t), newRig(t)
			p := Params{Duration: optx.Of(1)}
			for _, r := range []*rig{paused, ref} {
				r.st.Brightness = 50
				r.eng.Start(eff, p)
				r.eng.Loop()
				for i := 0; i < 20; i++ {
					r.step(110 * time.Millisecond)
				}
			}
			before := paused.frame()

			paused.eng.SetPaused(true)
			require.True(t, paused.eng.IsPaused())
			assert.True(t, paused.st.Paused)
			for i := 0; i < 30; i++ {
				assert.False(t, paused.step(time.Second))
			}
			paused.eng.SetPaused(false)
			paused.eng.Loop()
			after := paused.frame()
			before.Paused, after.Paused = false, false
			assert.Equal(t, before, after)

			for i := 0; i < 20; i++ {
				paused.step(110 * time.Millisecond)
				ref.step(110 * time.Millisecond)
			}
			assert.Equal(t, ref.frame(), paused.frame())
		})
	}
}

func TestTogglePause(t *testing.T) {
	r := newRig(t)
	v := r.st.Version
	r.eng.TogglePause()
	assert.Equal(t, v, r.st.Version, "no active effect, no change")

	r.eng.StartOcean(nil, nil)
	r.eng.TogglePause()
	assert.True(t, r.eng.IsPaused())
	assert.True(t, r.st.Paused)
	r.eng.TogglePause()
	assert.False(t, r.eng.IsPaused())
	assert.False(t, r.st.Paused)
}

func TestVersion_StrictlyIncreasesOnMutations(t *testing.T) {
	r := newRig(t)
	mutations := []func(){
		func() { r.eng.StartSunrise(nil, nil, nil) },
		func() { r.eng.SetPaused(true) },
		func() { r.eng.SetPaused(false) },
		func() { r.eng.StartBreathe(nil, nil, nil, nil) },
		r.eng.Stop,
		r.eng.StartFavorite,
		r.eng.TogglePause,
	}
	last := r.st.Version
	for i, m := range mutations {
		m()
		require.Greater(t, r.st.Version, last, "mutation %d", i)
		last = r.st.Version
		r.step(time.Second)
		require.GreaterOrEqual(t, r.st.Version, last)
		last = r.st.Version
	}
}

func TestStop_Idempotent(t *testing.T) {
	r := newRig(t)
	before := *r.st
	r.eng.Stop()
	assert.Equal(t, before, *r.st)
	assert.Zero(t, r.activeCount())

	r.eng.StartFire(nil, nil)
	r.eng.Stop()
	stopped := *r.st
	r.eng.Stop()
	assert.Equal(t, stopped, *r.st)
	assert.Zero(t, r.activeCount())
}

func TestScenario_FavoriteDispatch(t *testing.T) {
	fav, direct := newRig(t), newRig(t)
	fav.cfg.Favorite = config.Favorite{Name: "breathe", Params: []*int{optx.Of(4), optx.Of(70), optx.Of(10)}}

	fav.eng.StartFavorite()
	direct.eng.StartBreathe(optx.Of(4), optx.Of(70), optx.Of(10), nil)

	snap := func(r *rig) types.StatePayload {
		s := r.st.Snapshot()
		s.Session = ""
		return s
	}
	assert.Equal(t, snap(direct), snap(fav))
	for i := 0; i < 10; i++ {
		fav.step(300 * time.Millisecond)
		direct.step(300 * time.Millisecond)
		require.Equal(t, snap(direct), snap(fav))
	}
}

func TestFavorite_UnknownFallsBackToFire(t *testing.T) {
	r := newRig(t)
	r.cfg.Favorite = config.Favorite{Name: "disco"}
	r.eng.StartFavorite()
	eff, ok := r.eng.Active()
	require.True(t, ok)
	assert.Equal(t, Fire, eff)
}

func TestFavorite_Defaults(t *testing.T) {
	r := newRig(t)
	r.eng.StartFavorite()
	eff, _ := r.eng.Active()
	assert.Equal(t, Fire, eff)
	f := r.eng.gens[Fire].(*fire)
	assert.Equal(t, 70, f.intensity)
	assert.Equal(t, 5, f.speed)
}

func TestUnbound_NoOps(t *testing.T) {
	e := New(timex.NewManual(t0), nil)
	assert.NotPanics(t, func() {
		e.StartSunrise(nil, nil, nil)
		e.StartFavorite()
		e.SetPaused(true)
		e.TogglePause()
		e.Stop()
		assert.False(t, e.Loop())
	})
	assert.False(t, e.IsActive())
	assert.False(t, e.IsPaused())
}

func TestOnStart(t *testing.T) {
	r := newRig(t)
	var got []Effect
	r.eng.OnStart = func(e Effect) { got = append(got, e) }
	r.eng.StartOcean(nil, nil)
	r.eng.StartFavorite()
	assert.Equal(t, []Effect{Ocean, Fire}, got)
}
