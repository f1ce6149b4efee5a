package anim

import (
	"time"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
	"lampcode-go/x/optx"
)

// sunsetWarm is the colour a sunset drifts to.
var sunsetWarm = types.Color{R: 255, G: 80, B: 0}

// The colour reaches sunsetWarm after this share of the duration.
const sunsetColorShare = 0.7

// sunset dims from the captured brightness to a final level while the
// colour warms up.
type sunset struct {
	run
	duration  time.Duration
	final     uint8
	fromBri   uint8
	fromColor types.Color
}

func newSunset() *sunset { return &sunset{run: run{every: rampEvery}} }

func (*sunset) Effect() Effect { return Sunset }

func (g *sunset) Start(st *state.Device, cfg *config.Device, p Params, now time.Time) {
	if st == nil || cfg == nil {
		return
	}
	minutes := mathx.Clamp(optx.Or(p.Duration, cfg.SunriseMinutes), 1, 180)
	g.duration = time.Duration(minutes) * time.Minute
	g.final = uint8(mathx.Clamp(optx.Or(p.Brightness, 0), 0, 100))
	g.fromBri = st.Brightness
	g.fromColor = st.Color
	g.begin(now)

	end := types.EndStatic
	if g.final == 0 {
		end = types.EndOff
	}
	enter(st, Sunset, types.Preview{
		DurationMinutes: minutes,
		FinalBrightness: g.final,
		FinalColor:      sunsetWarm,
		End:             end,
	})
	st.BumpVersion()
}

func (g *sunset) Update(st *state.Device, now time.Time) bool {
	if st == nil {
		return false
	}
	e, ok := g.due(now)
	if !ok {
		return false
	}
	p := float64(e) / float64(g.duration)
	if p >= 1 {
		g.finish()
		st.SetStaticMode()
		st.PowerOn = g.final != 0
		st.Brightness = g.final
		st.Color = sunsetWarm
		st.Progress = 100
		st.BumpVersion()
		return true
	}
	cp := mathx.Min(p/sunsetColorShare, 1)
	c := types.Color{
		R: mathx.LerpU8(g.fromColor.R, sunsetWarm.R, cp),
		G: mathx.LerpU8(g.fromColor.G, sunsetWarm.G, cp),
		B: mathx.LerpU8(g.fromColor.B, sunsetWarm.B, cp),
	}
	show(st, mathx.LerpU8(g.fromBri, g.final, p), c, progressPct(p))
	return false
}
