package anim

import (
	"time"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
	"lampcode-go/x/optx"
)

// sunrise ramps brightness from 1% up to a final level with the colour held.
type sunrise struct {
	run
	duration time.Duration
	final    uint8
	color    types.Color
}

func newSunrise() *sunrise { return &sunrise{run: run{every: rampEvery}} }

func (*sunrise) Effect() Effect { return Sunrise }

func (g *sunrise) Start(st *state.Device, cfg *config.Device, p Params, now time.Time) {
	if st == nil || cfg == nil {
		return
	}
	minutes := mathx.Clamp(optx.Or(p.Duration, cfg.SunriseMinutes), 1, 180)
	g.duration = time.Duration(minutes) * time.Minute
	g.final = uint8(mathx.Clamp(optx.Or(p.Brightness, int(cfg.SunriseFinalBrightness)), 1, 100))
	g.color = optx.Or(p.Color, cfg.DefaultColor)
	g.begin(now)

	enter(st, Sunrise, types.Preview{
		DurationMinutes: minutes,
		FinalBrightness: g.final,
		FinalColor:      g.color,
		End:             types.EndStatic,
	})
	st.Brightness = 1
	st.Color = g.color
	st.BumpVersion()
}

func (g *sunrise) Update(st *state.Device, now time.Time) bool {
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
		st.PowerOn = true
		st.Brightness = g.final
		st.Color = g.color
		st.Progress = 100
		st.BumpVersion()
		return true
	}
	show(st, mathx.RoundU8(1+float64(g.final-1)*p), g.color, progressPct(p))
	return false
}
