package anim

import (
	"math"
	"time"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
	"lampcode-go/x/optx"
)

const (
	breatheCycle = 4
	breatheMax   = 70
	breatheMin   = 10
)

// breathe swings brightness between min and max on a sine envelope.
type breathe struct {
	run
	cycle time.Duration
	max   uint8
	min   uint8
	color types.Color
}

func newBreathe() *breathe { return &breathe{run: run{every: frameEvery}} }

func (*breathe) Effect() Effect { return Breathe }

func (g *breathe) Start(st *state.Device, _ *config.Device, p Params, now time.Time) {
	if st == nil {
		return
	}
	g.cycle = time.Duration(mathx.Clamp(optx.Or(p.Cycle, breatheCycle), 1, 60)) * time.Second
	g.max = uint8(mathx.Clamp(optx.Or(p.Brightness, breatheMax), 0, 100))
	g.min = uint8(mathx.Clamp(optx.Or(p.MinBrightness, breatheMin), 0, 100))
	if g.min > g.max {
		g.min, g.max = g.max, g.min
	}
	g.color = optx.Or(p.Color, st.Color)
	g.begin(now)

	enter(st, Breathe, types.Preview{FinalBrightness: g.max, FinalColor: g.color, End: types.EndLoop})
	st.Color = g.color
	st.BumpVersion()
}

func (g *breathe) Update(st *state.Device, now time.Time) bool {
	if st == nil {
		return false
	}
	e, ok := g.due(now)
	if !ok {
		return false
	}
	p := mathx.Frac(float64(e), float64(g.cycle))
	f := (math.Sin(2*math.Pi*p-math.Pi/2) + 1) / 2
	show(st, mathx.RoundU8(mathx.Lerp(float64(g.min), float64(g.max), f)), g.color, progressPct(p))
	return false
}
