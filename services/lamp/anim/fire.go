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
	fireBase      = 70   // brightness the flicker centres on
	fireStep      = 0.01 // phase per frame per unit of speed
	fireIntensity = 70
	fireSpeed     = 5
)

// fire flickers a warm colour and brightness from a sum of sines.
type fire struct {
	run
	intensity int
	speed     int
	phase     float64
}

func newFire() *fire { return &fire{run: run{every: frameEvery}} }

func (*fire) Effect() Effect { return Fire }

func (g *fire) Start(st *state.Device, _ *config.Device, p Params, now time.Time) {
	if st == nil {
		return
	}
	g.intensity = mathx.Clamp(optx.Or(p.Intensity, fireIntensity), 0, 100)
	g.speed = mathx.Clamp(optx.Or(p.Speed, fireSpeed), 1, 10)
	g.phase = 0
	g.begin(now)
	enter(st, Fire, types.Preview{End: types.EndLoop})
	st.BumpVersion()
}

// flicker is a deterministic noise value in [-1,1].
func flicker(x float64) float64 {
	n := 0.5*math.Sin(x) + 0.3*math.Sin(2.3*x) + 0.2*math.Sin(4.7*x)
	return mathx.Clamp(n, -1, 1)
}

func (g *fire) Update(st *state.Device, now time.Time) bool {
	if st == nil {
		return false
	}
	e, ok := g.due(now)
	if !ok {
		return false
	}
	g.phase = fireStep * float64(g.speed) * float64(e) / float64(frameEvery)
	n := flicker(g.phase)

	c := types.Color{R: 255, G: mathx.RoundU8(80 + 100*(n+1)/2), B: 0}
	f := mathx.Clamp(0.5+0.5*n*float64(g.intensity)/100, 0.3, 1)
	show(st, mathx.RoundU8(fireBase*f), c, 0)
	return false
}
