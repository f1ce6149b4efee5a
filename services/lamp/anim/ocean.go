package anim

import (
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
	"lampcode-go/x/optx"
)

const (
	oceanStep       = 0.005 // phase per frame per unit of speed
	oceanSpeed      = 5
	oceanBrightness = 70
)

var (
	oceanDeep = types.Color{R: 0, G: 100, B: 180}
	oceanCyan = types.Color{R: 0, G: 180, B: 220}
	oceanTeal = types.Color{R: 0, G: 200, B: 180}
)

// ocean layers three sine waves into a blue/cyan/teal drift with a slow
// brightness swell.
type ocean struct {
	run
	speed int
	max   uint8
	phase float64 // [0, 2π)
}

func newOcean() *ocean { return &ocean{run: run{every: frameEvery}} }

func (*ocean) Effect() Effect { return Ocean }

func (g *ocean) Start(st *state.Device, _ *config.Device, p Params, now time.Time) {
	if st == nil {
		return
	}
	g.speed = mathx.Clamp(optx.Or(p.Speed, oceanSpeed), 1, 10)
	g.max = uint8(mathx.Clamp(optx.Or(p.Brightness, oceanBrightness), 0, 100))
	g.phase = 0
	g.begin(now)
	enter(st, Ocean, types.Preview{
		FinalBrightness: g.max,
		FinalColor:      types.Color{R: 0, G: 150, B: 200},
		End:             types.EndLoop,
	})
	st.BumpVersion()
}

func toColorful(c types.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func blend(a, b types.Color, t float64) types.Color {
	r, g, bl := toColorful(a).BlendRgb(toColorful(b), mathx.Clamp(t, 0, 1)).RGB255()
	return types.Color{R: r, G: g, B: bl}
}

func (g *ocean) Update(st *state.Device, now time.Time) bool {
	if st == nil {
		return false
	}
	e, ok := g.due(now)
	if !ok {
		return false
	}
	g.phase = math.Mod(oceanStep*float64(g.speed)*float64(e)/float64(frameEvery), 2*math.Pi)
	ph := g.phase
	w := (0.5*math.Sin(ph) + 0.3*math.Sin(1.3*ph+1) + 0.2*math.Sin(0.7*ph+2) + 1) / 2

	var c types.Color
	if w < 0.5 {
		c = blend(oceanDeep, oceanCyan, 2*w)
	} else {
		c = blend(oceanCyan, oceanTeal, 2*w-1)
	}
	bri := mathx.RoundU8(float64(g.max) * (0.7 + 0.3*math.Sin(ph/2)))
	show(st, bri, c, progressPct(ph/(2*math.Pi)))
	return false
}
