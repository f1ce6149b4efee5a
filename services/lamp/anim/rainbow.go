package anim

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
)

// rainbowPeriod is one full trip around the hue circle.
const rainbowPeriod = 10 * time.Second

// rainbow cycles the hue at full saturation. Value follows the live state
// brightness, so brightness commands keep working while it runs.
type rainbow struct {
	run
}

func newRainbow() *rainbow { return &rainbow{run: run{every: frameEvery}} }

func (*rainbow) Effect() Effect { return Rainbow }

func (g *rainbow) Start(st *state.Device, cfg *config.Device, _ Params, now time.Time) {
	if st == nil || cfg == nil {
		return
	}
	g.begin(now)
	enter(st, Rainbow, types.Preview{FinalBrightness: cfg.DefaultBrightness, End: types.EndLoop})
	st.Brightness = cfg.DefaultBrightness
	st.BumpVersion()
}

func (g *rainbow) Update(st *state.Device, now time.Time) bool {
	if st == nil {
		return false
	}
	e, ok := g.due(now)
	if !ok {
		return false
	}
	frac := mathx.Frac(float64(e), float64(rainbowPeriod))
	v := mathx.Clamp(float64(st.Brightness)/100, 0, 1)
	r, gr, b := colorful.Hsv(360*frac, 1, v).RGB255()
	show(st, st.Brightness, types.Color{R: r, G: gr, B: b}, progressPct(frac))
	return false
}
