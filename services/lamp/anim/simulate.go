package anim

import (
	"time"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/state"
	"lampcode-go/types"
	"lampcode-go/x/timex"
)

// Sample is the visible output at one instant.
type Sample struct {
	At         time.Duration
	Power      bool
	Brightness uint8
	Color      types.Color
	Progress   uint8
}

// Simulate runs eff on a manual clock from a lamp that is on at the
// configured defaults, sampling every step until span passes or the effect
// completes. The final sample is always taken after completion.
func Simulate(cfg config.Device, eff Effect, p Params, span, step time.Duration) []Sample {
	if step <= 0 {
		step = frameEvery
	}
	clk := timex.NewManual(time.Unix(0, 0))
	st := state.New()
	st.PowerOn = true
	st.Brightness = cfg.DefaultBrightness
	st.Color = cfg.DefaultColor

	e := New(clk, nil)
	e.Begin(st, &cfg)
	e.Start(eff, p)

	snap := func(at time.Duration) Sample {
		return Sample{At: at, Power: st.PowerOn, Brightness: st.Brightness, Color: st.Color, Progress: st.Progress}
	}
	out := []Sample{snap(0)}
	for at := step; at <= span; at += step {
		clk.Advance(step)
		done := e.Loop()
		out = append(out, snap(at))
		if done {
			break
		}
	}
	return out
}
