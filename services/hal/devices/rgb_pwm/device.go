package rgb_pwm

import (
	"math"

	"lampcode-go/types"
	"lampcode-go/x/mathx"
)

// Output is a multi-channel PWM sink. pca9685.Dev satisfies it.
type Output interface {
	Set(channel uint8, duty uint32)
	Top() uint32
}

// Channels maps colour components to output channels.
type Channels struct {
	R, G, B uint8
}

// Duty is one applied set of raw duties.
type Duty struct {
	R, G, B uint32
}

type Params struct {
	Channels  Channels
	ActiveLow bool // output sinks current: duty is inverted against Top
}

// Device maps the logical lamp tuple onto three PWM channels.
type Device struct {
	out       Output
	ch        Channels
	activeLow bool
}

func New(out Output, p Params) *Device {
	return &Device{out: out, ch: p.Channels, activeLow: p.ActiveLow}
}

// Physical maps a logical 0..100 brightness into the calibrated
// [minPWM,maxPWM] window as a 0..1 fraction. Zero stays zero.
func Physical(brightness, minPWM, maxPWM uint8) float64 {
	l := mathx.Clamp(float64(brightness), 0, 100) / 100
	if l == 0 {
		return 0
	}
	lo := mathx.Clamp(float64(minPWM), 0, 100) / 100
	hi := mathx.Clamp(float64(maxPWM), 0, 100) / 100
	return mathx.MapRange(l, 0, 1, lo, hi)
}

// Compute returns the duties for the tuple without touching the output.
func Compute(power bool, brightness uint8, c types.Color, minPWM, maxPWM uint8, top uint32) Duty {
	if !power {
		return Duty{}
	}
	phys := Physical(brightness, minPWM, maxPWM)
	duty := func(v uint8) uint32 {
		adj := mathx.RoundU8(float64(v) * phys)
		return uint32(math.Round(float64(adj) / 255 * float64(top)))
	}
	return Duty{R: duty(c.R), G: duty(c.G), B: duty(c.B)}
}

func (d *Device) toPhys(v uint32) uint32 {
	top := d.out.Top()
	if v > top {
		v = top
	}
	if !d.activeLow {
		return v
	}
	return top - v
}

// Apply drives the outputs and returns the logical duties written.
func (d *Device) Apply(power bool, brightness uint8, c types.Color, minPWM, maxPWM uint8) Duty {
	duty := Compute(power, brightness, c, minPWM, maxPWM, d.out.Top())
	d.out.Set(d.ch.R, d.toPhys(duty.R))
	d.out.Set(d.ch.G, d.toPhys(duty.G))
	d.out.Set(d.ch.B, d.toPhys(duty.B))
	return duty
}
