// Package anim holds the six effect generators and the engine that keeps
// at most one of them running.
package anim

import (
	"strconv"

	"lampcode-go/errcode"
	"lampcode-go/types"
	"lampcode-go/x/strx"
)

// Effect names one generator.
type Effect uint8

const (
	Sunrise Effect = iota
	Sunset
	Rainbow
	Fire
	Breathe
	Ocean

	numEffects
)

var effectNames = [numEffects]string{"sunrise", "sunset", "rainbow", "fire", "breathe", "ocean"}

func (e Effect) String() string {
	if e < numEffects {
		return effectNames[e]
	}
	return "effect(" + strconv.Itoa(int(e)) + ")"
}

// ParseEffect maps a name (any case) to its Effect.
func ParseEffect(name string) (Effect, bool) {
	name = strx.Norm(name)
	for i, n := range effectNames {
		if n == name {
			return Effect(i), true
		}
	}
	return 0, false
}

// Effects lists every effect in declaration order.
func Effects() []Effect {
	out := make([]Effect, numEffects)
	for i := range out {
		out[i] = Effect(i)
	}
	return out
}

// Params are the caller-supplied start parameters. A nil field means
// "not supplied": the generator falls back to configuration, current state
// or its own default. A non-nil zero is a real zero.
type Params struct {
	Duration      *int // minutes
	Brightness    *int // final or maximum brightness
	MinBrightness *int
	Cycle         *int // seconds
	Intensity     *int
	Speed         *int
	Color         *types.Color
}

// set assigns the integer parameter named key. It reports false for an
// unknown key.
func (p *Params) set(key string, v *int) bool {
	switch key {
	case "duration":
		p.Duration = v
	case "brightness", "max":
		p.Brightness = v
	case "min":
		p.MinBrightness = v
	case "cycle":
		p.Cycle = v
	case "intensity":
		p.Intensity = v
	case "speed":
		p.Speed = v
	default:
		return false
	}
	return true
}

// ParseSpec turns "name[:k=v,...]" into an effect and its params.
func ParseSpec(s string) (Effect, Params, error) {
	const op = "animation"
	spec, err := types.ParseEffectSpec(s)
	if err != nil {
		return 0, Params{}, errcode.Wrap(errcode.InvalidPayload, op, err.Error())
	}
	eff, ok := ParseEffect(spec.Name)
	if !ok {
		return 0, Params{}, errcode.Wrap(errcode.UnknownEffect, op, spec.Name)
	}
	var p Params
	for k, v := range spec.Args {
		if k == "color" {
			c, err := types.ParseColor(v)
			if err != nil {
				return 0, Params{}, errcode.Wrap(errcode.InvalidPayload, op, "color: "+err.Error())
			}
			p.Color = &c
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, Params{}, errcode.Wrap(errcode.InvalidPayload, op, k+" wants an integer")
		}
		if !p.set(k, &n) {
			return 0, Params{}, errcode.Wrap(errcode.InvalidPayload, op, "unknown argument "+k)
		}
	}
	return eff, p, nil
}
