package config

import (
	"slices"
	"strconv"
	"strings"

	"lampcode-go/errcode"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
	"lampcode-go/x/optx"
	"lampcode-go/x/strx"
)

// Favorite is the effect started by a double press. Params are positional
// per effect (see FavoriteKeys); a nil slot means "use the effect default".
type Favorite struct {
	Name   string       `json:"name"`
	Params []*int       `json:"params"`
	Color  *types.Color `json:"color,omitempty"`
}

// Device is the persisted device configuration.
type Device struct {
	DefaultBrightness      uint8       `json:"default_brightness"`
	DefaultColor           types.Color `json:"default_color"`
	SunriseMinutes         int         `json:"sunrise_minutes"`
	SunriseFinalBrightness uint8       `json:"sunrise_final_brightness"`
	MinPWM                 uint8       `json:"min_pwm"`
	MaxPWM                 uint8       `json:"max_pwm"`
	Favorite               Favorite    `json:"favorite"`
	Version                uint32      `json:"version"`
}

// FavoriteKeys lists, per effect, the argument each positional favourite
// parameter stands for.
var FavoriteKeys = map[string][]string{
	"sunrise": {"duration", "brightness"},
	"sunset":  {"duration", "brightness"},
	"rainbow": nil,
	"fire":    {"intensity", "speed"},
	"breathe": {"cycle", "brightness", "min"},
	"ocean":   {"brightness", "speed"},
}

// Builtin returns the factory configuration.
func Builtin() Device {
	return Device{
		DefaultBrightness:      70,
		DefaultColor:           types.Color{R: 255, G: 147, B: 41},
		SunriseMinutes:         30,
		SunriseFinalBrightness: 100,
		MinPWM:                 20,
		MaxPWM:                 100,
		Favorite: Favorite{
			Name:   "fire",
			Params: []*int{optx.Of(70), optx.Of(5)},
		},
		Version: 1,
	}
}

// Clamp repairs values read back from storage. Out-of-range entries are
// replaced with safe values rather than saturated.
func (d *Device) Clamp() {
	if d.DefaultBrightness > 100 {
		d.DefaultBrightness = 100
	}
	if d.DefaultBrightness < 20 {
		d.DefaultBrightness = 70
	}
	if d.SunriseMinutes < 5 {
		d.SunriseMinutes = 30
	}
	if d.SunriseMinutes > 180 {
		d.SunriseMinutes = 60
	}
	if d.SunriseFinalBrightness < 20 || d.SunriseFinalBrightness > 100 {
		d.SunriseFinalBrightness = 100
	}
	if d.MinPWM > 100 {
		d.MinPWM = 20
	}
	if d.MaxPWM > 100 {
		d.MaxPWM = 100
	}
	if d.MaxPWM <= d.MinPWM {
		d.MaxPWM = 100
	}
	if _, ok := FavoriteKeys[d.Favorite.Name]; !ok {
		d.Favorite = Builtin().Favorite
	}
}

// Set applies one "config/<key>/set" request. Numeric values saturate into
// the key's range.
func (d *Device) Set(key, value string) error {
	const op = "config/set"
	value = strings.TrimSpace(value)
	switch key {
	case "default_brightness":
		v, err := atoi(key, value)
		if err != nil {
			return err
		}
		d.DefaultBrightness = uint8(mathx.Clamp(v, 1, 100))
	case "default_color":
		c, err := types.ParseColor(value)
		if err != nil {
			return errcode.Wrap(errcode.InvalidPayload, key, err.Error())
		}
		d.DefaultColor = c
	case "sunrise_minutes":
		v, err := atoi(key, value)
		if err != nil {
			return err
		}
		d.SunriseMinutes = mathx.Clamp(v, 5, 180)
	case "sunrise_brightness", "sunrise_final_brightness":
		v, err := atoi(key, value)
		if err != nil {
			return err
		}
		d.SunriseFinalBrightness = uint8(mathx.Clamp(v, 1, 100))
	case "min_pwm":
		v, err := atoi(key, value)
		if err != nil {
			return err
		}
		d.MinPWM = uint8(mathx.Clamp(v, 0, 100))
		if d.MaxPWM <= d.MinPWM {
			d.MaxPWM = mathx.Min(d.MinPWM+1, 100)
			if d.MaxPWM == d.MinPWM {
				d.MinPWM--
			}
		}
	case "max_pwm":
		v, err := atoi(key, value)
		if err != nil {
			return err
		}
		d.MaxPWM = uint8(mathx.Clamp(v, 0, 100))
		if d.MaxPWM <= d.MinPWM {
			if d.MaxPWM == 0 {
				d.MaxPWM = 1
			}
			d.MinPWM = d.MaxPWM - 1
		}
	case "favorite_animation", "favorite":
		f, err := ParseFavorite(value)
		if err != nil {
			return err
		}
		d.Favorite = f
	default:
		return errcode.Wrap(errcode.UnknownConfigKey, op, key)
	}
	return nil
}

// ParseFavorite reads "name[:k=v,...]" into positional favourite params.
func ParseFavorite(s string) (Favorite, error) {
	spec, err := types.ParseEffectSpec(s)
	if err != nil {
		return Favorite{}, errcode.Wrap(errcode.InvalidPayload, "favorite", err.Error())
	}
	keys, ok := FavoriteKeys[spec.Name]
	if !ok {
		return Favorite{}, errcode.Wrap(errcode.UnknownEffect, "favorite", spec.Name)
	}
	f := Favorite{Name: spec.Name, Params: make([]*int, len(keys))}
	for k, v := range spec.Args {
		if k == "color" {
			c, err := types.ParseColor(v)
			if err != nil {
				return Favorite{}, errcode.Wrap(errcode.InvalidPayload, "favorite", err.Error())
			}
			f.Color = &c
			continue
		}
		if k == "max" {
			k = "brightness"
		}
		i := slices.Index(keys, k)
		if i < 0 {
			return Favorite{}, errcode.Wrap(errcode.InvalidPayload, "favorite", spec.Name+" has no "+k)
		}
		n, err := atoi(k, v)
		if err != nil {
			return Favorite{}, err
		}
		f.Params[i] = optx.Of(n)
	}
	for len(f.Params) > 0 && f.Params[len(f.Params)-1] == nil {
		f.Params = f.Params[:len(f.Params)-1]
	}
	return f, nil
}

// Spec renders the favourite back into "name:k=v,..." form.
func (f Favorite) Spec() string {
	spec := types.EffectSpec{Name: f.Name, Args: map[string]string{}}
	keys := FavoriteKeys[f.Name]
	for i, p := range f.Params {
		if p != nil && i < len(keys) {
			spec.Args[keys[i]] = strconv.Itoa(*p)
		}
	}
	if f.Color != nil {
		spec.Args["color"] = f.Color.String()
	}
	return spec.String()
}

// Param returns positional parameter i, or nil when unset.
func (f Favorite) Param(i int) *int {
	if i < 0 || i >= len(f.Params) {
		return nil
	}
	return f.Params[i]
}

// Clone deep-copies the configuration.
func (d Device) Clone() Device {
	c := d
	c.Favorite.Params = make([]*int, len(d.Favorite.Params))
	for i, p := range d.Favorite.Params {
		if p != nil {
			c.Favorite.Params[i] = optx.Of(*p)
		}
	}
	if d.Favorite.Color != nil {
		col := *d.Favorite.Color
		c.Favorite.Color = &col
	}
	return c
}

// Payload renders the configuration for publication.
func (d *Device) Payload() types.ConfigPayload {
	c := d.Clone()
	return types.ConfigPayload{
		DefaultBrightness:      c.DefaultBrightness,
		DefaultColor:           c.DefaultColor,
		SunriseMinutes:         c.SunriseMinutes,
		SunriseFinalBrightness: c.SunriseFinalBrightness,
		MinPWM:                 c.MinPWM,
		MaxPWM:                 c.MaxPWM,
		Favorite:               c.Favorite.Spec(),
		FavoriteAnimation:      strx.Coalesce(c.Favorite.Name, "fire"),
		FavoriteParams:         c.Favorite.Params,
		FavoriteColor:          c.Favorite.Color,
		Version:                c.Version,
	}
}

func atoi(key, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errcode.Wrap(errcode.InvalidPayload, key, "want integer")
	}
	return v, nil
}
