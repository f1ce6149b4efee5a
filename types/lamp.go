package types

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ------------------------
// Colour
// ------------------------

// Color is an 8-bit RGB triple.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ParseColor reads "r,g,b" (spaces allowed). Channels outside 0..255 saturate.
func ParseColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, errors.New("color wants r,g,b")
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, err
		}
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func (c Color) String() string {
	return strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B))
}

// MarshalJSON writes the colour as [r,g,b], the form MQTT consumers expect.
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte("[" + c.String() + "]"), nil
}

// UnmarshalJSON accepts [r,g,b] or {"r":..,"g":..,"b":..}.
func (c *Color) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		v, err := ParseColor(s[1 : len(s)-1])
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	if strings.HasPrefix(s, "{") {
		var m struct{ R, G, B int }
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		v, _ := ParseColor(strconv.Itoa(m.R) + "," + strconv.Itoa(m.G) + "," + strconv.Itoa(m.B))
		*c = v
		return nil
	}
	return errors.New("color: want [r,g,b]")
}

// ------------------------
// Mode & end behaviour
// ------------------------

type Mode uint8

const (
	ModeStatic Mode = iota
	ModeAnimation
)

func (m Mode) String() string {
	if m == ModeAnimation {
		return "animation"
	}
	return "static"
}

// EndBehavior tells observers what an effect will do when it finishes.
type EndBehavior string

const (
	EndNone   EndBehavior = ""
	EndStatic EndBehavior = "static"
	EndLoop   EndBehavior = "loop"
	EndOff    EndBehavior = "off"
)

// ------------------------
// Published payloads (retained)
// ------------------------

// Preview mirrors what the running effect committed to at start.
type Preview struct {
	DurationMinutes int         `json:"duration_min"`
	FinalBrightness uint8       `json:"final_brightness"`
	FinalColor      Color       `json:"final_color"`
	End             EndBehavior `json:"end"`
}

// StatePayload is the externally visible device state.
type StatePayload struct {
	Power      string  `json:"power"` // "on" | "off"
	Mode       string  `json:"mode"`
	Animation  string  `json:"animation"`
	Paused     bool    `json:"paused"`
	Progress   uint8   `json:"progress"`
	Brightness uint8   `json:"brightness"`
	Color      Color   `json:"color"`
	Preview    Preview `json:"anim"`
	Session    string  `json:"session"`
	Version    uint64  `json:"version"`
}

// ConfigPayload is the externally visible device configuration.
type ConfigPayload struct {
	DefaultBrightness      uint8  `json:"default_brightness"`
	DefaultColor           Color  `json:"default_color"`
	SunriseMinutes         int    `json:"sunrise_minutes"`
	SunriseFinalBrightness uint8  `json:"sunrise_final_brightness"`
	MinPWM                 uint8  `json:"min_pwm"`
	MaxPWM                 uint8  `json:"max_pwm"`
	Favorite               string `json:"favorite"`
	FavoriteAnimation      string `json:"favorite_animation"`
	FavoriteParams         []*int `json:"favorite_params"`
	FavoriteColor          *Color `json:"favorite_color,omitempty"`
	Version                uint32 `json:"version"`
}
