package config

// -----------------------------------------------------------------------------
// Embedded board profiles
//
// Key: profile name (board).
// Val: raw JSON. The "device" section overlays the built-in device
// configuration; every other top-level key is a daemon section published
// retained on config/<key>.
// -----------------------------------------------------------------------------

const cfgIkeaHeadLamp = `{
  "device": {
    "default_brightness": 70,
    "default_color": [255, 147, 41],
    "sunrise_minutes": 30,
    "sunrise_final_brightness": 100,
    "min_pwm": 20,
    "max_pwm": 100
  },
  "heartbeat": {
      "interval": 2
  },
  "schedule": [
  ]
}`

const cfgPico = `{
  "device": {
    "default_brightness": 60,
    "min_pwm": 10,
    "max_pwm": 90
  },
  "heartbeat": {
      "interval": 5
  },
  "schedule": [
  ]
}`

// DefaultProfile is used when no profile is named.
const DefaultProfile = "ikea-head-lamp"

var embeddedConfigs = map[string][]byte{
	"ikea-head-lamp": []byte(cfgIkeaHeadLamp),
	"pico":           []byte(cfgPico),
}
