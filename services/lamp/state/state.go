// Package state holds the live, externally observable snapshot of what the
// lamp should show, and the version counter that drives publication.
package state

import (
	"github.com/google/uuid"

	"lampcode-go/types"
)

// Device is the mutable device state. It is owned by the lamp loop; nothing
// else writes it. Every externally visible write must end in BumpVersion.
type Device struct {
	PowerOn    bool
	Mode       types.Mode
	Color      types.Color
	Brightness uint8 // logical 0..100

	Animation string
	Paused    bool
	Progress  uint8 // 0..100

	Preview types.Preview

	SessionID string
	Version   uint64
}

// New returns the power-on state: off, static, warm amber at 70%.
func New() *Device {
	return &Device{
		Mode:       types.ModeStatic,
		Color:      types.Color{R: 255, G: 147, B: 41},
		Brightness: 70,
		SessionID:  uuid.NewString(),
	}
}

// BumpVersion marks the state as changed.
func (d *Device) BumpVersion() { d.Version++ }

func (d *Device) TogglePower() {
	d.PowerOn = !d.PowerOn
	d.BumpVersion()
}

func (d *Device) SetPower(on bool) {
	d.PowerOn = on
	d.BumpVersion()
}

func (d *Device) SetBrightness(v uint8) {
	d.Brightness = v
	d.BumpVersion()
}

func (d *Device) SetColor(c types.Color) {
	d.Color = c
	d.BumpVersion()
}

// SetStaticMode leaves any animation: name, pause flag and progress are cleared.
func (d *Device) SetStaticMode() {
	d.Mode = types.ModeStatic
	d.Animation = ""
	d.Paused = false
	d.Progress = 0
	d.Preview = types.Preview{}
	d.BumpVersion()
}

// SetAnimationMode enters animation mode under name with progress at zero.
func (d *Device) SetAnimationMode(name string) {
	d.Mode = types.ModeAnimation
	d.Animation = name
	d.Paused = false
	d.Progress = 0
	d.BumpVersion()
}

// SetPaused mirrors the active effect's pause flag.
func (d *Device) SetPaused(p bool) {
	d.Paused = p
	d.BumpVersion()
}

// Snapshot renders the state for publication.
func (d *Device) Snapshot() types.StatePayload {
	power := "off"
	if d.PowerOn {
		power = "on"
	}
	return types.StatePayload{
		Power:      power,
		Mode:       d.Mode.String(),
		Animation:  d.Animation,
		Paused:     d.Paused,
		Progress:   d.Progress,
		Brightness: d.Brightness,
		Color:      d.Color,
		Preview:    d.Preview,
		Session:    d.SessionID,
		Version:    d.Version,
	}
}

// Output is the tuple the actuator consumes.
type Output struct {
	PowerOn    bool
	Brightness uint8
	Color      types.Color
}

func (d *Device) Output() Output {
	return Output{PowerOn: d.PowerOn, Brightness: d.Brightness, Color: d.Color}
}
