package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lampcode-go/errcode"
	"lampcode-go/types"
)

func TestClamp_RepairsStoredValues(t *testing.T) {
	d := Builtin()
	d.DefaultBrightness = 5
	d.SunriseMinutes = 2
	d.SunriseFinalBrightness = 10
	d.MinPWM = 60
	d.MaxPWM = 40
	d.Favorite.Name = "disco"
	d.Clamp()

	assert.Equal(t, uint8(70), d.DefaultBrightness)
	assert.Equal(t, 30, d.SunriseMinutes)
	assert.Equal(t, uint8(100), d.SunriseFinalBrightness)
	assert.Equal(t, uint8(100), d.MaxPWM)
	assert.Equal(t, "fire", d.Favorite.Name)

	d.SunriseMinutes = 500
	d.Clamp()
	assert.Equal(t, 60, d.SunriseMinutes)
}

func TestSet_PerKeyRules(t *testing.T) {
	d := Builtin()

	require.NoError(t, d.Set("default_brightness", "0"))
	assert.Equal(t, uint8(1), d.DefaultBrightness)
	require.NoError(t, d.Set("default_brightness", "250"))
	assert.Equal(t, uint8(100), d.DefaultBrightness)

	require.NoError(t, d.Set("default_color", "300, 10, -4"))
	assert.Equal(t, types.Color{R: 255, G: 10, B: 0}, d.DefaultColor)

	require.NoError(t, d.Set("sunrise_minutes", "1"))
	assert.Equal(t, 5, d.SunriseMinutes)
	require.NoError(t, d.Set("sunrise_minutes", "999"))
	assert.Equal(t, 180, d.SunriseMinutes)

	require.NoError(t, d.Set("sunrise_brightness", "55"))
	assert.Equal(t, uint8(55), d.SunriseFinalBrightness)
}

func TestSet_PWMStaysOrdered(t *testing.T) {
	d := Builtin()
	require.NoError(t, d.Set("min_pwm", "100"))
	assert.Less(t, d.MinPWM, d.MaxPWM)
	assert.Equal(t, uint8(99), d.MinPWM)
	assert.Equal(t, uint8(100), d.MaxPWM)

	require.NoError(t, d.Set("max_pwm", "0"))
	assert.Equal(t, uint8(1), d.MaxPWM)
	assert.Equal(t, uint8(0), d.MinPWM)

	require.NoError(t, d.Set("max_pwm", "30"))
	require.NoError(t, d.Set("min_pwm", "30"))
	assert.Equal(t, uint8(30), d.MinPWM)
	assert.Equal(t, uint8(31), d.MaxPWM)
}

func TestSet_Errors(t *testing.T) {
	d := Builtin()
	before := d.Clone()

	err := d.Set("wifi_ssid", "x")
	assert.ErrorIs(t, err, errcode.UnknownConfigKey)

	err = d.Set("default_brightness", "bright")
	assert.ErrorIs(t, err, errcode.InvalidPayload)

	err = d.Set("default_color", "1,2")
	assert.ErrorIs(t, err, errcode.InvalidPayload)

	assert.Equal(t, before, d)
}

func TestParseFavorite(t *testing.T) {
	f, err := ParseFavorite("ocean:speed=8,brightness=50")
	require.NoError(t, err)
	assert.Equal(t, "ocean", f.Name)
	require.Len(t, f.Params, 2)
	assert.Equal(t, 50, *f.Params[0])
	assert.Equal(t, 8, *f.Params[1])

	f, err = ParseFavorite("breathe:min=5,color=0,0,255")
	require.NoError(t, err)
	require.Len(t, f.Params, 3)
	assert.Nil(t, f.Params[0])
	assert.Nil(t, f.Params[1])
	assert.Equal(t, 5, *f.Params[2])
	assert.Equal(t, &types.Color{B: 255}, f.Color)
	assert.Equal(t, "breathe:color=0,0,255,min=5", f.Spec())

	f, err = ParseFavorite("rainbow")
	require.NoError(t, err)
	assert.Empty(t, f.Params)

	_, err = ParseFavorite("disco")
	assert.ErrorIs(t, err, errcode.UnknownEffect)
	_, err = ParseFavorite("fire:speed=fast")
	assert.ErrorIs(t, err, errcode.InvalidPayload)
	_, err = ParseFavorite("fire:cycle=3")
	assert.ErrorIs(t, err, errcode.InvalidPayload)
}

func TestPayload_CarriesFavoriteSpec(t *testing.T) {
	d := Builtin()
	assert.Equal(t, d.Favorite.Spec(), d.Payload().Favorite)
	assert.Contains(t, d.Payload().Favorite, "fire")

	require.NoError(t, d.Set("favorite_animation", "ocean:speed=8"))
	assert.Equal(t, "ocean:speed=8", d.Payload().Favorite)
}

func TestClone_IsDeep(t *testing.T) {
	d := Builtin()
	c := d.Clone()
	*c.Favorite.Params[0] = 1
	assert.Equal(t, 70, *d.Favorite.Params[0])
}
