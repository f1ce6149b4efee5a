package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, UnknownEffect, Of(UnknownEffect))
	assert.Equal(t, InvalidPayload, Of(Wrap(InvalidPayload, "cmnd/color", "want r,g,b")))
	assert.Equal(t, Error, Of(errors.New("boom")))
}

func TestWrapMatchesCode(t *testing.T) {
	err := fmt.Errorf("route: %w", Wrap(UnknownCommand, "cmnd/dance", ""))
	assert.True(t, errors.Is(err, UnknownCommand))
	assert.False(t, errors.Is(err, UnknownEffect))
	assert.Equal(t, "route: cmnd/dance: unknown_command", err.Error())
}
