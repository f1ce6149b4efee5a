package i2cdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	assert.Empty(t, plan(0x40, nil, nil))

	ms := plan(0x40, []byte{1, 2}, nil)
	assert.Len(t, ms, 1)
	assert.Equal(t, uint16(2), ms[0].len)
	assert.Zero(t, ms[0].flags)

	ms = plan(0x38, []byte{0x71}, make([]byte, 6))
	assert.Len(t, ms, 2)
	assert.Equal(t, uint16(flagRead), ms[1].flags)
	assert.Equal(t, uint16(6), ms[1].len)
	assert.Equal(t, uint16(0x38), ms[1].addr)
}
