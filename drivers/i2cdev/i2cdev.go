// Package i2cdev exposes a Linux /dev/i2c-N adapter as a tinygo drivers.I2C
// bus, so the same PWM driver runs on a Raspberry Pi and on a Pico.
package i2cdev

import "errors"

const (
	ioctlRDWR = 0x0707 // I2C_RDWR

	flagRead = 0x0001 // I2C_M_RD
)

var ErrClosed = errors.New("i2cdev: closed")

// msg mirrors struct i2c_msg.
type msg struct {
	addr  uint16
	flags uint16
	len   uint16
	_     uint16
	buf   uintptr
}

// plan lists the transfers for one Tx: an optional write then an optional
// read, issued as one combined transaction with a repeated start.
func plan(addr uint16, w, r []byte) []msg {
	var ms []msg
	if len(w) > 0 {
		ms = append(ms, msg{addr: addr, len: uint16(len(w))})
	}
	if len(r) > 0 {
		ms = append(ms, msg{addr: addr, flags: flagRead, len: uint16(len(r))})
	}
	return ms
}
