//go:build !linux

package i2cdev

import "errors"

// Bus is unavailable off Linux; Open always fails.
type Bus struct{}

func Open(path string) (*Bus, error) {
	return nil, errors.New("i2cdev: " + path + ": only supported on linux")
}

func (*Bus) Tx(uint16, []byte, []byte) error { return ErrClosed }
func (*Bus) Close() error                    { return nil }
