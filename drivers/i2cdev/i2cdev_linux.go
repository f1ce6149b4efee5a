//go:build linux

package i2cdev

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Bus is an open adapter. Safe for concurrent use.
type Bus struct {
	mu sync.Mutex
	fd int
}

// Open opens an adapter such as "/dev/i2c-1".
func Open(path string) (*Bus, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("i2cdev: open %s: %w", path, err)
	}
	return &Bus{fd: fd}, nil
}

// Tx implements drivers.I2C.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	ms := plan(addr, w, r)
	if len(ms) == 0 {
		return nil
	}
	i := 0
	if len(w) > 0 {
		ms[i].buf = uintptr(unsafe.Pointer(&w[0]))
		i++
	}
	if len(r) > 0 {
		ms[i].buf = uintptr(unsafe.Pointer(&r[0]))
	}
	data := struct {
		msgs  uintptr
		nmsgs uint32
	}{uintptr(unsafe.Pointer(&ms[0])), uint32(len(ms))}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return ErrClosed
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), ioctlRDWR, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(ms)
	if errno != 0 {
		return fmt.Errorf("i2cdev: tx 0x%02x: %w", addr, errno)
	}
	return nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}
