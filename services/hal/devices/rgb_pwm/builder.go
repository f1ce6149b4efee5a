package rgb_pwm

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pca9685"
)

// DefaultPCA9685Addr is the chip's address with all address pins low.
const DefaultPCA9685Addr = 0x40

// NewPCA9685 configures a PCA9685 on bus and returns it as an Output.
// periodNs of 0 picks the driver's LED-friendly default.
func NewPCA9685(bus drivers.I2C, addr uint8, periodNs uint64) (Output, error) {
	dev := pca9685.New(bus, addr)
	if err := dev.Configure(pca9685.PWMConfig{Period: periodNs}); err != nil {
		return nil, fmt.Errorf("pca9685 at 0x%02x: %w", addr, err)
	}
	return dev, nil
}

// LogOutput stands in for hardware and logs every duty written.
type LogOutput struct {
	Log    hclog.Logger
	TopVal uint32
	duty   map[uint8]uint32
}

func NewLogOutput(log hclog.Logger, top uint32) *LogOutput {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &LogOutput{Log: log.Named("pwm"), TopVal: top, duty: map[uint8]uint32{}}
}

func (o *LogOutput) Top() uint32 { return o.TopVal }

func (o *LogOutput) Set(channel uint8, duty uint32) {
	if o.duty[channel] == duty {
		return
	}
	o.duty[channel] = duty
	o.Log.Debug("duty", "channel", channel, "value", duty)
}

// Duty returns the last value written to channel.
func (o *LogOutput) Duty(channel uint8) uint32 { return o.duty[channel] }
