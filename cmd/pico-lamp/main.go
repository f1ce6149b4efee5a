//go:build rp2040 || rp2350

// pico-lamp runs the lamp on a Raspberry Pi Pico: PCA9685 on i2c0, a push
// button on GP15 and a command console on uart0.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jangala-dev/tinygo-uartx/uartx"

	"lampcode-go/bus"
	"lampcode-go/services/config"
	"lampcode-go/services/console"
	"lampcode-go/services/hal/devices/gpio_button"
	"lampcode-go/services/hal/devices/rgb_pwm"
	"lampcode-go/services/heartbeat"
	"lampcode-go/services/lamp"
	"lampcode-go/services/schedule"
	"lampcode-go/x/timex"
)

const (
	buttonPin    = machine.GP15
	buttonPeriod = 5 * time.Millisecond
	profileName  = "pico"
)

// uartReader adapts uartx's context-aware receive to io.Reader.
type uartReader struct {
	ctx context.Context
	u   *uartx.UART
}

func (r uartReader) Read(p []byte) (int, error) { return r.u.RecvSomeContext(r.ctx, p) }

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	ctx := context.Background()

	uart := uartx.UART0
	_ = uart.Configure(uartx.UARTConfig{BaudRate: 115200, TX: machine.UART0_TX_PIN, RX: machine.UART0_RX_PIN})

	log := hclog.New(&hclog.LoggerOptions{Name: "pico-lamp", Level: hclog.Info, Output: uart})

	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	out, err := rgb_pwm.NewPCA9685(i2c, rgb_pwm.DefaultPCA9685Addr, 0)
	if err != nil {
		log.Error("pca9685 init failed, logging duties", "error", err)
		out = rgb_pwm.NewLogOutput(log, 4095)
	}
	act := rgb_pwm.New(out, rgb_pwm.Params{Channels: rgb_pwm.Channels{R: 0, G: 1, B: 2}})

	profile, err := config.LoadProfile(profileName)
	if err != nil {
		log.Error("profile", "error", err)
		profile = config.Profile{Name: profileName, Device: config.Builtin()}
	}
	store := config.NewMemStore(profile.Device)
	cfg, _ := store.Load(ctx)

	b := bus.NewBus(8)
	svc := lamp.New(lamp.Options{
		Conn:      b.NewConnection("lamp"),
		Log:       log,
		Store:     store,
		Config:    cfg,
		Actuator:  act,
		BootFlash: 300 * time.Millisecond,
	})

	config.NewConfigService(profile.Name, log).Start(ctx, b.NewConnection("config"))
	_ = (&heartbeat.Service{Source: svc, Log: log}).Start(ctx, b.NewConnection("heartbeat"))
	_ = (&schedule.Service{Topic: lamp.TopicCommand, Log: log}).Start(ctx, b.NewConnection("schedule"))
	_ = (&console.Service{
		In:    uartReader{ctx: ctx, u: uart},
		Out:   uart,
		Topic: lamp.TopicCommand,
		Echo:  lamp.TopicState,
		Log:   log,
	}).Start(ctx, b.NewConnection("console"))

	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	bp := gpio_button.DefaultParams()
	bp.Invert = true
	go gpio_button.Watch(ctx, b.NewConnection("button"), gpio_button.NewClassifier(bp), timex.System{}, buttonPeriod, buttonPin.Get)

	_ = svc.Run(ctx)
}
