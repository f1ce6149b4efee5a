package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"lampcode-go/bus"
	"lampcode-go/drivers/i2cdev"
	"lampcode-go/services/bridge"
	"lampcode-go/services/config"
	"lampcode-go/services/console"
	"lampcode-go/services/hal/devices/rgb_pwm"
	"lampcode-go/services/heartbeat"
	"lampcode-go/services/lamp"
	"lampcode-go/services/metrics"
	"lampcode-go/services/schedule"
)

var runFlags struct {
	db          string
	mqtt        string
	mqttBase    string
	i2c         string
	pcaAddr     uint8
	metricsAddr string
	console     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lamp daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.db, "db", "", "SQLite configuration database")
	f.StringVar(&runFlags.mqtt, "mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	f.StringVar(&runFlags.mqttBase, "mqtt-base", "", "MQTT topic base (default ikea_lamp)")
	f.StringVar(&runFlags.i2c, "i2c", "", "I2C adapter with the PCA9685, e.g. /dev/i2c-1; empty logs duties")
	f.Uint8Var(&runFlags.pcaAddr, "pca9685-addr", rgb_pwm.DefaultPCA9685Addr, "PCA9685 I2C address")
	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.BoolVar(&runFlags.console, "console", false, "read commands from stdin and echo state to stdout")
	rootCmd.AddCommand(runCmd)
}

func applyRunFlags(cmd *cobra.Command, s *Settings) {
	f := cmd.Flags()
	if f.Changed("db") {
		s.DB = runFlags.db
	}
	if f.Changed("mqtt") {
		s.MQTT.Broker = runFlags.mqtt
	}
	if f.Changed("mqtt-base") {
		s.MQTT.Base = runFlags.mqttBase
	}
	if f.Changed("i2c") {
		s.I2C = runFlags.i2c
	}
	if f.Changed("pca9685-addr") {
		s.PCA9685Addr = runFlags.pcaAddr
	}
	if f.Changed("metrics-addr") {
		s.MetricsAddr = runFlags.metricsAddr
	}
	if f.Changed("console") {
		s.Console = runFlags.console
	}
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &s)
	log := newLogger(s.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := config.LoadProfile(s.Profile)
	if err != nil {
		return err
	}
	store, err := config.OpenSQLite(s.DB, profile.Device)
	if err != nil {
		return err
	}
	defer store.Close()
	cfg, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	act, closeAct, err := openActuator(s, log)
	if err != nil {
		return err
	}
	defer closeAct()

	m := metrics.New()
	if s.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, s.MetricsAddr, log); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	b := bus.NewBus(32)
	svc := lamp.New(lamp.Options{
		Conn:      b.NewConnection("lamp"),
		Log:       log,
		Store:     store,
		Config:    cfg,
		Actuator:  act,
		Metrics:   m,
		BootFlash: 300 * time.Millisecond,
	})

	cs := config.NewConfigService(profile.Name, log)
	cs.Overrides = s.sections()
	cs.Start(ctx, b.NewConnection("config"))

	if err := (&heartbeat.Service{Source: svc, Log: log}).Start(ctx, b.NewConnection("heartbeat")); err != nil {
		return err
	}
	if err := (&schedule.Service{Topic: lamp.TopicCommand, Log: log}).Start(ctx, b.NewConnection("schedule")); err != nil {
		return err
	}
	go bridge.Start(ctx, b.NewConnection("bridge"), log)

	if s.Console {
		con := &console.Service{In: os.Stdin, Out: os.Stdout, Topic: lamp.TopicCommand, Echo: lamp.TopicState, Log: log}
		if err := con.Start(ctx, b.NewConnection("console")); err != nil {
			return err
		}
	}

	log.Info("lampd starting", "version", Version, "profile", profile.Name, "db", s.DB, "config_version", cfg.Version)
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openActuator returns the PCA9685 on s.I2C, or a logging stand-in when no
// adapter is configured.
func openActuator(s Settings, log hclog.Logger) (*rgb_pwm.Device, func(), error) {
	params := rgb_pwm.Params{Channels: rgb_pwm.Channels{R: 0, G: 1, B: 2}}
	if s.I2C == "" {
		log.Warn("no I2C adapter configured, logging duties only")
		return rgb_pwm.New(rgb_pwm.NewLogOutput(log, 4095), params), func() {}, nil
	}
	i2c, err := i2cdev.Open(s.I2C)
	if err != nil {
		return nil, nil, err
	}
	out, err := rgb_pwm.NewPCA9685(i2c, s.PCA9685Addr, 0)
	if err != nil {
		i2c.Close()
		return nil, nil, err
	}
	return rgb_pwm.New(out, params), func() { i2c.Close() }, nil
}
