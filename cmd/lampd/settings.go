package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lampcode-go/services/config"
)

// Settings is the daemon's local file. Sections override profile sections
// of the same name and are published on config/<name>.
type Settings struct {
	Profile     string         `yaml:"profile"`
	DB          string         `yaml:"db"`
	LogLevel    string         `yaml:"log_level"`
	MetricsAddr string         `yaml:"metrics_addr"`
	I2C         string         `yaml:"i2c"`
	PCA9685Addr uint8          `yaml:"pca9685_addr"`
	Console     bool           `yaml:"console"`
	MQTT        MQTTSettings   `yaml:"mqtt"`
	Sections    map[string]any `yaml:"sections"`
}

type MQTTSettings struct {
	Broker   string `yaml:"broker"`
	Base     string `yaml:"base"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func defaultSettings() Settings {
	return Settings{
		Profile:     config.DefaultProfile,
		DB:          "/var/lib/lampd/lamp.db",
		LogLevel:    "info",
		PCA9685Addr: 0x40,
	}
}

// loadSettings reads path over the defaults. An empty path yields defaults.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// resolveSettings applies persistent flags the user actually set.
func resolveSettings(cmd *cobra.Command) (Settings, error) {
	s, err := loadSettings(settingsPath)
	if err != nil {
		return s, err
	}
	flags := cmd.Flags()
	if flags.Changed("profile") {
		s.Profile = profileName
	}
	if flags.Changed("log-level") {
		s.LogLevel = logLevel
	}
	return s, nil
}

// sections merges the MQTT block into the section overrides.
func (s Settings) sections() map[string]any {
	out := make(map[string]any, len(s.Sections)+1)
	for k, v := range s.Sections {
		out[k] = v
	}
	if s.MQTT.Broker != "" {
		out["bridge"] = map[string]any{
			"broker":   s.MQTT.Broker,
			"base":     s.MQTT.Base,
			"username": s.MQTT.Username,
			"password": s.MQTT.Password,
		}
	}
	return out
}
