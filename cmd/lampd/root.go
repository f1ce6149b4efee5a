package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	settingsPath string
	profileName  string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "lampd",
	Short: "lampd - RGB lamp controller",
	Long: `lampd runs the lamp: effects, MQTT control, alarms and a local console.

Settings come from the embedded board profile, then an optional YAML file,
then flags.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("lampd v%s (built: %s)\n", Version, BuildTime))
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "YAML settings file")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "board profile (ikea-head-lamp, pico)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace, debug, info, warn or error")
}

// Execute runs the root command and handles any errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "lampd",
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}
