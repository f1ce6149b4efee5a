package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"lampcode-go/services/config"
)

var dbPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset the stored lamp configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(st *config.SQLiteStore) error {
			d, err := st.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, d.Payload())
		})
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the profile defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(st *config.SQLiteStore) error {
			d, err := st.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration reset (version %d)\n", d.Version)
			return nil
		})
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite configuration database")
	configCmd.AddCommand(configShowCmd, configResetCmd)
	rootCmd.AddCommand(configCmd)
}

func withStore(cmd *cobra.Command, fn func(*config.SQLiteStore) error) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		s.DB = dbPath
	}
	profile, err := config.LoadProfile(s.Profile)
	if err != nil {
		return err
	}
	st, err := config.OpenSQLite(s.DB, profile.Device)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
