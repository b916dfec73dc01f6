package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobwatch/internal/settings"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable capture relay",
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(true) },
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable capture relay (extraction still runs, nothing is delivered)",
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(false) },
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func setEnabled(enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return err
	}
	if err := store.SetEnabled(enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(os.Stdout, "Capture relay %s\n", state)
	return nil
}
