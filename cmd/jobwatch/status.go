package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobwatch/internal/observability"
	"github.com/jonathan/jobwatch/internal/relay"
	"github.com/jonathan/jobwatch/internal/settings"
	"github.com/jonathan/jobwatch/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the capture gate and companion connectivity",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return err
	}

	rl := relay.New(relay.Config{
		Endpoint:      cfg.RelayEndpoint,
		ProbeEndpoint: cfg.ProbeEndpoint,
		AuthSecret:    cfg.RelaySecret,
		Timeout:       3 * time.Second,
	}, relay.NewMemoryQueue(cfg.QueueCap))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := types.Status{
		Enabled:   store.Enabled(),
		Connected: rl.Probe(ctx),
	}

	observability.NewPrinter(os.Stdout).PrintStatus(status)
	return nil
}
