package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobwatch/internal/browser"
	"github.com/jonathan/jobwatch/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Attach to the running browser and capture job postings",
	Long:  "Attach to the user's browser over the DevTools protocol and observe the active tab, capturing each distinct job posting exactly once. Requires the browser to run with --remote-debugging-port.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := browser.Attach(ctx, cfg.BrowserURL, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to attach to browser at %s: %w", cfg.BrowserURL, err)
	}
	defer func() { _ = source.Close() }()

	runner, err := pipeline.New(ctx, pipeline.Options{Config: cfg, Source: source})
	if err != nil {
		return fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	return runner.Run(ctx)
}
