// Package main provides the entry point for the jobwatch capture agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/jobwatch/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Job posting capture agent",
	Long:  "jobwatch observes the page the user is viewing, detects stabilized job-posting views, extracts a structured record, and relays it to the companion application with durable local fallback queuing.",
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

// loadConfig merges the optional config file, environment, and defaults.
func loadConfig() (config.Config, error) {
	cfg := config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())
	cfg.Verbose = cfg.Verbose || verbose

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
