package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobwatch/internal/observability"
	"github.com/jonathan/jobwatch/internal/relay"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the local fallback queue",
}

var queueJSON bool

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued captures, oldest first",
	RunE:  runQueueList,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all queued captures",
	RunE:  runQueueClear,
}

func init() {
	queueListCmd.Flags().BoolVar(&queueJSON, "json", false, "Emit queue entries as JSON")
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueClearCmd)
	rootCmd.AddCommand(queueCmd)
}

// openQueue connects to the configured queue backend. Only the Redis backend
// is inspectable across processes; the in-memory queue dies with the watch
// process.
func openQueue(ctx context.Context) (*relay.RedisQueue, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("queue inspection requires a Redis queue backend; set redis_url or JOBWATCH_REDIS_URL")
	}
	return relay.NewRedisQueue(ctx, cfg.RedisURL, cfg.QueueKey, cfg.QueueCap)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	queue, err := openQueue(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Close() }()

	entries, err := queue.List(ctx)
	if err != nil {
		return err
	}

	if queueJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	observability.NewPrinter(os.Stdout).PrintQueue(entries)
	return nil
}

func runQueueClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	queue, err := openQueue(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Close() }()

	if err := queue.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Fallback queue cleared")
	return nil
}
