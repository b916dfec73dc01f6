// Package pipeline wires the navigation watcher, capture state machine,
// relay, and settings store together for one page context.
package pipeline

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobwatch/internal/capture"
	"github.com/jonathan/jobwatch/internal/config"
	"github.com/jonathan/jobwatch/internal/extract"
	"github.com/jonathan/jobwatch/internal/observability"
	"github.com/jonathan/jobwatch/internal/relay"
	"github.com/jonathan/jobwatch/internal/settings"
	"github.com/jonathan/jobwatch/internal/types"
	"github.com/jonathan/jobwatch/internal/watch"
)

// probeInterval paces the background connectivity check used for verbose
// status logging.
const probeInterval = 30 * time.Second

// Options holds everything needed to assemble a page-context pipeline.
type Options struct {
	Config config.Config
	// Source is the rendered document being observed.
	Source watch.DocumentSource
	// Queue overrides the fallback queue; when nil one is built from Config.
	Queue relay.Queue
	// Settings overrides the settings store; when nil one is loaded from
	// Config.SettingsPath.
	Settings *settings.Store
}

// Runner is an assembled pipeline for a single page context.
type Runner struct {
	contextID uuid.UUID
	cfg       config.Config
	source    watch.DocumentSource
	store     *settings.Store
	relay     *relay.Relay
	machine   *capture.Machine
	watcher   *watch.Watcher
	printer   *observability.Printer
}

// New assembles a pipeline. The Redis queue backend is selected when a Redis
// URL is configured; otherwise captures queue in memory.
func New(ctx context.Context, opts Options) (*Runner, error) {
	cfg := opts.Config

	store := opts.Settings
	if store == nil {
		loaded, err := settings.Load(cfg.SettingsPath)
		if err != nil {
			return nil, err
		}
		store = loaded
	}

	queue := opts.Queue
	if queue == nil {
		if cfg.RedisURL != "" {
			redisQueue, err := relay.NewRedisQueue(ctx, cfg.RedisURL, cfg.QueueKey, cfg.QueueCap)
			if err != nil {
				return nil, err
			}
			queue = redisQueue
		} else {
			queue = relay.NewMemoryQueue(cfg.QueueCap)
		}
	}

	runner := &Runner{
		contextID: uuid.New(),
		cfg:       cfg,
		source:    opts.Source,
		store:     store,
		printer:   observability.NewPrinter(os.Stdout),
	}

	runner.relay = relay.New(relay.Config{
		Endpoint:      cfg.RelayEndpoint,
		ProbeEndpoint: cfg.ProbeEndpoint,
		AuthSecret:    cfg.RelaySecret,
		Verbose:       cfg.Verbose,
	}, queue)

	runner.machine = capture.New(capture.Config{
		InitialDelay: time.Duration(cfg.InitialDelayMs) * time.Millisecond,
		RetryDelay:   time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		MaxRetries:   cfg.MaxRetries,
		Verbose:      cfg.Verbose,
	}, runner.snapshotExtract, runner.onFinalized)

	runner.watcher = watch.New(watch.Config{
		DebounceDelay: time.Duration(cfg.DebounceMs) * time.Millisecond,
		Verbose:       cfg.Verbose,
	}, opts.Source, runner.machine)

	return runner, nil
}

// Relay exposes the relay for status queries.
func (r *Runner) Relay() *relay.Relay {
	return r.relay
}

// Settings exposes the settings store.
func (r *Runner) Settings() *settings.Store {
	return r.store
}

// Run observes the page until the context is cancelled. The watcher and the
// connectivity logger run as separate branches; the first hard failure stops
// both.
func (r *Runner) Run(ctx context.Context) error {
	log.Printf("[pipeline] context %s observing", r.contextID)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return r.watcher.Run(groupCtx)
	})

	group.Go(func() error {
		r.probeLoop(groupCtx)
		return nil
	})

	err := group.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// probeLoop logs connectivity transitions so an operator can see when the
// companion application comes and goes.
func (r *Runner) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	connected := r.relay.Probe(ctx)
	log.Printf("[pipeline] companion connected: %v", connected)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := r.relay.Probe(ctx)
			if now != connected {
				connected = now
				log.Printf("[pipeline] companion connected: %v", connected)
			}
		}
	}
}

// snapshotExtract reads the current document and runs the field extractor.
// This is the machine's ExtractFunc.
func (r *Runner) snapshotExtract() (*types.JobPostingRecord, error) {
	location, err := r.source.Location()
	if err != nil {
		return nil, err
	}
	html, err := r.source.HTML()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return extract.Extract(doc, location)
}

// onFinalized hands a finalized record to the relay on its own goroutine so
// delivery never blocks the watcher or the state machine.
func (r *Runner) onFinalized(record *types.JobPostingRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), relay.DefaultTimeout)
		defer cancel()

		ack := r.deliver(ctx, record)
		if r.cfg.Verbose {
			r.printer.PrintCapture(record, ack)
		}

		if ack.Success && ack.Method == types.MethodPrimary {
			title := record.PlatformJobID
			if record.Title != nil {
				title = *record.Title
			}
			_ = r.source.Notify("Captured: " + title)
		}
	}()
}

// deliver applies the enable/disable gate and invokes the relay. A disabled
// gate skips delivery and queueing entirely; extraction and state transitions
// are unaffected.
func (r *Runner) deliver(ctx context.Context, record *types.JobPostingRecord) types.RelayAck {
	if !r.store.Enabled() {
		log.Printf("[pipeline] capture %s ignored: relay disabled", record.PlatformJobID)
		return types.RelayAck{Success: false, Reason: "disabled"}
	}
	return r.relay.Deliver(ctx, record)
}
