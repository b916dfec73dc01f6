// Package watch implements the navigation watcher: it observes a mutating
// single-page-application document, detects effective location changes, and
// arms the capture state machine when the new location is a posting view.
package watch

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobwatch/internal/capture"
	"github.com/jonathan/jobwatch/internal/platform"
)

// DocumentSource abstracts the rendered page the user is viewing: its
// location string, its content tree, and a subscription to content-change
// notifications. The watcher only ever reads from the source.
type DocumentSource interface {
	// Location returns the current effective location string.
	Location() (string, error)
	// HTML returns a snapshot of the rendered content tree.
	HTML() (string, error)
	// Changes delivers a notification for every content-tree mutation batch.
	// The channel closes when the source goes away.
	Changes() <-chan struct{}
	// Notify renders a transient, non-blocking acknowledgment into the page.
	// Implementations may make this a no-op.
	Notify(message string) error
	// Close releases the source.
	Close() error
}

// Config holds watcher timing parameters.
type Config struct {
	// DebounceDelay is the short fixed wait after a detected location change
	// before classification, letting the URL stabilize first.
	DebounceDelay time.Duration
	Verbose       bool
}

// DefaultConfig returns the production debounce delay.
func DefaultConfig() Config {
	return Config{DebounceDelay: 300 * time.Millisecond}
}

// Watcher compares the observed location on every mutation notification and
// re-arms the capture machine on genuine navigations.
type Watcher struct {
	mu sync.Mutex

	cfg     Config
	source  DocumentSource
	machine *capture.Machine

	lastLocation string
	navSeq       uint64
	debounce     *time.Timer
}

// New creates a watcher bound to one document source and one capture machine.
func New(cfg Config, source DocumentSource, machine *capture.Machine) *Watcher {
	return &Watcher{cfg: cfg, source: source, machine: machine}
}

// Run observes the source until the context is cancelled or the change
// channel closes. One classification pass happens immediately on start; there
// is no navigation to wait for on initial load. Failures are logged and never
// stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if location, err := w.source.Location(); err == nil {
		w.mu.Lock()
		w.lastLocation = location
		w.mu.Unlock()
		w.classify(location)
	} else {
		log.Printf("[watch] initial location read failed: %v", err)
	}

	changes := w.source.Changes()
	for {
		select {
		case <-ctx.Done():
			w.cancelDebounce()
			w.machine.Disarm()
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				w.cancelDebounce()
				return nil
			}
			w.onMutation()
		}
	}
}

// onMutation compares the current location against the last observed one and,
// on change, debounces before classifying. A later change replaces the
// pending debounce timer.
func (w *Watcher) onMutation() {
	location, err := w.source.Location()
	if err != nil {
		log.Printf("[watch] location read failed: %v", err)
		return
	}

	w.mu.Lock()
	if location == w.lastLocation {
		w.mu.Unlock()
		return
	}
	w.lastLocation = location
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.cfg.DebounceDelay, func() { w.classify(location) })
	w.mu.Unlock()

	w.logf("[watch] location changed: %s", location)
}

func (w *Watcher) cancelDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
}

// classify decides whether the location is a posting view using two signals:
// the URL pattern or the presence of posting-indicator DOM markers. Either
// suffices. Posting views arm the machine under a fresh navigation sequence;
// anything else disarms it.
func (w *Watcher) classify(location string) {
	posting := platform.IsPostingURL(location)
	if !posting {
		posting = w.hasPostingMarkers(location)
	}

	if !posting {
		w.logf("[watch] not a posting view: %s", location)
		w.machine.Disarm()
		return
	}

	w.mu.Lock()
	w.navSeq++
	seq := w.navSeq
	w.mu.Unlock()

	w.logf("[watch] posting view detected (nav %d): %s", seq, location)
	w.machine.Arm(seq, location)
}

// hasPostingMarkers snapshots the document and checks the platform's posting
// marker selectors.
func (w *Watcher) hasPostingMarkers(location string) bool {
	markers := platform.PostingMarkerSelectors(platform.Detect(location))
	if len(markers) == 0 {
		return false
	}

	html, err := w.source.HTML()
	if err != nil {
		log.Printf("[watch] snapshot failed: %v", err)
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[watch] parse failed: %v", err)
		return false
	}

	for _, marker := range markers {
		if doc.Find(marker).Length() > 0 {
			return true
		}
	}
	return false
}

func (w *Watcher) logf(format string, args ...any) {
	if w.cfg.Verbose {
		log.Printf(format, args...)
	}
}
