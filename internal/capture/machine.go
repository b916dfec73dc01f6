// Package capture implements the per-page-context state machine that drives
// extraction attempts, owns retry and dedup state, and finalizes at most one
// record per distinct posting.
package capture

import (
	"log"
	"sync"
	"time"

	"github.com/jonathan/jobwatch/internal/types"
)

// State enumerates the machine's lifecycle states.
type State int

// Machine states. Finalized and Exhausted are terminal per navigation; the
// machine returns to Idle afterward and awaits the next navigation.
const (
	StateIdle State = iota
	StateArmed
	StateWaiting
	StateExtracting
	StateRetrying
	StateFinalized
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateWaiting:
		return "waiting"
	case StateExtracting:
		return "extracting"
	case StateRetrying:
		return "retrying"
	case StateFinalized:
		return "finalized"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ExtractFunc snapshots the current document and runs the field extractor.
// A (nil, nil) return means "not ready, retry".
type ExtractFunc func() (*types.JobPostingRecord, error)

// FinalizeFunc receives each finalized record exactly once. Implementations
// must not block; the pipeline hands the record to the relay on its own
// goroutine.
type FinalizeFunc func(*types.JobPostingRecord)

// Config holds the machine's timing and retry parameters.
type Config struct {
	// InitialDelay is the wait before the first extraction attempt after a
	// navigation. It is longer than RetryDelay: first paint lags further
	// behind navigation than incremental content hydration does.
	InitialDelay time.Duration
	// RetryDelay is the wait between retry attempts.
	RetryDelay time.Duration
	// MaxRetries caps extraction retries per navigation.
	MaxRetries int
	// Verbose enables diagnostic logging.
	Verbose bool
}

// DefaultConfig returns the production timing parameters.
func DefaultConfig() Config {
	return Config{
		InitialDelay: 1500 * time.Millisecond,
		RetryDelay:   800 * time.Millisecond,
		MaxRetries:   5,
	}
}

// Machine is the explicit per-context state object: state enum, retry count,
// last-captured id, captured URLs, and the single pending timer handle.
type Machine struct {
	mu sync.Mutex

	cfg      Config
	extract  ExtractFunc
	finalize FinalizeFunc

	state          State
	retryCount     int
	navSeq         uint64
	lastCapturedID string
	capturedURLs   map[string]bool
	pending        *time.Timer
}

// New creates a machine for one page context.
func New(cfg Config, extract ExtractFunc, finalize FinalizeFunc) *Machine {
	return &Machine{
		cfg:          cfg,
		extract:      extract,
		finalize:     finalize,
		state:        StateIdle,
		capturedURLs: make(map[string]bool),
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastCapturedID returns the id of the most recently finalized record.
func (m *Machine) LastCapturedID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCapturedID
}

// Arm is called by the navigation watcher when a posting view is recognized.
// navSeq identifies the navigation event: a repeat of the current sequence
// while work is pending is ignored, while a fresh sequence cancels any
// in-flight work and restarts from Armed (last-trigger-wins). Re-visiting an
// already-captured URL in this context is a no-op.
func (m *Machine) Arm(navSeq uint64, pageURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capturedURLs[pageURL] {
		m.logf("[capture] already captured %s, ignoring", pageURL)
		return
	}

	if navSeq == m.navSeq && (m.state == StateWaiting || m.state == StateExtracting || m.state == StateRetrying) {
		// Duplicate trigger from the same navigation event.
		return
	}

	m.navSeq = navSeq
	m.retryCount = 0
	m.state = StateArmed
	m.scheduleLocked(navSeq, m.cfg.InitialDelay)
}

// Disarm cancels any pending work, used when a navigation leaves a posting
// view or the context shuts down.
func (m *Machine) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelPendingLocked()
	m.state = StateIdle
}

// scheduleLocked replaces the pending timer with a new one. There is never
// more than one live timer for a context.
func (m *Machine) scheduleLocked(navSeq uint64, delay time.Duration) {
	m.cancelPendingLocked()
	m.state = StateWaiting
	m.pending = time.AfterFunc(delay, func() { m.attempt(navSeq) })
}

func (m *Machine) cancelPendingLocked() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

// attempt runs one extraction pass for the given navigation sequence. The
// extractor itself runs outside the lock; a stale sequence discards the
// result, which is how a superseding navigation cancels in-flight work.
func (m *Machine) attempt(navSeq uint64) {
	m.mu.Lock()
	if navSeq != m.navSeq || m.state != StateWaiting {
		m.mu.Unlock()
		return
	}
	m.state = StateExtracting
	m.mu.Unlock()

	record, err := m.extract()

	m.mu.Lock()
	defer m.mu.Unlock()
	if navSeq != m.navSeq || m.state != StateExtracting {
		// Superseded or disarmed while the extractor ran.
		return
	}

	if err != nil {
		m.logf("[capture] extraction error: %v", err)
		record = nil
	}
	if record == nil || !record.Viable() {
		m.retryLocked(navSeq)
		return
	}

	if record.PlatformJobID == m.lastCapturedID && m.lastCapturedID != "" {
		// Same posting under a new URL shape: dedup by id, independent of
		// URL dedup.
		m.capturedURLs[record.SourceURL] = true
		m.state = StateIdle
		m.logf("[capture] duplicate id %s, skipping", record.PlatformJobID)
		return
	}

	m.lastCapturedID = record.PlatformJobID
	m.capturedURLs[record.SourceURL] = true
	m.state = StateFinalized
	m.logf("[capture] finalized %s (%s)", record.PlatformJobID, record.DataQuality)

	finalize := m.finalize
	m.state = StateIdle
	if finalize != nil {
		finalize(record)
	}
}

// retryLocked advances the retry counter and either schedules the next
// attempt or gives up for this navigation.
func (m *Machine) retryLocked(navSeq uint64) {
	m.retryCount++
	if m.retryCount > m.cfg.MaxRetries {
		m.state = StateExhausted
		log.Printf("[capture] extraction exhausted after %d attempts (nav %d)", m.retryCount, navSeq)
		m.retryCount = 0
		m.state = StateIdle
		return
	}
	m.state = StateRetrying
	m.logf("[capture] not ready, retry %d/%d", m.retryCount, m.cfg.MaxRetries)
	m.scheduleLocked(navSeq, m.cfg.RetryDelay)
}

func (m *Machine) logf(format string, args ...any) {
	if m.cfg.Verbose {
		log.Printf(format, args...)
	}
}
