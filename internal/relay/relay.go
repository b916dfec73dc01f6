// Package relay delivers finalized records to the companion application and
// falls back to a bounded local queue when it is unreachable.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/jobwatch/internal/schemas"
	"github.com/jonathan/jobwatch/internal/types"
)

// DefaultTimeout caps one delivery attempt end to end. There is no retry
// loop: a failed attempt goes straight to the fallback queue.
const DefaultTimeout = 10 * time.Second

// tokenTTL bounds the validity of a signed delivery token.
const tokenTTL = time.Minute

// Config holds relay parameters.
type Config struct {
	// Endpoint is the companion application's capture endpoint.
	Endpoint string
	// ProbeEndpoint answers connectivity checks without side effects.
	ProbeEndpoint string
	// AuthSecret, when set, signs an HS256 bearer token on every request.
	AuthSecret string
	Timeout    time.Duration
	Verbose    bool
}

// Relay owns the HTTP client and the fallback queue for one installation.
type Relay struct {
	cfg    Config
	client *http.Client
	queue  Queue
}

// New creates a relay. The queue receives records the companion application
// could not accept.
func New(cfg Config, queue Queue) *Relay {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Relay{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		queue:  queue,
	}
}

// Queue exposes the relay's fallback queue for inspection commands.
func (r *Relay) Queue() Queue {
	return r.queue
}

// Deliver attempts the primary path and falls back to the local queue on any
// failure. It never returns an error: every outcome is expressed in the ack.
func (r *Relay) Deliver(ctx context.Context, record *types.JobPostingRecord) types.RelayAck {
	msg := types.RelayMessage{Type: types.RelayMessageType, Job: *record}

	payload, err := json.Marshal(msg)
	if err != nil {
		return r.fallback(ctx, record, fmt.Sprintf("marshal failed: %v", err))
	}
	if err := schemas.ValidateRelayMessage(payload); err != nil {
		// A schema mismatch means the companion contract drifted; still
		// deliver, the companion decides what to reject.
		log.Printf("[relay] envelope failed schema validation: %v", err)
	}

	ack, err := r.post(ctx, payload)
	if err != nil {
		r.logf("[relay] primary delivery failed: %v", err)
		return r.fallback(ctx, record, err.Error())
	}
	r.logf("[relay] delivered %s via primary", record.PlatformJobID)
	return ack
}

func (r *Relay) post(ctx context.Context, payload []byte) (types.RelayAck, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return types.RelayAck{}, &DeliveryError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if err := r.authorize(req); err != nil {
		return types.RelayAck{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return types.RelayAck{}, &DeliveryError{Message: "companion unreachable", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.RelayAck{}, &DeliveryError{Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var ack types.RelayAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		// A 200 with an unreadable body still counts as delivered.
		return types.RelayAck{Success: true, Method: types.MethodPrimary}, nil
	}
	if ack.Method == "" {
		ack.Method = types.MethodPrimary
	}
	return ack, nil
}

// authorize attaches a short-lived signed token when a shared secret is
// configured.
func (r *Relay) authorize(req *http.Request) error {
	if r.cfg.AuthSecret == "" {
		return nil
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "jobwatch",
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(r.cfg.AuthSecret))
	if err != nil {
		return &DeliveryError{Message: "failed to sign token", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}

// fallback appends the record to the bounded local queue. Queue overflow is
// handled inside the queue by evicting the oldest entry; only a real queue
// failure yields an unsuccessful ack.
func (r *Relay) fallback(ctx context.Context, record *types.JobPostingRecord, reason string) types.RelayAck {
	entry := types.QueueEntry{Job: *record, CapturedAt: time.Now().UTC()}
	if err := r.queue.Append(ctx, entry); err != nil {
		log.Printf("[relay] fallback queue append failed: %v", err)
		return types.RelayAck{Success: false, Reason: reason}
	}
	r.logf("[relay] queued %s locally", record.PlatformJobID)
	return types.RelayAck{Success: true, Method: types.MethodLocal}
}

// Probe reports whether the companion application is currently reachable.
// It has no side effects and never returns an error: any failure means "not
// connected".
func (r *Relay) Probe(ctx context.Context) bool {
	endpoint := r.cfg.ProbeEndpoint
	if endpoint == "" {
		endpoint = r.cfg.Endpoint
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	if err := r.authorize(req); err != nil {
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode < http.StatusInternalServerError
}

func (r *Relay) logf(format string, args ...any) {
	if r.cfg.Verbose {
		log.Printf(format, args...)
	}
}
