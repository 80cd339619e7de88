// Package tracking delivers best-effort analytics events to an HTTP sink.
// Nothing here can fail a user request: events are queued, and a full queue
// or a failed delivery is logged and dropped.
package tracking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/creator-calc/internal/utils"
)

const (
	EventCalculationCompleted = "calculation.completed"
	EventCalculationSaved     = "calculation.saved"
	EventEnterpriseCompleted  = "calculation.enterprise_completed"
)

type Event struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	UserID          string         `json:"userId,omitempty"`
	Platform        string         `json:"platform,omitempty"`
	MonthlyEarnings float64        `json:"monthlyEarnings,omitempty"`
	Props           map[string]any `json:"props,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

type Tracker interface {
	Track(e Event)
}

type Noop struct{}

func (Noop) Track(Event) {}

type SinkTracker struct {
	c       HTTPClient
	url     string
	secret  string
	queue   chan Event
	log     *slog.Logger
	backoff utils.Backoff
}

func NewSinkTracker(c HTTPClient, url, secret string, queueSize int, log *slog.Logger) *SinkTracker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &SinkTracker{
		c:       c,
		url:     url,
		secret:  secret,
		queue:   make(chan Event, queueSize),
		log:     log,
		backoff: utils.NewBackoff(200*time.Millisecond, 3),
	}
}

// Track enqueues without blocking.
func (t *SinkTracker) Track(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	select {
	case t.queue <- e:
	default:
		t.log.Warn("analytics queue full, event dropped", slog.String("event", e.Name))
	}
}

// Run delivers queued events until ctx is done, then flushes what is left
// with a short grace period.
func (t *SinkTracker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			t.flush()
			return nil
		}
		select {
		case e := <-t.queue:
			t.deliver(ctx, e)
		case <-ctx.Done():
			t.flush()
			return nil
		}
	}
}

func (t *SinkTracker) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case e := <-t.queue:
			t.deliver(ctx, e)
		default:
			return
		}
	}
}

func (t *SinkTracker) deliver(ctx context.Context, e Event) {
	err := t.backoff.Do(ctx, func(int) error { return t.send(ctx, e) })
	if err != nil {
		t.log.Warn("analytics delivery failed", slog.String("event", e.Name), slog.String("id", e.ID), slog.String("err", err.Error()))
	}
}

func (t *SinkTracker) send(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(t.secret, b))
	resp, err := t.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sink non-2xx: %d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

// Sign is the hex HMAC-SHA256 of body, sent as X-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
