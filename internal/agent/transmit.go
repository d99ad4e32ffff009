package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"healthwatch/internal/shared"
)

// ErrRejected marks a report the server refused as invalid. Retrying would
// send the same bad payload again, so the transmitter gives up immediately.
type ErrRejected struct {
	StatusCode int
	Body       string
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("server rejected report (HTTP %d): %s", e.StatusCode, e.Body)
}

// Transmitter delivers health reports to the ingestion endpoint with bounded
// exponential backoff. Transport failures and 5xx responses are retried up to
// MaxAttempts; 4xx responses are terminal.
type Transmitter struct {
	BaseURL     string
	Client      *http.Client
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Timeout     time.Duration
	Log         *logrus.Logger

	// sleep is swapped out in tests.
	sleep func(context.Context, time.Duration) error
}

func NewTransmitter(cfg shared.TransmitConfig, baseURL string, log *logrus.Logger) *Transmitter {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Transmitter{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Client:      &http.Client{},
		MaxAttempts: attempts,
		BackoffBase: time.Duration(cfg.BackoffBaseMS) * time.Millisecond,
		BackoffMax:  time.Duration(cfg.BackoffMaxMS) * time.Millisecond,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		Log:         log,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Send posts the report, retrying transient failures. After the attempt
// ceiling the report is dropped and the last error returned; the caller logs
// and moves on to the next cycle rather than queueing a backlog.
func (t *Transmitter) Send(ctx context.Context, report *shared.HealthReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}

	backoff := t.BackoffBase
	var lastErr error

	for attempt := 1; attempt <= t.MaxAttempts; attempt++ {
		lastErr = t.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		var rej *ErrRejected
		if errors.As(lastErr, &rej) {
			return lastErr
		}
		if attempt == t.MaxAttempts {
			break
		}
		t.Log.WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": backoff.String(),
		}).Warnf("report transmission failed, retrying: %v", lastErr)

		if err := t.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
		if backoff > t.BackoffMax {
			backoff = t.BackoffMax
		}
	}
	return fmt.Errorf("report dropped after %d attempts: %w", t.MaxAttempts, lastErr)
}

func (t *Transmitter) post(ctx context.Context, body []byte) error {
	actx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, t.BaseURL+"/api/v1/reports", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(b))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ErrRejected{StatusCode: resp.StatusCode, Body: msg}
	}
	return fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode, msg)
}
