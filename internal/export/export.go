// Package export implements the optional push exporter. It marshals
// series snapshots to JSON, compresses with gzip, and POSTs them to a
// remote collector endpoint with exponential backoff on failure. All
// monitor state is in-memory only, so a batch that cannot be delivered
// after the retries is dropped, not persisted.
package export

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/gpumon-app/agent/internal/models"
)

const (
	// maxRetries is the number of retry attempts before a batch is dropped.
	maxRetries = 3

	// baseRetryDelay is the base delay for exponential backoff between retries.
	baseRetryDelay = 2 * time.Second

	// requestTimeout is the HTTP request timeout for each send attempt.
	requestTimeout = 10 * time.Second
)

// Exporter pushes snapshot batches to a remote collector. Batches are
// enqueued by the sampling callback and delivered one at a time by Run,
// so a slow or down endpoint never piles up concurrent sends or reorders
// batches; at most one batch waits while another is in flight.
type Exporter struct {
	client   *http.Client
	url      string
	token    string
	hostname string
	logger   *zap.Logger
	queue    chan []models.SeriesSnapshot

	// retryDelay is the backoff base; overridden in tests.
	retryDelay time.Duration
}

// New creates an Exporter posting to url with the given bearer token.
func New(url, token string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	hostname, _ := os.Hostname()
	return &Exporter{
		client: &http.Client{
			Timeout: requestTimeout,
		},
		url:        url,
		token:      token,
		hostname:   hostname,
		logger:     logger,
		queue:      make(chan []models.SeriesSnapshot, 1),
		retryDelay: baseRetryDelay,
	}
}

// Enqueue submits a batch for delivery by the Run loop. When a send is
// already backed up the batch is dropped — the next tick produces a
// fresher one anyway.
func (e *Exporter) Enqueue(series []models.SeriesSnapshot) {
	select {
	case e.queue <- series:
	default:
		e.logger.Warn("Export backlog full, dropping batch",
			zap.Int("series", len(series)))
	}
}

// Run delivers enqueued batches one at a time until the context is
// cancelled. Call it from a single goroutine.
func (e *Exporter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case series := <-e.queue:
			e.Send(series)
		}
	}
}

// Send attempts to deliver one snapshot batch. On failure after all
// retries the batch is logged and dropped.
func (e *Exporter) Send(series []models.SeriesSnapshot) {
	batch := models.ExportBatch{
		Hostname:  e.hostname,
		Timestamp: time.Now().UTC(),
		Series:    series,
	}

	data, err := json.Marshal(batch)
	if err != nil {
		e.logger.Error("Failed to marshal batch", zap.Error(err))
		return
	}

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(data); err != nil {
		e.logger.Error("Failed to compress batch", zap.Error(err))
		return
	}
	if err := gz.Close(); err != nil {
		e.logger.Error("Failed to finalize gzip compression", zap.Error(err))
		return
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * e.retryDelay
			e.logger.Warn("Retrying export",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			time.Sleep(delay)
		}

		err := e.doSend(compressed.Bytes())
		if err == nil {
			e.logger.Debug("Batch exported", zap.Int("series", len(series)))
			return
		}
		e.logger.Warn("Export failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	e.logger.Error("All retries exhausted, dropping batch",
		zap.Int("series", len(series)))
}

// doSend performs a single HTTP POST to the collector endpoint.
func (e *Exporter) doSend(compressedData []byte) error {
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		e.url,
		bytes.NewReader(compressedData),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
