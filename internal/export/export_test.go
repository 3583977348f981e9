package export

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gpumon-app/agent/internal/models"
)

func TestSend_PostsGzippedJSON(t *testing.T) {
	var got models.ExportBatch
	var auth, encoding string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		encoding = r.Header.Get("Content-Encoding")

		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Error(err)
			return
		}
		body, err := io.ReadAll(gz)
		if err != nil {
			t.Error(err)
			return
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(srv.URL, "secret", zap.NewNop())
	e.Send([]models.SeriesSnapshot{
		{Series: "card0.busy", Value: 42, Display: "42%", History: []float64{40, 42}},
	})

	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}
	if encoding != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", encoding)
	}
	if len(got.Series) != 1 || got.Series[0].Series != "card0.busy" {
		t.Errorf("decoded batch = %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("batch timestamp is zero")
	}
}

func TestEnqueue_DropsWhenBacklogFull(t *testing.T) {
	e := New("http://localhost:0", "", zap.NewNop())

	first := []models.SeriesSnapshot{{Series: "card0.busy"}}
	second := []models.SeriesSnapshot{{Series: "cpu"}}

	// No Run loop draining: the first batch fills the backlog, the
	// second is dropped rather than stacking up a concurrent send.
	e.Enqueue(first)
	e.Enqueue(second)

	if len(e.queue) != 1 {
		t.Fatalf("queued batches = %d, want 1", len(e.queue))
	}
	if got := <-e.queue; got[0].Series != "card0.busy" {
		t.Errorf("queued batch = %q, want the first enqueued", got[0].Series)
	}
}

func TestRun_DeliversEnqueuedBatches(t *testing.T) {
	received := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Error(err)
			return
		}
		var batch models.ExportBatch
		if err := json.NewDecoder(gz).Decode(&batch); err != nil {
			t.Error(err)
			return
		}
		received <- batch.Series[0].Series
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(srv.URL, "", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	e.Enqueue([]models.SeriesSnapshot{{Series: "card0.busy"}})

	select {
	case got := <-received:
		if got != "card0.busy" {
			t.Errorf("delivered series = %q, want card0.busy", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestSend_DropsAfterRetries(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(srv.URL, "", zap.NewNop())
	// Shrink the backoff so the test does not sleep for real.
	e.retryDelay = time.Millisecond
	e.Send(nil)

	if requests != maxRetries+1 {
		t.Errorf("requests = %d, want %d", requests, maxRetries+1)
	}
}
