package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("empty URL should be rejected")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	p, err := New(Config{URL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if p.config.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", p.config.Timeout, DefaultTimeout)
	}
}

func TestPublish_PostsJSONRecord(t *testing.T) {
	var gotBody []byte
	var gotContentType, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		gotHeader = r.Header.Get("X-Copybot-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := New(Config{
		URL:     srv.URL,
		Headers: map[string]string{"X-Copybot-Token": "tok"},
		Retries: 0,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = p.Close() }()

	event := map[string]any{"type": "run_end", "run_id": "replay-1700000000"}
	if err := p.Publish(t.Context(), "run_lifecycle", event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotHeader != "tok" {
		t.Errorf("custom header not sent, got %q", gotHeader)
	}

	var received record
	if err := json.Unmarshal(gotBody, &received); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if received.Topic != "run_lifecycle" {
		t.Errorf("topic = %q", received.Topic)
	}
	if received.Event["run_id"] != "replay-1700000000" {
		t.Errorf("event payload wrong: %v", received.Event)
	}
	if received.Ts == 0 {
		t.Error("ts should be set")
	}
}

func TestPublish_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := New(Config{URL: srv.URL, Retries: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = p.Close() }()

	if err := p.Publish(t.Context(), "run_lifecycle", map[string]any{}); err != nil {
		t.Fatalf("publish should succeed on retry: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestPublish_4xxNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := New(Config{URL: srv.URL, Retries: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = p.Close() }()

	err = p.Publish(t.Context(), "run_lifecycle", map[string]any{})
	if err == nil {
		t.Fatal("expected 4xx to fail")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("4xx should not be retried, got %d requests", got)
	}
}

func TestPublish_FailsAfterAttemptsExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := New(Config{URL: srv.URL, Retries: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = p.Close() }()

	if err := p.Publish(t.Context(), "run_lifecycle", map[string]any{}); err == nil {
		t.Fatal("expected failure after retries exhausted")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 1 initial + 1 retry = 2 requests, got %d", got)
	}
}

func TestPublish_EmptyTopicRejected(t *testing.T) {
	p, err := New(Config{URL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := p.Publish(t.Context(), "", map[string]any{}); err == nil {
		t.Error("empty topic should be rejected")
	}
}
