// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestHealthEndpoint(t *testing.T) {
	stats := NewStats()
	stats.RecordMask(2, 0, 1)
	srv := NewServer(":0", "1.0.0-test", stats, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var hr healthResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if hr.Status != "healthy" {
		t.Errorf("expected status=healthy, got %q", hr.Status)
	}
	if hr.Version != "1.0.0-test" {
		t.Errorf("expected version=1.0.0-test, got %q", hr.Version)
	}
	if hr.Statements != 1 {
		t.Errorf("expected statements=1, got %d", hr.Statements)
	}
}

func TestReadyEndpoint(t *testing.T) {
	srv := NewServer(":0", "test", NewStats(), zap.NewNop())
	handler := srv.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	srv.SetReady(true)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	stats := NewStats()
	stats.RecordMask(40, 1, 2)
	stats.RecordMask(2, 0, 0)
	stats.RecordFallback()
	stats.RecordError()

	srv := NewServer(":0", "test", stats, zap.NewNop())

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.handleMetrics(w, req)

	body := w.Body.String()
	for _, want := range []string{
		"sqlmask_statements_total 4",
		"sqlmask_literals_masked_total 42",
		"sqlmask_literals_preserved_total 1",
		"sqlmask_lists_collapsed_total 2",
		"sqlmask_parse_errors_total 2",
		"sqlmask_fallbacks_total 1",
		"# TYPE sqlmask_uptime_seconds gauge",
		"sqlmask_memory_rss_bytes",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestSnapshotMemory(t *testing.T) {
	snap := NewStats().Snapshot()
	if snap.MemoryRSSBytes == 0 {
		t.Error("expected non-zero memory usage")
	}
	if snap.Goroutines <= 0 {
		t.Error("expected at least one goroutine")
	}
}

func TestServerStartStop(t *testing.T) {
	stats := NewStats()
	srv := NewServer("127.0.0.1:0", "test", stats, zap.NewNop())

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
