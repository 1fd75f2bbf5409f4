package metrics_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"hopper/internal/metrics"
	"hopper/internal/testsupport"
)

func TestNewServerDisabledByDefault(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	srv := metrics.NewServer(cfg, nil, nil, nil)
	if srv != nil {
		t.Fatalf("expected nil server when metrics disabled, got %#v", srv)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("nil server Start should be a no-op, got %v", err)
	}
	srv.Stop()
}

func TestServerServesMetricsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Metrics.Enabled = true
	store := testsupport.MustOpenJournal(t, cfg)

	metrics.FileDiscovered()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := metrics.NewServer(cfg, store, func() int { return 3 }, nil)
	if srv == nil {
		t.Fatal("expected server when metrics enabled")
	}
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	if srv.Addr() == "" {
		t.Fatal("expected bound address")
	}

	body := httpGet(t, fmt.Sprintf("http://%s/metrics", srv.Addr()))
	for _, name := range []string{
		"hopper_files_discovered_total",
		"hopper_tasks_completed_total",
		"hopper_tasks_failed_total",
		"hopper_task_duration_seconds",
		"hopper_queue_depth 3",
		"hopper_journal_entries",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output missing %s:\n%s", name, body)
		}
	}

	health := httpGet(t, fmt.Sprintf("http://%s/healthz", srv.Addr()))
	if strings.TrimSpace(health) != "ok" {
		t.Fatalf("unexpected health response %q", health)
	}
}

func httpGet(t *testing.T, url string) string {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s returned status %d", url, resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(payload)
}
