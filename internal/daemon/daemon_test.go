package daemon_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hopper/internal/daemon"
	"hopper/internal/generator"
	"hopper/internal/logging"
	"hopper/internal/metadata"
	"hopper/internal/queue"
	"hopper/internal/testsupport"
)

func TestDaemonProcessesDroppedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	inputPath := filepath.Join(cfg.Paths.InputDir, "a.txt")
	testsupport.WriteFile(t, inputPath, "hello")

	testsupport.WaitFor(t, 5*time.Second, func() bool {
		entry, getErr := store.GetByPath(ctx, inputPath)
		return getErr == nil && entry != nil && entry.Status == queue.StatusCompleted
	}, "dropped file completed")

	original, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "a.txt"))
	if err != nil {
		t.Fatalf("expected original in output directory: %v", err)
	}
	if string(original) != "hello" {
		t.Fatalf("original content changed: %q", original)
	}
	processed, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "a.processed"))
	if err != nil {
		t.Fatalf("expected processed file in output directory: %v", err)
	}
	if string(processed) != "HELLO" {
		t.Fatalf("unexpected processed content %q", processed)
	}

	leftovers, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		t.Fatalf("read input dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected empty input directory, found %d entries", len(leftovers))
	}

	d.Stop()
}

func TestDaemonProcessesBatchExactlyOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(5))
	store := testsupport.MustOpenJournal(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	gen := generator.New(cfg, logging.NewNop())
	if _, err := gen.CreateBatch(ctx, 20, 0); err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}

	testsupport.WaitFor(t, 10*time.Second, func() bool {
		stats, statsErr := store.Stats(ctx)
		return statsErr == nil && stats[queue.StatusCompleted] == 20
	}, "all generated files completed")

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("expected 20 journal entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Attempts != 1 {
			t.Fatalf("%s processed %d times", entry.Path, entry.Attempts)
		}
		if entry.Status != queue.StatusCompleted {
			t.Fatalf("%s did not complete: %s", entry.Path, entry.Status)
		}
	}

	relocated, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(relocated) != 40 {
		t.Fatalf("expected 20 originals and 20 processed files, got %d entries", len(relocated))
	}

	d.Stop()
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()

	// Stop before start is a no-op.
	d.Stop()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Status(ctx).Running {
		t.Fatal("expected daemon to report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
	d.Stop()
}

func TestDaemonRestartsAfterStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	d.Stop()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	inputPath := filepath.Join(cfg.Paths.InputDir, "again.txt")
	testsupport.WriteFile(t, inputPath, "round two")
	testsupport.WaitFor(t, 5*time.Second, func() bool {
		entry, getErr := store.GetByPath(ctx, inputPath)
		return getErr == nil && entry != nil && entry.Status == queue.StatusCompleted
	}, "file processed after restart")

	d.Stop()
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)

	first, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(first.Stop)
	second, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(second.Stop)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected second instance to fail on lock")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("expected lock released after stop: %v", err)
	}
	second.Stop()
}

func TestDaemonContinuesAfterFailedTask(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Seal the file before the watcher can see it: stage it under an
	// extension the watcher ignores, drop permissions, then rename into
	// place so the create event observes an unreadable file.
	sealedPath := filepath.Join(cfg.Paths.InputDir, "sealed.txt")
	stagedPath := sealedPath + ".staging"
	testsupport.WriteFile(t, stagedPath, "secret")
	if err := os.Chmod(stagedPath, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := os.Rename(stagedPath, sealedPath); err != nil {
		t.Fatalf("rename into watched name: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(sealedPath, 0o644) })

	goodPath := filepath.Join(cfg.Paths.InputDir, "good.txt")
	testsupport.WriteFile(t, goodPath, "fine")

	testsupport.WaitFor(t, 5*time.Second, func() bool {
		stats, statsErr := store.Stats(ctx)
		return statsErr == nil && stats[queue.StatusFailed] == 1 && stats[queue.StatusCompleted] == 1
	}, "one failure and one completion")

	if _, err := os.Stat(sealedPath); err != nil {
		t.Fatalf("expected failed file to remain in input directory: %v", err)
	}
	record, err := metadata.Read(queue.MetadataPath(sealedPath))
	if err != nil {
		t.Fatalf("expected failed metadata record: %v", err)
	}
	if record.Status != queue.StatusFailed || record.ErrorMessage == "" {
		t.Fatalf("unexpected record %#v", record)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "good.processed")); err != nil {
		t.Fatalf("expected healthy file to finish: %v", err)
	}

	d.Stop()
}

func TestDaemonExposesMetricsWhenEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Metrics.Enabled = true
	store := testsupport.MustOpenJournal(t, cfg)
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	addr := d.Status(ctx).MetricsAddr
	if addr == "" {
		t.Fatal("expected metrics address when enabled")
	}
	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(payload), "hopper_queue_depth") {
		t.Fatal("expected hopper metrics in scrape output")
	}

	d.Stop()
	if d.Status(ctx).MetricsAddr != "" {
		t.Fatal("expected metrics endpoint to be gone after stop")
	}
}
