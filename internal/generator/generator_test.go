package generator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"hopper/internal/generator"
	"hopper/internal/logging"
	"hopper/internal/testsupport"
)

func TestCreateWritesTaggedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := generator.New(cfg, logging.NewNop())

	path, err := gen.Create(7)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	pattern := regexp.MustCompile(`^test_7_\d+\.txt$`)
	if !pattern.MatchString(filepath.Base(path)) {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if string(content) != "test-content-7" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestCreateBatchConcurrent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := generator.New(cfg, logging.NewNop())

	paths, err := gen.CreateBatch(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	if len(paths) != 10 {
		t.Fatalf("expected 10 files, got %d", len(paths))
	}

	contents := make(map[string]bool, len(paths))
	for _, path := range paths {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			t.Fatalf("read %s: %v", path, readErr)
		}
		contents[string(data)] = true
	}
	if len(contents) != 10 {
		t.Fatalf("expected 10 distinct payloads, got %d", len(contents))
	}
	if !contents["test-content-1"] || !contents["test-content-10"] {
		t.Fatalf("expected counter range 1..10 in payloads: %v", contents)
	}
}

func TestCreateBatchSequentialSpacing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := generator.New(cfg, logging.NewNop())

	started := time.Now()
	paths, err := gen.CreateBatch(context.Background(), 3, 15*time.Millisecond)
	if err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %d", len(paths))
	}
	// Two gaps between three files.
	if elapsed := time.Since(started); elapsed < 30*time.Millisecond {
		t.Fatalf("expected spacing between files, finished in %s", elapsed)
	}
}

func TestCreateBatchHonorsContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := generator.New(cfg, logging.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	paths, err := gen.CreateBatch(ctx, 5, time.Hour)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected a single file before cancellation, got %d", len(paths))
	}
}

func TestCreateBatchRejectsNonPositiveCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := generator.New(cfg, logging.NewNop())

	if _, err := gen.CreateBatch(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for zero count")
	}
}
