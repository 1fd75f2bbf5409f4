package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"log/slog"

	"hopper/internal/config"
	"hopper/internal/logging"
)

// batchConcurrency bounds simultaneous writes when no interval is requested.
const batchConcurrency = 5

// Generator produces test files in the configured input directory.
type Generator struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds a generator for the configured input directory.
func New(cfg *config.Config, logger *slog.Logger) *Generator {
	return &Generator{cfg: cfg, logger: logging.NewComponentLogger(logger, "generator")}
}

// Create writes one test file named test_<counter>_<timestamp><ext> whose
// content is "<content-tag>-<counter>". It returns the full path.
func (g *Generator) Create(counter int) (string, error) {
	if err := os.MkdirAll(g.cfg.Paths.InputDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure input directory: %w", err)
	}

	name := fmt.Sprintf("test_%d_%d%s", counter, time.Now().Unix(), g.cfg.Processing.Extension)
	path := filepath.Join(g.cfg.Paths.InputDir, name)
	content := fmt.Sprintf("%s-%d", g.cfg.Generator.ContentTag, counter)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write test file: %w", err)
	}
	g.logger.Info("created test file", logging.String(logging.FieldPath, path))
	return path, nil
}

// CreateBatch writes count files with counters 1..count. A zero interval
// writes them concurrently; otherwise files are spaced sequentially with no
// pause after the last one.
func (g *Generator) CreateBatch(ctx context.Context, count int, interval time.Duration) ([]string, error) {
	if count <= 0 {
		return nil, errors.New("count must be positive")
	}
	if interval <= 0 {
		return g.createConcurrently(count)
	}
	return g.createSequentially(ctx, count, interval)
}

func (g *Generator) createConcurrently(count int) ([]string, error) {
	paths := make([]string, count)
	errs := make([]error, count)

	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			paths[idx], errs[idx] = g.Create(idx + 1)
		}(i)
	}
	wg.Wait()

	created := make([]string, 0, count)
	for _, path := range paths {
		if path != "" {
			created = append(created, path)
		}
	}
	return created, errors.Join(errs...)
}

func (g *Generator) createSequentially(ctx context.Context, count int, interval time.Duration) ([]string, error) {
	created := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		path, err := g.Create(i)
		if err != nil {
			return created, err
		}
		created = append(created, path)

		if i == count {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return created, ctx.Err()
		case <-timer.C:
		}
	}
	return created, nil
}
