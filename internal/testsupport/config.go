package testsupport

import (
	"path/filepath"
	"testing"

	"hopper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields, applies any provided options, and creates the
// directories so stores and watchers can start immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "processed")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Processing.PollTimeoutMS = 50
	cfgVal.Metrics.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithWorkers overrides the worker count on the test config.
func WithWorkers(count int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.Workers = count
	}
}

// WithExtension overrides the watched file extension on the test config.
func WithExtension(ext string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.Extension = ext
	}
}

// WithDelayRange sets the simulated processing delay bounds in milliseconds.
func WithDelayRange(minMS, maxMS int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.DelayMinMS = minMS
		b.cfg.Processing.DelayMaxMS = maxMS
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
