package config

import (
	"errors"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.input_dir")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.Extension == "." {
		return errors.New("processing.extension must name a suffix after the dot")
	}
	if c.Processing.Workers <= 0 {
		return errors.New("processing.workers must be positive")
	}
	if c.Processing.QueueCapacity <= 0 {
		return errors.New("processing.queue_capacity must be positive")
	}
	if c.Processing.PollTimeoutMS <= 0 {
		return errors.New("processing.poll_timeout_ms must be positive")
	}
	if c.Processing.ShutdownTimeoutSeconds <= 0 {
		return errors.New("processing.shutdown_timeout_seconds must be positive")
	}
	if c.Processing.DelayMaxMS < c.Processing.DelayMinMS {
		return errors.New("processing.delay_max_ms must be at least processing.delay_min_ms")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && c.Metrics.Bind == "" {
		return errors.New("metrics.bind must be set when metrics.enabled is true")
	}
	return nil
}
