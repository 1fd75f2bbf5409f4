package config

const (
	defaultInputDir               = "~/hopper/input"
	defaultOutputDir              = "~/hopper/processed"
	defaultLogDir                 = "~/.local/share/hopper/logs"
	defaultExtension              = ".txt"
	defaultWorkers                = 5
	defaultQueueCapacity          = 1024
	defaultPollTimeoutMS          = 1000
	defaultShutdownTimeoutSeconds = 5
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultMetricsBind            = "127.0.0.1:9091"
	defaultContentTag             = "test-content"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Processing: Processing{
			Extension:              defaultExtension,
			Workers:                defaultWorkers,
			QueueCapacity:          defaultQueueCapacity,
			PollTimeoutMS:          defaultPollTimeoutMS,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
		Generator: Generator{
			ContentTag: defaultContentTag,
		},
	}
}
