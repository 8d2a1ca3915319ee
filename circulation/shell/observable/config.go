package observable

import (
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

// Config bundles the collectors shared by all wrappers of one process. Nil fields are skipped.
type Config struct {
	Metrics shell.MetricsCollector
	Tracing shell.TracingCollector
	Logger  shell.ContextualLogger
}

// CommandOptions turns cfg into the options of a CommandWrapper.
func CommandOptions[C shell.Command](cfg Config) []CommandOption[C] {
	var opts []CommandOption[C]

	if cfg.Metrics != nil {
		opts = append(opts, WithCommandMetrics[C](cfg.Metrics))
	}

	if cfg.Tracing != nil {
		opts = append(opts, WithCommandTracing[C](cfg.Tracing))
	}

	if cfg.Logger != nil {
		opts = append(opts, WithCommandContextualLogging[C](cfg.Logger))
	}

	return opts
}

// QueryOptions turns cfg into the options of a QueryWrapper.
func QueryOptions[Q shell.Query, R any](cfg Config) []QueryOption[Q, R] {
	var opts []QueryOption[Q, R]

	if cfg.Metrics != nil {
		opts = append(opts, WithQueryMetrics[Q, R](cfg.Metrics))
	}

	if cfg.Tracing != nil {
		opts = append(opts, WithQueryTracing[Q, R](cfg.Tracing))
	}

	if cfg.Logger != nil {
		opts = append(opts, WithQueryContextualLogging[Q, R](cfg.Logger))
	}

	return opts
}
