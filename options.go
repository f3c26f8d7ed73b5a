package ddb

import (
	"github.com/dronedb/ddbcore/ddbconfig"
	"github.com/dronedb/ddbcore/ddblog"
)

// Option configures a WorkingTree at construction time, mirroring the
// teacher's functional-option pattern for VirtualFileSystemOptions.
type Option func(*ddbconfig.Config)

// WithLogLevel sets the logger level used for every mutating operation.
func WithLogLevel(level ddblog.LogLevel) Option {
	return func(cfg *ddbconfig.Config) {
		if cfg.Logger == nil {
			cfg.Logger = ddblog.New("ddb", level, "", false)
			return
		}
		cfg.Logger.Level = level
	}
}

// WithLogFile routes log output to a rotated file in addition to stdout.
func WithLogFile(path string) Option {
	return func(cfg *ddbconfig.Config) {
		if cfg.Logger == nil {
			cfg.Logger = ddblog.New("ddb", ddblog.Info, path, false)
			return
		}
		cfg.Logger = ddblog.New(cfg.Logger.Name, cfg.Logger.Level, path, cfg.Logger.NoTerminal)
	}
}

// WithoutTerminalLog suppresses stdout logging, leaving only the log file
// (if any) or a fully discarded logger.
func WithoutTerminalLog() Option {
	return func(cfg *ddbconfig.Config) {
		if cfg.Logger == nil {
			cfg.Logger = ddblog.New("ddb", ddblog.Info, "", true)
			return
		}
		cfg.Logger = ddblog.New(cfg.Logger.Name, cfg.Logger.Level, cfg.Logger.File, true)
	}
}

// WithWorkers bounds the concurrency of the add() hash/extract worker pool.
func WithWorkers(n int) Option {
	return func(cfg *ddbconfig.Config) {
		cfg.Workers = n
	}
}

// WithCacheDir overrides the resolved thumbnail/tile cache root.
func WithCacheDir(dir string) Option {
	return func(cfg *ddbconfig.Config) {
		cfg.CacheDir = dir
	}
}

func applyOptions(cfg *ddbconfig.Config, opts []Option) *ddbconfig.Config {
	// Options run before Default so the logging options see a nil Logger
	// (and build a real one) instead of Default's discard logger.
	out := ddbconfig.Config{}
	if cfg != nil {
		out = *cfg
	}
	for _, opt := range opts {
		opt(&out)
	}
	return ddbconfig.Default(&out)
}
