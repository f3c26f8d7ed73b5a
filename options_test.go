package ddb

import (
	"testing"

	"github.com/dronedb/ddbcore/ddblog"
)

func TestApplyOptionsFillsDefaultsWhenNoOptionsGiven(t *testing.T) {
	cfg := applyOptions(nil, nil)
	if cfg.Logger == nil {
		t.Fatal("expected a non-nil Logger from ddbconfig.Default")
	}
	if cfg.HashChunkSize <= 0 {
		t.Fatal("expected a positive default HashChunkSize")
	}
}

func TestWithLogLevelCreatesLoggerWhenAbsent(t *testing.T) {
	cfg := applyOptions(nil, []Option{WithLogLevel(ddblog.Warn)})
	if cfg.Logger.Level != ddblog.Warn {
		t.Fatalf("Logger.Level = %v, want Warn", cfg.Logger.Level)
	}
}

func TestWithLogLevelOverridesExistingLogger(t *testing.T) {
	cfg := applyOptions(nil, []Option{WithLogLevel(ddblog.Debug), WithLogLevel(ddblog.Error)})
	if cfg.Logger.Level != ddblog.Error {
		t.Fatalf("Logger.Level = %v, want Error", cfg.Logger.Level)
	}
}

func TestWithLogFileSetsFilePath(t *testing.T) {
	cfg := applyOptions(nil, []Option{WithLogFile("/tmp/ddb.log")})
	if cfg.Logger.File != "/tmp/ddb.log" {
		t.Fatalf("Logger.File = %q, want /tmp/ddb.log", cfg.Logger.File)
	}
}

func TestWithoutTerminalLogSuppressesStdout(t *testing.T) {
	cfg := applyOptions(nil, []Option{WithoutTerminalLog()})
	if !cfg.Logger.NoTerminal {
		t.Fatal("expected NoTerminal to be true")
	}
}

func TestWithWorkersSetsConcurrency(t *testing.T) {
	cfg := applyOptions(nil, []Option{WithWorkers(4)})
	if cfg.Workers != 4 {
		t.Fatalf("Workers = %d, want 4", cfg.Workers)
	}
}

func TestWithCacheDirOverridesCacheRoot(t *testing.T) {
	cfg := applyOptions(nil, []Option{WithCacheDir("/custom/cache")})
	if cfg.CacheDir != "/custom/cache" {
		t.Fatalf("CacheDir = %q, want /custom/cache", cfg.CacheDir)
	}
}

func TestOptionsComposeInOrder(t *testing.T) {
	cfg := applyOptions(nil, []Option{
		WithLogLevel(ddblog.Debug),
		WithLogFile("/tmp/ddb.log"),
		WithoutTerminalLog(),
		WithWorkers(2),
		WithCacheDir("/cache"),
	})
	if cfg.Logger.Level != ddblog.Debug || cfg.Logger.File != "/tmp/ddb.log" || !cfg.Logger.NoTerminal {
		t.Fatalf("unexpected logger state: %+v", cfg.Logger)
	}
	if cfg.Workers != 2 || cfg.CacheDir != "/cache" {
		t.Fatalf("unexpected config state: workers=%d cacheDir=%q", cfg.Workers, cfg.CacheDir)
	}
}
