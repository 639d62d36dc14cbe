package sluice

import (
	"context"
	"runtime"
	"testing"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("validateConfig returned error for defaults: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Workers != 0 {
		t.Fatalf("Workers default = %d; want 0", cfg.Workers)
	}
	if cfg.QueueCapacity != 0 {
		t.Fatalf("QueueCapacity default = %d; want 0", cfg.QueueCapacity)
	}
	if cfg.ResultsBuffer != 1024 {
		t.Fatalf("ResultsBuffer default = %d; want 1024", cfg.ResultsBuffer)
	}
	if cfg.ErrorTagging {
		t.Fatalf("ErrorTagging default = true; want false")
	}
	if cfg.RetryAttempts != 1 {
		t.Fatalf("RetryAttempts default = %d; want 1", cfg.RetryAttempts)
	}
	if cfg.RatePerSec != 0 {
		t.Fatalf("RatePerSec default = %v; want 0", cfg.RatePerSec)
	}
	if cfg.Logger != nil || cfg.Metrics != nil {
		t.Fatalf("Logger/Metrics defaults should be nil (resolved lazily)")
	}
}

func TestConfig_ResolvedDefaults(t *testing.T) {
	cfg := defaultConfig()
	if got, want := cfg.workerCount(), runtime.GOMAXPROCS(0); got != want {
		t.Fatalf("workerCount = %d; want GOMAXPROCS %d", got, want)
	}
	if got, want := cfg.queueCapacity(), cfg.workerCount()*4; got != want {
		t.Fatalf("queueCapacity = %d; want %d", got, want)
	}

	cfg.Workers = 3
	if got := cfg.queueCapacity(); got != 12 {
		t.Fatalf("queueCapacity with 3 workers = %d; want 12", got)
	}
	cfg.QueueCapacity = 5
	if got := cfg.queueCapacity(); got != 5 {
		t.Fatalf("explicit queueCapacity = %d; want 5", got)
	}

	if cfg.logger() == nil {
		t.Fatalf("logger() resolved to nil")
	}
	if cfg.metricsProvider() == nil {
		t.Fatalf("metricsProvider() resolved to nil")
	}
}

func TestNew_NilWorkFunc_ReturnsError(t *testing.T) {
	t.Parallel()

	p, err := New[int, int](context.Background(), nil)
	if err == nil {
		t.Fatalf("expected error from New with nil work function, got nil (p=%v)", p)
	}
	if p != nil {
		t.Fatalf("expected nil pool on error, got: %v", p)
	}
}

func TestNew_InvalidOptions_ReturnsError(t *testing.T) {
	t.Parallel()

	p, err := New(
		context.Background(),
		func(_ context.Context, n int) (int, error) { return n, nil },
		WithWorkers(0),
	)
	if err == nil {
		t.Fatalf("expected error from New with invalid options, got nil (p=%v)", p)
	}
	if p != nil {
		t.Fatalf("expected nil pool on error, got: %v", p)
	}
}

func TestNew_ValidOptions_Succeeds(t *testing.T) {
	t.Parallel()

	p, err := New(
		context.Background(),
		func(_ context.Context, n int) (int, error) { return n, nil },
		WithWorkers(2),
		WithQueueCapacity(8),
		WithResultsBuffer(16),
	)
	if err != nil {
		t.Fatalf("New with valid options failed: %v", err)
	}
	defer p.Stop()

	if got := p.State(); got != Running {
		t.Fatalf("fresh pool state = %v; want Running", got)
	}
}
