package atom

import (
	"fmt"
	"time"
)

// Config is a serialisable representation of the platform configuration. It
// can be populated from JSON, YAML, environment variables, etc. The
// zero-value is useful, all nested fields inherit their package defaults.
type Config struct {
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	// CatalogBaseURL roots catalog lookups; ReportBaseURL roots persisted run
	// reports and drift snapshots.
	CatalogBaseURL string `json:"catalogBaseURL,omitempty" yaml:"catalogBaseURL,omitempty"`
	ReportBaseURL  string `json:"reportBaseURL,omitempty" yaml:"reportBaseURL,omitempty"`
}

type ProcessorConfig struct {
	WorkerCount int           `json:"workers" yaml:"workers"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay  time.Duration `json:"retryDelay" yaml:"retryDelay"`
}

type SchedulerConfig struct {
	PollingInterval time.Duration `json:"pollingInterval" yaml:"pollingInterval"`
}

type CacheConfig struct {
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Processor: ProcessorConfig{WorkerCount: 5, MaxRetries: 1, RetryDelay: 3 * time.Second},
		Scheduler: SchedulerConfig{PollingInterval: 20 * time.Millisecond},
		Cache:     CacheConfig{TTL: time.Minute, SweepInterval: time.Minute},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Processor.WorkerCount <= 0 {
		return fmt.Errorf("processor.workers must be > 0")
	}
	if c.Scheduler.PollingInterval <= 0 {
		return fmt.Errorf("scheduler.pollingInterval must be > 0")
	}
	return nil
}
