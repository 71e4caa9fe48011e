package processor

import (
	"math"
	"strings"
	"time"
)

// Retry describes how a failed invocation is retried.
type Retry struct {
	Type       string  `json:"type,omitempty" yaml:"type,omitempty"` // none | fixed | exponential
	MaxRetries int     `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	Delay      string  `json:"delay,omitempty" yaml:"delay,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	MaxDelay   string  `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`
}

// shouldRetry returns (retry?, delay)
func (s *Service) shouldRetry(cfg *Retry, attempts int) (bool, time.Duration) {
	// Use defaults when cfg nil
	if cfg == nil {
		if attempts >= s.config.MaxRetries {
			return false, 0
		}
		return true, s.config.RetryDelay
	}

	if strings.ToLower(cfg.Type) == "none" {
		return false, 0
	}

	max := cfg.MaxRetries
	if max == 0 {
		max = s.config.MaxRetries
	}
	if attempts >= max {
		return false, 0
	}

	// Parse base delay
	baseDelay := s.config.RetryDelay
	if cfg.Delay != "" {
		if d, err := time.ParseDuration(cfg.Delay); err == nil {
			baseDelay = d
		}
	}

	switch strings.ToLower(cfg.Type) {
	case "exponential":
		mult := cfg.Multiplier
		if mult <= 1 {
			mult = 2
		}
		delay := float64(baseDelay) * math.Pow(mult, float64(attempts))
		maxDelay := cfg.MaxDelay
		if maxDelay != "" {
			if md, err := time.ParseDuration(maxDelay); err == nil {
				if time.Duration(delay) > md {
					delay = float64(md)
				}
			}
		}
		return true, time.Duration(delay)
	default: // fixed
		return true, baseDelay
	}
}
