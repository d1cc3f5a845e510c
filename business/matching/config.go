package matching

import "time"

type Config struct {
	// Alpha blends similarity against the popularity boost:
	// final = Alpha*similarity + (1-Alpha)*boost.
	Alpha float64

	// SaturationK dampens the rating-count term of the boost:
	// log1p(count) / log1p(count+SaturationK).
	SaturationK float64

	// Worker pool size for parallel per-user recomputation.
	Workers int

	// Retry ceiling and backoff base for transient recompute failures.
	MaxAttempts  int
	RetryBackoff time.Duration

	// How often the coordinator polls for committed triggers.
	PollInterval time.Duration
}

const (
	defaultAlpha        = 0.8
	defaultSaturationK  = 50.0
	defaultWorkers      = 4
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 5 * time.Second
	defaultPollInterval = 2 * time.Second

	// Boost assigned to perfumes with zero ratings: midpoint of the boost
	// range, so cold-start items are neither promoted nor suppressed.
	neutralBoost = 0.5
)

func DefaultConfig() Config {
	return Config{
		Alpha:        defaultAlpha,
		SaturationK:  defaultSaturationK,
		Workers:      defaultWorkers,
		MaxAttempts:  defaultMaxAttempts,
		RetryBackoff: defaultRetryBackoff,
		PollInterval: defaultPollInterval,
	}
}

// withDefaults fills unset fields so a partially populated Config from the
// env layer still behaves sanely.
func (c Config) withDefaults() Config {
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = defaultAlpha
	}
	if c.SaturationK <= 0 {
		c.SaturationK = defaultSaturationK
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	return c
}
