package resilience

import "time"

// Config controls retries and the per-operation circuit breaker. Zero fields
// take the DefaultConfig value.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// ChatPolicy sends each chat completion exactly once. The breaker only sheds
// load while the provider keeps failing.
func ChatPolicy(breakerEnabled bool) Config {
	cfg := DefaultConfig().WithoutRetries()
	cfg.BreakerEnabled = breakerEnabled
	return cfg
}

// VisionPolicy retries transient vision model failures with a longer backoff,
// since local model servers often answer 503 while loading weights.
func VisionPolicy() Config {
	cfg := DefaultConfig()
	cfg.RetryInitialBackoff = 250 * time.Millisecond
	cfg.RetryMaxBackoff = time.Second
	return cfg
}

// PublishPolicy is used for audit publishes, which are cheap and run off the request path.
func PublishPolicy() Config {
	cfg := DefaultConfig()
	cfg.RetryMaxAttempts = 4
	cfg.BreakerMinRequests = 20
	return cfg
}

// WithoutRetries keeps the breaker settings but performs a single attempt per call.
func (c Config) WithoutRetries() Config {
	c.RetryMaxAttempts = 1
	return c
}

func (c Config) normalize() Config {
	def := DefaultConfig()

	c.RetryMaxAttempts = positiveOr(c.RetryMaxAttempts, def.RetryMaxAttempts)
	c.RetryInitialBackoff = positiveOr(c.RetryInitialBackoff, def.RetryInitialBackoff)
	c.RetryMaxBackoff = max(positiveOr(c.RetryMaxBackoff, def.RetryMaxBackoff), c.RetryInitialBackoff)
	if c.RetryMultiplier < 1 {
		c.RetryMultiplier = def.RetryMultiplier
	}

	c.BreakerMinRequests = positiveOr(c.BreakerMinRequests, def.BreakerMinRequests)
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = def.BreakerFailureRatio
	}
	c.BreakerOpenTimeout = positiveOr(c.BreakerOpenTimeout, def.BreakerOpenTimeout)
	c.BreakerHalfOpenMaxCalls = positiveOr(c.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)
	return c
}

func positiveOr[T int | uint32 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}
