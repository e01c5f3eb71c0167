package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Default circuit breaker settings.
const (
	DefaultMaxFailures     uint32        = 5
	DefaultBreakerTimeout  time.Duration = 30 * time.Second
	DefaultBreakerInterval time.Duration = 60 * time.Second
)

// ErrCircuitOpen is returned without reaching the model while the breaker is open.
var ErrCircuitOpen = errors.New("models: circuit open")

// GuardConfig configures a Guard. Zero values select the defaults; a zero
// RequestsPerSecond disables rate limiting.
type GuardConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`

	// Timeout is how long the circuit stays open before a trial call is allowed.
	Timeout time.Duration `yaml:"timeout"`

	// Interval clears failure counts periodically while closed.
	Interval time.Duration `yaml:"interval"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Guard protects a Model with a circuit breaker and an optional rate limit.
//
// Repeated failures open the circuit; calls then fail fast with ErrCircuitOpen until the
// breaker timeout elapses. Context cancellation does not count as a failure.
type Guard struct {
	name    string
	inner   orchestra.Model
	breaker *gobreaker.CircuitBreaker[*orchestra.Message]
	limiter *rate.Limiter
}

// NewGuard wraps inner. name identifies the breaker in logs and errors. A nil logger
// uses slog.Default.
func NewGuard(name string, inner orchestra.Model, cfg GuardConfig, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultBreakerInterval
	}

	g := &Guard{name: name, inner: inner}
	g.breaker = gobreaker.NewCircuitBreaker[*orchestra.Message](gobreaker.Settings{
		Name:        "model:" + name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return g
}

// Invoke implements orchestra.Model.
func (g *Guard) Invoke(
	ctx context.Context,
	messages []orchestra.Message,
	opts ...orchestra.InvokeOption,
) (*orchestra.Message, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("models: %s: rate limit: %w", g.name, err)
		}
	}

	resp, err := g.breaker.Execute(func() (*orchestra.Message, error) {
		return g.inner.Invoke(ctx, messages, opts...)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %w", ErrCircuitOpen, g.name, err)
		}
		return nil, err
	}
	return resp, nil
}

// State returns the breaker state for monitoring.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the breaker's current failure and success counts.
func (g *Guard) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}

// GuardSet wraps every model of set in its own Guard.
func GuardSet(set orchestra.ModelSet, cfg GuardConfig, logger *slog.Logger) orchestra.ModelSet {
	out := make(orchestra.ModelSet, len(set))
	for ref, m := range set {
		out[ref] = NewGuard(ref, m, cfg, logger)
	}
	return out
}

var _ orchestra.Model = (*Guard)(nil)
