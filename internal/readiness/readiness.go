// Package readiness knows how to wait for a launched service to accept requests.
//
// A launched process is not a ready service; the probe bridges both by polling a
// health endpoint with a bounded number of attempts. Not being ready is an expected
// condition so it's reported as a boolean instead of an error.
package readiness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slok/deskshell/internal/log"
)

const (
	// DefaultMaxAttempts is the default number of health check attempts.
	DefaultMaxAttempts = 30
	// DefaultDelay is the default wait between failed attempts.
	DefaultDelay = 1 * time.Second
	// DefaultAttemptTimeout bounds a single health check request.
	DefaultAttemptTimeout = 5 * time.Second
)

// HTTPClient is the HTTP client used to reach the health endpoint.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock abstracts the waits between attempts so tests don't need to sleep.
type Clock interface {
	// After returns a channel that receives after d elapses.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// ProbeConfig is the configuration for the readiness probe.
type ProbeConfig struct {
	// HTTPClient is optional, defaults to a client with AttemptTimeout as timeout.
	HTTPClient HTTPClient
	// Clock is optional, defaults to the real clock.
	Clock Clock
	// AttemptTimeout is optional, defaults to DefaultAttemptTimeout.
	AttemptTimeout time.Duration
	Logger         log.Logger
}

func (c *ProbeConfig) defaults() error {
	if c.AttemptTimeout < 0 {
		return fmt.Errorf("attempt timeout can't be negative")
	}
	if c.AttemptTimeout == 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.AttemptTimeout}
	}
	if c.Clock == nil {
		c.Clock = realClock{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "readiness.Probe"})
	return nil
}

// Probe checks if a service is reachable. It holds no mutable state, so a single
// probe can be used by multiple callers at the same time, each one running its own
// independent retry loop.
type Probe struct {
	client         HTTPClient
	clock          Clock
	attemptTimeout time.Duration
	logger         log.Logger
}

// NewProbe returns a new readiness probe.
func NewProbe(cfg ProbeConfig) (*Probe, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Probe{
		client:         cfg.HTTPClient,
		clock:          cfg.Clock,
		attemptTimeout: cfg.AttemptTimeout,
		logger:         cfg.Logger,
	}, nil
}

// Await makes up to maxAttempts GET requests to url, waiting delay after every
// failed one. Any response the transport delivers counts as ready, regardless of
// its status code, only connection level failures are retried.
//
// Returns false when all the attempts fail or the context is cancelled.
func (p *Probe) Await(ctx context.Context, url string, maxAttempts int, delay time.Duration) bool {
	logger := p.logger.WithCtxValues(ctx).WithValues(log.Kv{"url": url})

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := p.check(ctx, url)
		if err == nil {
			logger.Debugf("Server ready after %d attempt(s)", attempt)
			return true
		}
		logger.Debugf("Attempt %d/%d: server not ready, retrying in %s: %v", attempt, maxAttempts, delay, err)

		select {
		case <-ctx.Done():
			logger.Debugf("Readiness wait cancelled: %v", ctx.Err())
			return false
		case <-p.clock.After(delay):
		}
	}

	logger.Warningf("Server not ready after %d attempts", maxAttempts)
	return false
}

func (p *Probe) check(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return nil
}
