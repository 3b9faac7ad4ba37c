package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Strategy makes the safe/unsafe decision for one URL. Implementations must
// not fail: problems are reported as a Result with StatusError.
type Strategy interface {
	Name() string
	Check(ctx context.Context, rawURL string) *Result
}

// Checker runs exactly one Strategy per check. The strategy is chosen once
// by whoever builds the Checker.
type Checker struct {
	strategy Strategy
	logger   *slog.Logger
}

// NewChecker creates a Checker around strategy.
func NewChecker(strategy Strategy, logger *slog.Logger) *Checker {
	return &Checker{strategy: strategy, logger: logger}
}

// Strategy returns the name of the configured strategy.
func (c *Checker) Strategy() string {
	return c.strategy.Name()
}

// Check runs the configured strategy on rawURL.
func (c *Checker) Check(ctx context.Context, rawURL string) (res *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("check strategy panicked", "strategy", c.strategy.Name(), "panic", r)
			res = ErrorResult(c.strategy.Name(), fmt.Sprintf("internal error: %v", r))
		}
	}()

	res = c.strategy.Check(ctx, rawURL)
	if res == nil {
		res = ErrorResult(c.strategy.Name(), "no result")
	}
	if res.Strategy == "" {
		res.Strategy = c.strategy.Name()
	}
	if res.ResponseTimeMs == 0 {
		res.ResponseTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	}

	level := slog.LevelDebug
	if res.Status == StatusError {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "url checked",
		"strategy", res.Strategy,
		"status", res.Status,
		"confidence", res.Confidence,
		"reason", res.Reason,
	)
	return res
}

// New returns the strategy registered under name.
func New(ctx context.Context, name string, opts Options) (Strategy, error) {
	switch name {
	case "", "local":
		return Local{}, nil
	case "remote":
		if opts.RemoteURL == "" {
			return nil, fmt.Errorf("remote strategy requires a check service URL")
		}
		return NewRemote(opts.RemoteURL, opts.RemoteTimeout), nil
	case "claude":
		return NewClaude(ctx, opts.AnthropicAPIKey, opts.ClaudeModel), nil
	default:
		return nil, fmt.Errorf("unknown check strategy %q", name)
	}
}

// Options carries the settings New needs for non-local strategies.
type Options struct {
	RemoteURL       string
	RemoteTimeout   time.Duration
	AnthropicAPIKey string
	ClaudeModel     string
}
