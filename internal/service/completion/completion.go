// Package completion forwards prompts to a language-model provider and
// reduces every provider failure to serviceerrs.UpstreamError.
package completion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
	"github.com/talx-hub/gopher-assist/internal/utils/semaphore"
)

// Provider returns the raw text of the first generated completion.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Observer interface {
	ObserveCompletion(result string, elapsed time.Duration)
}

const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultTimeout  = "timeout"
	ResultRejected = "rate_limited"
)

type Proxy struct {
	provider Provider
	sema     *semaphore.Semaphore
	observer Observer
	timeout  time.Duration
}

func NewProxy(provider Provider, timeout time.Duration, maxInFlight uint64,
	observer Observer,
) *Proxy {
	if timeout <= 0 {
		timeout = model.DefaultCompletionTimeout
	}
	return &Proxy{
		provider: provider,
		sema:     semaphore.New(maxInFlight),
		observer: observer,
		timeout:  timeout,
	}
}

// Complete makes exactly one provider call, bounded by the proxy timeout.
func (p *Proxy) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	tCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.sema.Acquire(tCtx); err != nil {
		return "", p.fail(ctx, start, err)
	}
	defer p.sema.Release()

	text, err := p.provider.Complete(tCtx, prompt)
	if err != nil {
		return "", p.fail(ctx, start, err)
	}

	p.observe(ResultOK, start)
	return strings.TrimSpace(text), nil
}

func (p *Proxy) fail(ctx context.Context, start time.Time, err error) error {
	result := ResultError
	var tooMany *serviceerrs.TooManyRequestsError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result = ResultTimeout
	case errors.As(err, &tooMany):
		result = ResultRejected
	}
	p.observe(result, start)

	attrs := []slog.Attr{
		slog.String("result", result),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any(model.KeyLoggerError, err),
	}
	if tooMany != nil {
		attrs = append(attrs, slog.Duration("retry_after", tooMany.RetryAfter))
	}
	logger.FromContext(ctx).LogAttrs(ctx,
		slog.LevelError,
		"completion provider call failed",
		attrs...,
	)
	return &serviceerrs.UpstreamError{Err: err}
}

func (p *Proxy) observe(result string, start time.Time) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveCompletion(result, time.Since(start))
}
