package tagger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Retry wraps a Tagger with a bounded-retry and per-attempt-timeout policy.
// The tagging call is the one expensive external dependency of the engine;
// at corpus scale a hung tagger process must not stall the whole run.
func Retry(inner Tagger, attempts int, timeout time.Duration, log *zap.Logger) Tagger {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &retryTagger{inner: inner, attempts: attempts, timeout: timeout, log: log}
}

type retryTagger struct {
	inner    Tagger
	attempts int
	timeout  time.Duration
	log      *zap.Logger
}

func (t *retryTagger) Tag(ctx context.Context, words []string) ([]TaggedToken, error) {
	var lastErr error
	for attempt := 1; attempt <= t.attempts; attempt++ {
		tagged, err := t.tagOnce(ctx, words)
		if err == nil {
			return tagged, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < t.attempts {
			t.log.Warn("tagging attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("attempts", t.attempts),
				zap.Error(err))
		}
	}
	if _, ok := lastErr.(*TaggingError); ok {
		return nil, lastErr
	}
	return nil, &TaggingError{Op: "retry exhausted", Err: lastErr}
}

func (t *retryTagger) tagOnce(ctx context.Context, words []string) ([]TaggedToken, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.inner.Tag(ctx, words)
}
