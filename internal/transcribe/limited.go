package transcribe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DurationRecorder observes transcription latency.
type DurationRecorder interface {
	TranscriptionObserved(provider, result string, d time.Duration)
}

// Limited bounds a Transcriber by a shared request rate and a per-call timeout.
type Limited struct {
	next     Transcriber
	limiter  *rate.Limiter
	timeout  time.Duration
	recorder DurationRecorder
}

// NewLimited wraps next. perMinute <= 0 disables throttling.
func NewLimited(next Transcriber, perMinute int, timeout time.Duration, recorder DurationRecorder) *Limited {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute)
	}

	return &Limited{
		next:     next,
		limiter:  limiter,
		timeout:  timeout,
		recorder: recorder,
	}
}

func (l *Limited) Name() string { return l.next.Name() }

func (l *Limited) Transcribe(ctx context.Context, path string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("transcription throttled: %w", err)
	}

	start := time.Now()
	text, err := l.next.Transcribe(ctx, path)
	l.observe(err, time.Since(start))

	return text, err
}

func (l *Limited) observe(err error, d time.Duration) {
	if l.recorder == nil {
		return
	}

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotConfigured):
		result = "disabled"
	case errors.Is(err, ErrEmptyResult):
		result = "empty"
	case errors.Is(err, context.DeadlineExceeded):
		result = "timeout"
	default:
		result = "error"
	}
	l.recorder.TranscriptionObserved(l.next.Name(), result, d)
}
