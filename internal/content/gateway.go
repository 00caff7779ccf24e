package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
)

// Fetch results reported to FetchRecorder.
const (
	ResultHit      = "hit"
	ResultCached   = "cached"
	ResultMissing  = "missing"
	ResultError    = "error"
	ResultDisabled = "disabled"
)

// FetchRecorder counts fetch results.
type FetchRecorder interface {
	ContentFetched(result string)
}

// Gateway is the best-effort entry point to lesson content. It never returns
// errors: every failure is logged and turned into an empty string.
type Gateway struct {
	source   Source // nil when no content source is configured
	cache    TextCache
	timeout  time.Duration
	recorder FetchRecorder
	log      *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCache enables text caching.
func WithCache(c TextCache) Option {
	return func(g *Gateway) { g.cache = c }
}

// WithRecorder reports fetch results.
func WithRecorder(r FetchRecorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// NewGateway creates a Gateway over source. A nil source yields a gateway that
// always returns empty content.
func NewGateway(source Source, timeout time.Duration, log *zap.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}

	g := &Gateway{
		source:  source,
		timeout: timeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// FetchText returns the trimmed lesson text, or "" when it cannot be read.
func (g *Gateway) FetchText(ctx context.Context, level entities.Level, position int) string {
	if g.source == nil {
		g.record(ResultDisabled)
		return ""
	}

	key := TextKey(level, position)

	if g.cache != nil {
		text, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			g.log.Warn("content cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok && text != "" {
			g.record(ResultCached)
			return text
		}
	}

	fetchCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	text, err := g.source.Text(fetchCtx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			g.record(ResultMissing)
			g.log.Info("lesson text missing", zap.String("key", key))
		} else {
			g.record(ResultError)
			g.log.Warn("lesson text fetch failed", zap.String("key", key), zap.Error(err))
		}
		return ""
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.record(ResultMissing)
		return ""
	}
	g.record(ResultHit)

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, text); err != nil {
			g.log.Warn("content cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return text
}

// AudioURL returns a link to the lesson recording, or "" when there is none.
func (g *Gateway) AudioURL(ctx context.Context, level entities.Level, position int) string {
	if g.source == nil {
		return ""
	}

	key := AudioKey(level, position)

	urlCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	u, err := g.source.AudioURL(urlCtx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.log.Warn("lesson audio lookup failed", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return u
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) record(result string) {
	if g.recorder != nil {
		g.recorder.ContentFetched(result)
	}
}
