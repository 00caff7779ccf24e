package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxTextSize bounds the body read for a single lesson text.
const maxTextSize = 1 << 20

// HTTPSource serves lessons from a static file host: {base}/{level}/{index}.txt|.mp3.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTPSource. A zero timeout keeps the client unbounded
// and relies on the caller's context.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Text(ctx context.Context, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(key), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextSize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return strings.TrimSpace(string(body)), nil
}

// AudioURL returns the public address of the recording. Telegram fetches it itself.
func (s *HTTPSource) AudioURL(_ context.Context, key string) (string, error) {
	return s.url(key), nil
}

func (s *HTTPSource) url(key string) string {
	return s.baseURL + "/" + key
}
