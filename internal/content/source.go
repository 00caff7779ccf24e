// Package content resolves lesson texts and audio from a remote store.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
)

var (
	ErrNotFound    = errors.New("content not found")
	ErrUnavailable = errors.New("content source unavailable")
)

// Source reads lesson objects addressed by key, e.g. "easy/3.txt".
type Source interface {
	Text(ctx context.Context, key string) (string, error)
	AudioURL(ctx context.Context, key string) (string, error)
}

// TextKey returns the object key of a lesson text.
func TextKey(level entities.Level, position int) string {
	return fmt.Sprintf("%s/%d.txt", level, position)
}

// AudioKey returns the object key of a lesson recording.
func AudioKey(level entities.Level, position int) string {
	return fmt.Sprintf("%s/%d.mp3", level, position)
}
