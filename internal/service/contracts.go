package service

import (
	"context"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
)

// ProgressStore persists one UserProgress per user.
// Get returns repository.ErrProgressNotFound when the user has no record.
type ProgressStore interface {
	Get(ctx context.Context, userID int64) (*entities.UserProgress, error)
	Upsert(ctx context.Context, userID, chatID int64, upd entities.ProgressUpdate) error
}

// ContentGateway resolves lesson content. Both methods return an empty string
// on any failure instead of an error.
type ContentGateway interface {
	FetchText(ctx context.Context, level entities.Level, position int) string
	AudioURL(ctx context.Context, level entities.Level, position int) string
}

// Recorder receives lesson and grading events for metrics.
type Recorder interface {
	LessonIssued(level entities.Level, placeholder bool)
	LevelCompleted(level entities.Level)
	AnswerGraded(accepted bool)
}

type nopRecorder struct{}

func (nopRecorder) LessonIssued(entities.Level, bool) {}
func (nopRecorder) LevelCompleted(entities.Level)     {}
func (nopRecorder) AnswerGraded(bool)                 {}
