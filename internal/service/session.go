package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/repository"
)

var (
	ErrNoProgress         = errors.New("no progress found")
	ErrNoLevel            = errors.New("no level selected")
	ErrUnsupportedAction  = errors.New("action is not handled by the session")
	ErrInvalidLessonCount = errors.New("lessons per level must be positive")
)

// OutcomeKind tells the transport what to render after a transition.
type OutcomeKind int

const (
	OutcomeLessonIssued OutcomeKind = iota + 1
	OutcomeLevelCompleted
	OutcomeRetryPrompted
)

// Outcome is the result of a session transition.
type Outcome struct {
	Kind       OutcomeKind
	Lesson     *entities.Lesson       // set for OutcomeLessonIssued and OutcomeRetryPrompted
	Progress   *entities.UserProgress // state after the transition
	FinalScore int                    // accepted answers of the finished run, for OutcomeLevelCompleted
	Total      int                    // lessons per level
}

// SessionService drives the lesson progression of every learner.
type SessionService struct {
	store           ProgressStore
	content         ContentGateway
	lessonsPerLevel int
	recorder        Recorder
	log             *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	store ProgressStore,
	content ContentGateway,
	lessonsPerLevel int,
	recorder Recorder,
	log *zap.Logger,
) (*SessionService, error) {
	if lessonsPerLevel < 1 {
		return nil, ErrInvalidLessonCount
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SessionService{
		store:           store,
		content:         content,
		lessonsPerLevel: lessonsPerLevel,
		recorder:        recorder,
		log:             log,
	}, nil
}

// LessonsPerLevel returns the number of lessons in every level.
func (s *SessionService) LessonsPerLevel() int {
	return s.lessonsPerLevel
}

// Start creates the learner record on first contact, or rewinds the current
// level run in place. The chosen level is kept.
func (s *SessionService) Start(ctx context.Context, userID, chatID int64) (*entities.UserProgress, error) {
	err := s.store.Upsert(ctx, userID, chatID, entities.ProgressUpdate{
		Position:     entities.Ptr(1),
		Awaiting:     entities.Ptr(false),
		CorrectCount: entities.Ptr(0),
		ExpectedText: entities.Ptr(""),
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	return s.store.Get(ctx, userID)
}

// Progress returns the stored state of a learner.
func (s *SessionService) Progress(ctx context.Context, userID int64) (*entities.UserProgress, error) {
	return s.load(ctx, userID)
}

// Apply performs the transition for a decoded menu action.
func (s *SessionService) Apply(ctx context.Context, userID, chatID int64, action entities.Action) (*Outcome, error) {
	switch a := action.(type) {
	case entities.SelectLevel:
		return s.selectLevel(ctx, userID, chatID, a.Level)
	case entities.Retry:
		return s.retry(ctx, userID)
	case entities.Skip, entities.Next:
		return s.advance(ctx, userID)
	case entities.OpenMenu:
		return nil, ErrUnsupportedAction
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedAction, action)
	}
}

func (s *SessionService) selectLevel(ctx context.Context, userID, chatID int64, level entities.Level) (*Outcome, error) {
	if !level.Valid() {
		level = entities.LevelEasy
	}

	err := s.store.Upsert(ctx, userID, chatID, entities.ProgressUpdate{
		Level:        entities.Ptr(level),
		Position:     entities.Ptr(1),
		Awaiting:     entities.Ptr(false),
		CorrectCount: entities.Ptr(0),
		ExpectedText: entities.Ptr(""),
	})
	if err != nil {
		return nil, fmt.Errorf("select level: %w", err)
	}

	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.log.Debug("level selected", zap.Int64("user_id", userID), zap.String("level", level.String()))
	return s.issue(ctx, p)
}

func (s *SessionService) retry(ctx context.Context, userID int64) (*Outcome, error) {
	p, err := s.loadWithLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Nothing was issued yet, so there is nothing to retry.
	if p.ExpectedText == "" {
		return s.issue(ctx, p)
	}

	if !p.Awaiting {
		if err := s.store.Upsert(ctx, userID, p.ChatID, entities.ProgressUpdate{Awaiting: entities.Ptr(true)}); err != nil {
			return nil, fmt.Errorf("retry lesson: %w", err)
		}
		p.Awaiting = true
	}

	return &Outcome{
		Kind:     OutcomeRetryPrompted,
		Lesson:   &entities.Lesson{Level: *p.Level, Position: p.Position, Text: p.ExpectedText},
		Progress: p,
		Total:    s.lessonsPerLevel,
	}, nil
}

// advance serves both Skip and Next.
func (s *SessionService) advance(ctx context.Context, userID int64) (*Outcome, error) {
	p, err := s.loadWithLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := p.Position + 1
	if next > s.lessonsPerLevel {
		return s.complete(ctx, p)
	}

	err = s.store.Upsert(ctx, userID, p.ChatID, entities.ProgressUpdate{
		Position:     entities.Ptr(next),
		Awaiting:     entities.Ptr(false),
		ExpectedText: entities.Ptr(""),
	})
	if err != nil {
		return nil, fmt.Errorf("advance lesson: %w", err)
	}

	p.Position = next
	p.Awaiting = false
	p.ExpectedText = ""

	return s.issue(ctx, p)
}

// issue presents the lesson at the current position, or completes the level
// when the position is past its end.
func (s *SessionService) issue(ctx context.Context, p *entities.UserProgress) (*Outcome, error) {
	if p.Position > s.lessonsPerLevel {
		return s.complete(ctx, p)
	}

	level := *p.Level
	lesson := &entities.Lesson{Level: level, Position: p.Position}

	lesson.Text = s.content.FetchText(ctx, level, p.Position)
	if lesson.Text == "" {
		lesson.Text = entities.PlaceholderText(level, p.Position)
		lesson.Placeholder = true
	}

	err := s.store.Upsert(ctx, p.UserID, p.ChatID, entities.ProgressUpdate{
		Awaiting:     entities.Ptr(true),
		ExpectedText: entities.Ptr(lesson.Text),
	})
	if err != nil {
		return nil, fmt.Errorf("issue lesson: %w", err)
	}

	p.Awaiting = true
	p.ExpectedText = lesson.Text

	lesson.AudioURL = s.content.AudioURL(ctx, level, p.Position)
	s.recorder.LessonIssued(level, lesson.Placeholder)

	return &Outcome{
		Kind:     OutcomeLessonIssued,
		Lesson:   lesson,
		Progress: p,
		Total:    s.lessonsPerLevel,
	}, nil
}

func (s *SessionService) complete(ctx context.Context, p *entities.UserProgress) (*Outcome, error) {
	final := p.CorrectCount

	err := s.store.Upsert(ctx, p.UserID, p.ChatID, entities.ProgressUpdate{
		Position:     entities.Ptr(1),
		Awaiting:     entities.Ptr(false),
		CorrectCount: entities.Ptr(0),
		ExpectedText: entities.Ptr(""),
	})
	if err != nil {
		return nil, fmt.Errorf("complete level: %w", err)
	}

	p.Position = 1
	p.Awaiting = false
	p.CorrectCount = 0
	p.ExpectedText = ""

	s.recorder.LevelCompleted(*p.Level)
	s.log.Info("level completed",
		zap.Int64("user_id", p.UserID),
		zap.String("level", p.Level.String()),
		zap.Int("score", final),
	)

	return &Outcome{
		Kind:       OutcomeLevelCompleted,
		Progress:   p,
		FinalScore: final,
		Total:      s.lessonsPerLevel,
	}, nil
}

func (s *SessionService) load(ctx context.Context, userID int64) (*entities.UserProgress, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return nil, ErrNoProgress
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return p, nil
}

func (s *SessionService) loadWithLevel(ctx context.Context, userID int64) (*entities.UserProgress, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Level == nil {
		return nil, ErrNoLevel
	}
	return p, nil
}
