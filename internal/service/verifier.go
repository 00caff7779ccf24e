package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/repository"
)

var ErrNothingPending = errors.New("no answer is pending")

// Verdict is the graded result of one answer.
type Verdict struct {
	Accepted     bool
	Score        float64
	Expected     string
	Candidate    string
	CorrectCount int // after this answer
}

// VerifierService grades answers against the issued lesson.
// It does not care whether the candidate came from speech or from typed text.
type VerifierService struct {
	store     ProgressStore
	content   ContentGateway
	validator *AnswerValidator
	recorder  Recorder
	log       *zap.Logger
}

// NewVerifierService creates a new VerifierService.
func NewVerifierService(
	store ProgressStore,
	content ContentGateway,
	validator *AnswerValidator,
	recorder Recorder,
	log *zap.Logger,
) *VerifierService {
	if validator == nil {
		validator = NewAnswerValidator(DefaultPassThreshold)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &VerifierService{
		store:     store,
		content:   content,
		validator: validator,
		recorder:  recorder,
		log:       log,
	}
}

// Pending reports whether userID has an issued lesson waiting for an answer.
func (v *VerifierService) Pending(ctx context.Context, userID int64) (bool, error) {
	p, err := v.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load progress: %w", err)
	}
	return p.Awaiting, nil
}

// Verify grades candidate. It returns ErrNothingPending without touching the
// stored state when no lesson is awaiting an answer.
func (v *VerifierService) Verify(ctx context.Context, userID int64, candidate string) (*Verdict, error) {
	p, err := v.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return nil, ErrNothingPending
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !p.Awaiting {
		return nil, ErrNothingPending
	}

	expected := p.ExpectedText
	if expected == "" && p.Level != nil {
		expected = v.content.FetchText(ctx, *p.Level, p.Position)
		if expected == "" {
			expected = entities.PlaceholderText(*p.Level, p.Position)
		}
	}

	score, accepted := v.validator.Validate(expected, candidate)
	verdict := &Verdict{
		Accepted:     accepted,
		Score:        score,
		Expected:     expected,
		Candidate:    candidate,
		CorrectCount: p.CorrectCount,
	}

	if accepted {
		verdict.CorrectCount = p.CorrectCount + 1
		err := v.store.Upsert(ctx, userID, p.ChatID, entities.ProgressUpdate{
			Awaiting:     entities.Ptr(false),
			CorrectCount: entities.Ptr(verdict.CorrectCount),
			ExpectedText: entities.Ptr(expected),
		})
		if err != nil {
			return nil, fmt.Errorf("record verdict: %w", err)
		}
	}

	v.recorder.AnswerGraded(accepted)
	v.log.Debug("answer graded",
		zap.Int64("user_id", userID),
		zap.Float64("score", score),
		zap.Bool("accepted", accepted),
	)

	return verdict, nil
}
