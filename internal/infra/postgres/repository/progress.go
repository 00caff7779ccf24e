package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/infra/postgres"
	"github.com/aliskhannn/talaffuz-bot/internal/repository"
)

// ProgressRepository provides access to user progress data in the database.
type ProgressRepository struct {
	db postgres.DBTX
}

// NewProgressRepository creates a new ProgressRepository with the provided database handle.
func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get retrieves the progress record of a user.
func (r *ProgressRepository) Get(ctx context.Context, userID int64) (*entities.UserProgress, error) {
	query := `
		SELECT user_id, chat_id, level, position, awaiting, expected_text, correct_count
		FROM user_progress
		WHERE user_id = $1
	`

	var (
		p     entities.UserProgress
		level *string
	)

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.ChatID,
		&level,
		&p.Position,
		&p.Awaiting,
		&p.ExpectedText,
		&p.CorrectCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	if level != nil {
		l := entities.ParseLevel(*level)
		p.Level = &l
	}

	return &p, nil
}

// Upsert creates or partially updates the progress record of a user.
// Nil fields of upd keep the stored value, or take the column default on insert.
// chat_id is always refreshed.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, chatID int64, upd entities.ProgressUpdate) error {
	query := `
		INSERT INTO user_progress (
			user_id, chat_id, level, position, awaiting, correct_count, expected_text
		) VALUES (
			$1, $2, $3,
			COALESCE($4::int, 1),
			COALESCE($5::boolean, FALSE),
			COALESCE($6::int, 0),
			COALESCE($7::text, '')
		)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			level = COALESCE($3::text, user_progress.level),
			position = COALESCE($4::int, user_progress.position),
			awaiting = COALESCE($5::boolean, user_progress.awaiting),
			correct_count = COALESCE($6::int, user_progress.correct_count),
			expected_text = COALESCE($7::text, user_progress.expected_text),
			updated_at = NOW()
	`

	var level *string
	if upd.Level != nil {
		s := upd.Level.String()
		level = &s
	}

	_, err := r.db.Exec(
		ctx,
		query,
		userID,
		chatID,
		level,
		upd.Position,
		upd.Awaiting,
		upd.CorrectCount,
		upd.ExpectedText,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	return nil
}
