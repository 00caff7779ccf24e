package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/repository"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *int:
			*p = r.values[i].(int)
		case *bool:
			*p = r.values[i].(bool)
		case *string:
			*p = r.values[i].(string)
		case **string:
			if v, ok := r.values[i].(string); ok {
				*p = &v
			}
		}
	}
	return nil
}

type fakeDB struct {
	row      fakeRow
	execSQL  string
	execArgs []any
	execErr  error
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execSQL = sql
	db.execArgs = args
	return pgconn.CommandTag{}, db.execErr
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (db *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return db.row
}

func TestGetNotFound(t *testing.T) {
	r := NewProgressRepository(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})

	if _, err := r.Get(context.Background(), 1); !errors.Is(err, repository.ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}
}

func TestGetScansProgress(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{int64(1), int64(100), "medium", 4, true, "да", 2}}}
	r := NewProgressRepository(db)

	p, err := r.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Level == nil || *p.Level != entities.LevelMedium {
		t.Fatalf("level = %v", p.Level)
	}
	if p.ChatID != 100 || p.Position != 4 || !p.Awaiting || p.ExpectedText != "да" || p.CorrectCount != 2 {
		t.Fatalf("unexpected progress: %+v", p)
	}
}

func TestGetWithoutLevel(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{int64(1), int64(100), nil, 1, false, "", 0}}}
	r := NewProgressRepository(db)

	p, err := r.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Level != nil || p.State() != entities.StateNoLevel {
		t.Fatalf("unexpected progress: %+v", p)
	}
}

func TestUpsertPassesPartialUpdate(t *testing.T) {
	db := &fakeDB{}
	r := NewProgressRepository(db)

	err := r.Upsert(context.Background(), 1, 100, entities.ProgressUpdate{
		Level:    entities.Ptr(entities.LevelHard),
		Awaiting: entities.Ptr(true),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if !strings.Contains(db.execSQL, "ON CONFLICT (user_id) DO UPDATE") {
		t.Fatalf("unexpected query: %s", db.execSQL)
	}
	if len(db.execArgs) != 7 {
		t.Fatalf("args = %d, want 7", len(db.execArgs))
	}

	level, ok := db.execArgs[2].(*string)
	if !ok || level == nil || *level != "hard" {
		t.Fatalf("level arg = %#v", db.execArgs[2])
	}
	if pos, ok := db.execArgs[3].(*int); !ok || pos != nil {
		t.Fatalf("position arg must be a nil *int, got %#v", db.execArgs[3])
	}
	if aw, ok := db.execArgs[4].(*bool); !ok || aw == nil || !*aw {
		t.Fatalf("awaiting arg = %#v", db.execArgs[4])
	}
}

func TestUpsertWrapsError(t *testing.T) {
	boom := errors.New("boom")
	r := NewProgressRepository(&fakeDB{execErr: boom})

	if err := r.Upsert(context.Background(), 1, 100, entities.ProgressUpdate{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
