package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/storage"
)

func seedAwaiting(t *testing.T, store *storage.ProgressStorage, userID int64, expected string) {
	t.Helper()

	err := store.Upsert(context.Background(), userID, userID*100, entities.ProgressUpdate{
		Level:        entities.Ptr(entities.LevelEasy),
		Position:     entities.Ptr(3),
		Awaiting:     entities.Ptr(true),
		ExpectedText: entities.Ptr(expected),
		CorrectCount: entities.Ptr(2),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestVerifyAccepts(t *testing.T) {
	ctx := context.Background()
	store := storage.NewProgressStorage()
	rec := &countingRecorder{}
	v := NewVerifierService(store, &fakeContent{}, NewAnswerValidator(0.75), rec, nil)

	seedAwaiting(t, store, 1, "Как дела?")

	verdict, err := v.Verify(ctx, 1, "как дела")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verdict.Accepted || verdict.Score != 1 || verdict.CorrectCount != 3 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}

	p, _ := store.Get(ctx, 1)
	if p.Awaiting {
		t.Fatal("accepted answer must clear awaiting")
	}
	if p.CorrectCount != 3 || p.Position != 3 {
		t.Fatalf("unexpected progress: %+v", p)
	}
	if p.State() != entities.StateAnswered {
		t.Fatalf("state = %s, want answered", p.State())
	}
	if rec.accepted != 1 {
		t.Fatalf("recorder = %+v", rec)
	}
}

func TestVerifyAcceptsAtThreshold(t *testing.T) {
	store := storage.NewProgressStorage()
	v := NewVerifierService(store, &fakeContent{}, NewAnswerValidator(0.75), nil, nil)
	seedAwaiting(t, store, 1, "abcd")

	verdict, err := v.Verify(context.Background(), 1, "abce")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verdict.Accepted {
		t.Fatalf("score %v at the threshold must be accepted", verdict.Score)
	}
}

func TestVerifyRejects(t *testing.T) {
	ctx := context.Background()
	store := storage.NewProgressStorage()
	rec := &countingRecorder{}
	v := NewVerifierService(store, &fakeContent{}, nil, rec, nil)

	seedAwaiting(t, store, 1, "Доброе утро")

	verdict, err := v.Verify(ctx, 1, "спокойной ночи")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verdict.Accepted {
		t.Fatalf("unexpected accept: %+v", verdict)
	}

	p, _ := store.Get(ctx, 1)
	if !p.Awaiting || p.CorrectCount != 2 || p.Position != 3 || p.ExpectedText != "Доброе утро" {
		t.Fatalf("rejected answer must not change progress: %+v", p)
	}
	if rec.rejected != 1 {
		t.Fatalf("recorder = %+v", rec)
	}
}

func TestVerifyNothingPending(t *testing.T) {
	ctx := context.Background()
	store := storage.NewProgressStorage()
	v := NewVerifierService(store, &fakeContent{}, nil, nil, nil)

	if _, err := v.Verify(ctx, 1, "что-то"); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("no record: expected ErrNothingPending, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("verify must not create a record")
	}

	_ = store.Upsert(ctx, 1, 100, entities.ProgressUpdate{
		Level:        entities.Ptr(entities.LevelEasy),
		ExpectedText: entities.Ptr("да"),
		CorrectCount: entities.Ptr(1),
	})
	before, _ := store.Get(ctx, 1)

	if _, err := v.Verify(ctx, 1, "да"); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("not awaiting: expected ErrNothingPending, got %v", err)
	}

	after, _ := store.Get(ctx, 1)
	if after.CorrectCount != before.CorrectCount || after.Awaiting != before.Awaiting {
		t.Fatalf("verify mutated state: before %+v, after %+v", before, after)
	}
}

func TestVerifyRefetchesMissingExpectedText(t *testing.T) {
	ctx := context.Background()
	store := storage.NewProgressStorage()
	content := &fakeContent{texts: map[string]string{"easy/3": "спасибо"}}
	v := NewVerifierService(store, content, nil, nil, nil)

	// Awaiting with an empty expected text only happens with hand-edited rows.
	_ = store.Upsert(ctx, 1, 100, entities.ProgressUpdate{
		Level:    entities.Ptr(entities.LevelEasy),
		Position: entities.Ptr(3),
		Awaiting: entities.Ptr(true),
	})

	verdict, err := v.Verify(ctx, 1, "Спасибо!")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verdict.Accepted || verdict.Expected != "спасибо" || content.fetches != 1 {
		t.Fatalf("unexpected verdict: %+v (fetches %d)", verdict, content.fetches)
	}
}

func TestPending(t *testing.T) {
	ctx := context.Background()
	store := storage.NewProgressStorage()
	v := NewVerifierService(store, &fakeContent{}, nil, nil, nil)

	if ok, err := v.Pending(ctx, 1); err != nil || ok {
		t.Fatalf("unknown user: pending = %v, err = %v", ok, err)
	}

	seedAwaiting(t, store, 1, "да")
	if ok, err := v.Pending(ctx, 1); err != nil || !ok {
		t.Fatalf("awaiting user: pending = %v, err = %v", ok, err)
	}
}

func TestSessionAndVerifierFlow(t *testing.T) {
	ctx := context.Background()
	store := storage.NewProgressStorage()
	content := &fakeContent{texts: map[string]string{
		"easy/1": "Привет",
		"easy/2": "Пока",
	}}

	s, err := NewSessionService(store, content, 2, nil, nil)
	if err != nil {
		t.Fatalf("new session service: %v", err)
	}
	v := NewVerifierService(store, content, nil, nil, nil)

	if _, err := s.Apply(ctx, 1, 100, entities.SelectLevel{Level: entities.LevelEasy}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if verdict, err := v.Verify(ctx, 1, "привет"); err != nil || !verdict.Accepted {
		t.Fatalf("first answer: %+v %v", verdict, err)
	}
	if _, err := v.Verify(ctx, 1, "привет"); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("second answer to the same lesson: %v", err)
	}

	if _, err := s.Apply(ctx, 1, 100, entities.Next{}); err != nil {
		t.Fatalf("next: %v", err)
	}
	if verdict, err := v.Verify(ctx, 1, "пока!"); err != nil || !verdict.Accepted {
		t.Fatalf("second lesson: %+v %v", verdict, err)
	}

	out, err := s.Apply(ctx, 1, 100, entities.Next{})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if out.Kind != OutcomeLevelCompleted || out.FinalScore != 2 {
		t.Fatalf("unexpected completion: %+v", out)
	}
}
