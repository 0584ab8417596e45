package chat

import (
	"context"
	"errors"
	"testing"
)

func TestRecordTurnGatedBySaveFlag(t *testing.T) {
	repo := newFakeRepo()
	recorder := NewRecorder(repo)

	if msg := recorder.RecordTurn(context.Background(), false, "sess_1", RoleUser, "hello", nil); msg != nil {
		t.Fatalf("save=false must not persist, got %+v", msg)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("expected no rows, got %d", len(repo.messages))
	}
}

func TestRecordTurnGatedBySessionPresence(t *testing.T) {
	repo := newFakeRepo()
	recorder := NewRecorder(repo)

	if msg := recorder.RecordTurn(context.Background(), true, "", RoleUser, "hello", nil); msg != nil {
		t.Fatalf("missing session must not persist, got %+v", msg)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("expected no rows, got %d", len(repo.messages))
	}
}

func TestRecordTurnPersists(t *testing.T) {
	repo := newFakeRepo()
	recorder := NewRecorder(repo)

	msg := recorder.RecordTurn(context.Background(), true, "sess_1", RoleAssistant, "the answer", nil)
	if msg == nil {
		t.Fatal("expected persisted message")
	}
	if msg.Role != RoleAssistant || msg.Content != "the answer" || msg.SessionID != "sess_1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.messages))
	}
}

func TestRecordTurnTitlesSessionFromFirstUserTurn(t *testing.T) {
	repo := newFakeRepo()
	repo.sessions["sess_1"] = &Session{PublicID: "sess_1", Title: DefaultSessionTitle}
	recorder := NewRecorder(repo)

	if msg := recorder.RecordTurn(context.Background(), true, "sess_1", RoleUser, "Explain how tides work https://example.com/tides", nil); msg == nil {
		t.Fatal("expected persisted message")
	}
	if got := repo.sessions["sess_1"].Title; got != "Explain how tides work" {
		t.Errorf("unexpected derived title %q", got)
	}

	// A second user turn must not rename the session.
	recorder.RecordTurn(context.Background(), true, "sess_1", RoleUser, "And what about neap tides?", nil)
	if got := repo.sessions["sess_1"].Title; got != "Explain how tides work" {
		t.Errorf("title changed on later turn: %q", got)
	}
}

func TestRecordTurnKeepsCustomTitle(t *testing.T) {
	repo := newFakeRepo()
	repo.sessions["sess_1"] = &Session{PublicID: "sess_1", Title: "Ocean physics"}
	recorder := NewRecorder(repo)

	recorder.RecordTurn(context.Background(), true, "sess_1", RoleUser, "Explain how tides work", nil)
	if got := repo.sessions["sess_1"].Title; got != "Ocean physics" {
		t.Errorf("custom title must survive, got %q", got)
	}
}

func TestRecordTurnSwallowsRepositoryFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = errors.New("connection reset")
	recorder := NewRecorder(repo)

	if msg := recorder.RecordTurn(context.Background(), true, "sess_1", RoleUser, "hello", nil); msg != nil {
		t.Fatalf("failed insert must return nil, got %+v", msg)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("expected no rows after failure, got %d", len(repo.messages))
	}
}
