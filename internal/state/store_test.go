package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/contentkit/studio/internal/state"
	"github.com/contentkit/studio/internal/testutil"
)

func TestStoreCreateAndGetState(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := state.NewStore(db)
	ctx := context.Background()

	session, err := store.Create(ctx, "studio", "user-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID == "" {
		t.Fatalf("expected session id")
	}

	bag, err := store.GetState(ctx, "studio", "user-1", session.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if len(bag) != 0 {
		t.Fatalf("expected empty bag, got %d keys", len(bag))
	}
}

func TestStoreUnknownSession(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := state.NewStore(db)
	ctx := context.Background()

	if _, err := store.GetState(ctx, "studio", "user-1", "no-such"); !errors.Is(err, state.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.SetKey(ctx, "studio", "user-1", "no-such", "topic", "x"); !errors.Is(err, state.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on set, got %v", err)
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := state.NewStore(db)
	ctx := context.Background()

	session, err := store.Create(ctx, "studio", "user-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := store.SetKey(ctx, "studio", "user-1", session.ID, "topic", map[string]string{"topic": "first"}); err != nil {
		t.Fatalf("set key: %v", err)
	}
	if err := store.SetKey(ctx, "studio", "user-1", session.ID, "topic", map[string]string{"topic": "second"}); err != nil {
		t.Fatalf("set key again: %v", err)
	}

	var got map[string]string
	found, err := store.GetKey(ctx, "studio", "user-1", session.ID, "topic", &got)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if !found {
		t.Fatalf("expected key present")
	}
	if got["topic"] != "second" {
		t.Fatalf("expected last write to win, got %q", got["topic"])
	}
}

func TestStoreKeysIndependent(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := state.NewStore(db)
	ctx := context.Background()

	session, err := store.Create(ctx, "studio", "user-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := store.SetKey(ctx, "studio", "user-1", session.ID, "a", 1); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := store.SetKey(ctx, "studio", "user-1", session.ID, "b", 2); err != nil {
		t.Fatalf("set b: %v", err)
	}

	bag, err := store.GetState(ctx, "studio", "user-1", session.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if string(bag["a"]) != "1" || string(bag["b"]) != "2" {
		t.Fatalf("unexpected bag contents: %v", bag)
	}

	var missing string
	found, err := store.GetKey(ctx, "studio", "user-1", session.ID, "c", &missing)
	if err != nil {
		t.Fatalf("get absent key: %v", err)
	}
	if found {
		t.Fatalf("expected absent key")
	}
}
