package artifact_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/contentkit/studio/internal/artifact"
	"github.com/contentkit/studio/internal/testutil"
)

func TestSaveAllocatesVersions(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := artifact.NewStore(db)
	ctx := context.Background()

	v1, err := store.Save(ctx, "studio", "user-1", "sess-1", "linkedin_image.png", "image/png", []byte("first"))
	if err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if v1 != 1 {
		t.Fatalf("expected version 1, got %d", v1)
	}

	v2, err := store.Save(ctx, "studio", "user-1", "sess-1", "linkedin_image.png", "image/png", []byte("second"))
	if err != nil {
		t.Fatalf("save v2: %v", err)
	}
	if v2 != 2 {
		t.Fatalf("expected version 2, got %d", v2)
	}

	// Latest by default.
	blob, err := store.Load(ctx, "studio", "user-1", "sess-1", "linkedin_image.png", 0)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if blob.Version != 2 || !bytes.Equal(blob.Data, []byte("second")) {
		t.Fatalf("expected latest version, got v%d %q", blob.Version, blob.Data)
	}

	// First version untouched.
	blob, err = store.Load(ctx, "studio", "user-1", "sess-1", "linkedin_image.png", 1)
	if err != nil {
		t.Fatalf("load v1: %v", err)
	}
	if !bytes.Equal(blob.Data, []byte("first")) {
		t.Fatalf("expected v1 data intact, got %q", blob.Data)
	}
}

func TestListKeysDistinct(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := artifact.NewStore(db)
	ctx := context.Background()

	for _, name := range []string{"a.png", "a.png", "b.png"} {
		if _, err := store.Save(ctx, "studio", "user-1", "sess-1", name, "image/png", []byte("x")); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	keys, err := store.ListKeys(ctx, "studio", "user-1", "sess-1")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a.png" || keys[1] != "b.png" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestLoadMissing(t *testing.T) {
	db, closeFn := testutil.OpenTestDB(t)
	defer closeFn()

	store := artifact.NewStore(db)
	ctx := context.Background()

	if _, err := store.Load(ctx, "studio", "user-1", "sess-1", "nope.png", 0); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.Save(ctx, "studio", "user-1", "sess-1", "only.png", "image/png", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Load(ctx, "studio", "user-1", "sess-1", "only.png", 9); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing version, got %v", err)
	}
}
