package kv

import (
	"context"
	"testing"

	"github.com/ziadkadry99/gazeoverlay/internal/db"
)

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLStore(database)
}

func TestStoreGetMissing(t *testing.T) {
	store := setupTestStore(t)

	v, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get(nope) = %q, %v; want absent", v, ok)
	}
}

func TestStoreSetOverwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "gaze.backendUrl", "http://a"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "gaze.backendUrl", "http://b"); err != nil {
		t.Fatalf("Set (update): %v", err)
	}

	v, ok, err := store.Get(ctx, "gaze.backendUrl")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || v != "http://b" {
		t.Errorf("Get = %q, %v; want http://b", v, ok)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("All returned %d entries, want 1", len(all))
	}
}

func TestStoreDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "gaze.enabled", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, "gaze.enabled"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "gaze.enabled"); ok {
		t.Error("key still present after Delete")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, "gaze.enabled"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}
