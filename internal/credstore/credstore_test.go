package credstore_test

import (
	"path/filepath"
	"testing"

	"github.com/subdock/subdock-cli/internal/credstore"
)

func setupTestStore(t *testing.T) *credstore.Store {
	t.Helper()
	store, err := credstore.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetEmpty(t *testing.T) {
	store := setupTestStore(t)

	token, err := store.Get()
	if err != nil {
		t.Fatalf("Get() unexpected error = %v", err)
	}
	if token != "" {
		t.Errorf("Get() on empty store = %q, want empty", token)
	}
}

func TestStore_SetGetClear(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Set("tok-abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	token, err := store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if token != "tok-abc" {
		t.Errorf("Get() = %q, want %q", token, "tok-abc")
	}

	// A second Set replaces the single live value.
	if err := store.Set("tok-def"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	token, _ = store.Get()
	if token != "tok-def" {
		t.Errorf("Get() after overwrite = %q, want %q", token, "tok-def")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	token, err = store.Get()
	if err != nil {
		t.Fatalf("Get() after Clear() error = %v", err)
	}
	if token != "" {
		t.Errorf("Get() after Clear() = %q, want empty", token)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdock.db")

	store, err := credstore.New(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Set("survives"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Close()

	reopened, err := credstore.New(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	token, err := reopened.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if token != "survives" {
		t.Errorf("Get() after reopen = %q, want %q", token, "survives")
	}
}
