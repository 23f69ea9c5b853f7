package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setIDs(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// TestSeenRepo_RoundTrip verifies commit-then-load returns the same set.
func TestSeenRepo_RoundTrip(t *testing.T) {
	// Arrange
	repo := NewSeenRepo(t.TempDir())
	ctx := context.Background()
	want := setIDs("a1", "a2", "a3")

	// Act
	if err := repo.Commit(ctx, "physics-2024", want); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	got, err := repo.Load(ctx, "physics-2024")

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

// TestSeenRepo_LoadMissingScope verifies a never-committed scope yields an
// empty set without an error.
func TestSeenRepo_LoadMissingScope(t *testing.T) {
	repo := NewSeenRepo(t.TempDir())

	got, err := repo.Load(context.Background(), "never-seen")

	if err != nil {
		t.Errorf("Load() error = %v, want nil for missing scope", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty set", got)
	}
}

// TestSeenRepo_LoadCorruptFile verifies corruption degrades to an empty set
// with an advisory ErrCorruptStore, never a hard failure.
func TestSeenRepo_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewSeenRepo(dir)
	if err := os.WriteFile(filepath.Join(dir, "global.json"), []byte("{{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Load(context.Background(), "global")

	if !errors.Is(err, ErrCorruptStore) {
		t.Errorf("Load() error = %v, want ErrCorruptStore", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Load() = %v, want empty non-nil set", got)
	}
}

// TestSeenRepo_CommitOverwrites verifies commit replaces the stored set.
func TestSeenRepo_CommitOverwrites(t *testing.T) {
	repo := NewSeenRepo(t.TempDir())
	ctx := context.Background()

	if err := repo.Commit(ctx, "global", setIDs("a1")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Commit(ctx, "global", setIDs("a1", "a2")); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Load(ctx, "global")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(setIDs("a1", "a2"), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

// TestSeenRepo_ScopeIsolation verifies scopes do not bleed into each other.
func TestSeenRepo_ScopeIsolation(t *testing.T) {
	repo := NewSeenRepo(t.TempDir())
	ctx := context.Background()

	if err := repo.Commit(ctx, "batch-a", setIDs("a1")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Commit(ctx, "batch-b", setIDs("b1")); err != nil {
		t.Fatal(err)
	}

	gotA, _ := repo.Load(ctx, "batch-a")
	gotB, _ := repo.Load(ctx, "batch-b")
	if diff := cmp.Diff(setIDs("a1"), gotA); diff != "" {
		t.Errorf("scope batch-a mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(setIDs("b1"), gotB); diff != "" {
		t.Errorf("scope batch-b mismatch (-want +got):\n%s", diff)
	}
}

// TestSeenRepo_PathTraversalScope verifies hostile scope names stay inside
// the base directory.
func TestSeenRepo_PathTraversalScope(t *testing.T) {
	dir := t.TempDir()
	repo := NewSeenRepo(dir)
	ctx := context.Background()

	if err := repo.Commit(ctx, "../escape", setIDs("a1")); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in store dir, got %d", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "..", "escape.json")); !os.IsNotExist(err) {
		t.Error("scope file escaped the store directory")
	}
}

// TestSeenRepo_NoTempFilesLeftBehind verifies the temp-then-rename discipline
// cleans up after itself.
func TestSeenRepo_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	repo := NewSeenRepo(dir)

	if err := repo.Commit(context.Background(), "global", setIDs("a1", "a2")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "global.json" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}
