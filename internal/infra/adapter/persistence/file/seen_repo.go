// Package file provides a file-backed implementation of the seen-ID
// repository. Each scope is a single JSON array of announcement IDs, written
// with a temp-file-then-rename discipline so a crash mid-write leaves the
// previous valid state on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pw-announcer/internal/repository"
)

// ErrCorruptStore marks a scope file that exists but cannot be decoded.
// Callers degrade to an empty set and log a warning; the error is advisory.
var ErrCorruptStore = fmt.Errorf("seen-id store is corrupt")

// SeenRepo stores one JSON file per scope under a base directory.
type SeenRepo struct {
	dir string
}

// NewSeenRepo creates a file-backed seen-ID repository rooted at dir.
// The directory is created on first commit if it does not exist.
func NewSeenRepo(dir string) repository.SeenRepository {
	return &SeenRepo{dir: dir}
}

// scopePath maps a scope name onto a file path, replacing separators so a
// slug like "physics/2024" cannot escape the base directory.
func (r *SeenRepo) scopePath(scope string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(scope)
	if safe == "" {
		safe = "global"
	}
	return filepath.Join(r.dir, safe+".json")
}

// Load reads the persisted IDs for a scope. A missing file yields an empty
// set with no error; an undecodable file yields an empty set together with
// ErrCorruptStore.
func (r *SeenRepo) Load(ctx context.Context, scope string) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return map[string]struct{}{}, err
	}

	data, err := os.ReadFile(r.scopePath(scope))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return map[string]struct{}{}, fmt.Errorf("%w: read %s: %v", ErrCorruptStore, scope, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return map[string]struct{}{}, fmt.Errorf("%w: decode %s: %v", ErrCorruptStore, scope, err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Commit overwrites the scope file with ids. The JSON is written to a
// temporary file in the same directory and renamed over the target, so
// readers always observe either the old or the new complete set.
func (r *SeenRepo) Commit(ctx context.Context, scope string, ids map[string]struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	// Sorted output keeps the files diffable and the tests deterministic.
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode seen ids: %w", err)
	}

	target := r.scopePath(scope)
	tmp, err := os.CreateTemp(r.dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
