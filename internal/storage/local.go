// Package storage persists uploaded attachment files and hands out stable
// reference paths for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RefPrefix is the path prefix under which attachment references resolve.
// Consumers interpret references relative to a known base location; the core
// only guarantees that a reference resolves to a retrievable byte stream.
const RefPrefix = "/uploads/"

// AttachmentStore persists uploaded binary files and returns stable
// reference paths.
type AttachmentStore interface {
	Save(ctx context.Context, filename string, content []byte) (string, error)
	Remove(ctx context.Context, ref string) error
}

// LocalStore is an AttachmentStore backed by a local filesystem directory.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates the base directory if needed and returns a store
// rooted at it.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes content under a freshly generated name, keeping the original
// file extension, and returns the reference path.
func (s *LocalStore) Save(_ context.Context, filename string, content []byte) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if err := os.WriteFile(filepath.Join(s.baseDir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return RefPrefix + name, nil
}

// Remove deletes the file a reference points to. A reference that no longer
// resolves is not an error; removal is advisory cleanup.
func (s *LocalStore) Remove(_ context.Context, ref string) error {
	name := strings.TrimPrefix(ref, RefPrefix)
	if name == ref || name == "" || strings.ContainsAny(name, "/\\") || name == ".." {
		return fmt.Errorf("invalid attachment reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}
