package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalDisk implements Provider against a directory tree on the local
// filesystem. Logical path segments map one-to-one onto filesystem path
// segments under the configured root.
type LocalDisk struct {
	root string
	log  *slog.Logger
}

// NewLocalDisk creates a local filesystem provider rooted at rootDir,
// creating the root if it does not exist yet.
func NewLocalDisk(rootDir string, logger *slog.Logger) (*LocalDisk, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", rootDir, err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root %q: %w", absRoot, err)
	}

	logger.Info("Local disk storage initialized", "root", absRoot)
	return &LocalDisk{root: absRoot, log: logger}, nil
}

// nativePath validates the logical path and joins its segments under the
// root directory.
func (l *LocalDisk) nativePath(path string) (string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.Join(segments...)), nil
}

// Add writes content to the file at path, creating parent directories as
// needed. The locator is the native filesystem path.
func (l *LocalDisk) Add(ctx context.Context, path string, content io.Reader, overwrite bool) (string, error) {
	full, err := l.nativePath(path)
	if err != nil {
		return "", opError("add", path, err)
	}

	info, err := os.Stat(full)
	switch {
	case err == nil && !overwrite:
		return "", opError("add", path, fmt.Errorf("entry exists: %w", ErrAlreadyExists))
	case err == nil && info.IsDir():
		// Overwriting a directory with a file: the prior entry is
		// replaced wholesale, matching the delete-then-recreate
		// semantics of the ID-addressed backends.
		if err := os.RemoveAll(full); err != nil {
			return "", opError("add", path, mapFSError(err))
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", opError("add", path, mapFSError(err))
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		l.log.Error("Failed to create parent directories", "op", "add", "path", path, "error", err)
		return "", opError("add", path, mapFSError(err))
	}

	f, err := os.Create(full)
	if err != nil {
		l.log.Error("Failed to create file", "op", "add", "path", path, "error", err)
		return "", opError("add", path, mapFSError(err))
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		l.log.Error("Failed to write file", "op", "add", "path", path, "error", err)
		return "", opError("add", path, mapFSError(err))
	}

	return full, nil
}

// Delete removes the file or directory at path, recursively for
// directories.
func (l *LocalDisk) Delete(ctx context.Context, path string) error {
	full, err := l.nativePath(path)
	if err != nil {
		return opError("delete", path, err)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opError("delete", path, fmt.Errorf("no entry at path: %w", ErrNotFound))
		}
		return opError("delete", path, mapFSError(err))
	}

	if info.IsDir() {
		err = os.RemoveAll(full)
	} else {
		err = os.Remove(full)
	}
	if err != nil {
		l.log.Error("Failed to delete entry", "op", "delete", "path", path, "error", err)
		return opError("delete", path, mapFSError(err))
	}
	return nil
}

// Exists reports whether a regular file is present at path. Directories
// report false: for path-addressed backends existence is a file check.
func (l *LocalDisk) Exists(ctx context.Context, path string) (bool, error) {
	full, err := l.nativePath(path)
	if err != nil {
		return false, opError("exists", path, err)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, opError("exists", path, mapFSError(err))
	}
	return info.Mode().IsRegular(), nil
}

// List returns the immediate children of the directory at path.
func (l *LocalDisk) List(ctx context.Context, path string) ([]Item, error) {
	full, err := l.nativePath(path)
	if err != nil {
		return nil, opError("list", path, err)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, opError("list", path, fmt.Errorf("no container at path: %w", ErrNotFound))
		}
		return nil, opError("list", path, mapFSError(err))
	}
	if !info.IsDir() {
		return nil, opError("list", path, fmt.Errorf("path is not a container: %w", ErrInvalidArgument))
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, opError("list", path, mapFSError(err))
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		kind := KindFile
		if entry.IsDir() {
			kind = KindFolder
		}
		items = append(items, Item{Name: entry.Name(), Kind: kind})
	}
	return items, nil
}

// Read opens the file at path. The caller owns the returned stream.
func (l *LocalDisk) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := l.nativePath(path)
	if err != nil {
		return nil, opError("read", path, err)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, opError("read", path, fmt.Errorf("no entry at path: %w", ErrNotFound))
		}
		return nil, opError("read", path, mapFSError(err))
	}
	return f, nil
}

// mapFSError classifies a filesystem error into the shared taxonomy.
func mapFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%v: %w", err, ErrPermissionDenied)
	default:
		return fmt.Errorf("%v: %w", err, ErrUnavailable)
	}
}
