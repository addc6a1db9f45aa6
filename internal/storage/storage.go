package storage

import (
	"context"
	"io"
)

// Kind distinguishes files from grouping entries in a listing.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Item is one entry returned by List: a fresh snapshot with no identity
// beyond its name and kind within that listing.
type Item struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// HierarchicalItem extends Item with the backend-native identifiers used
// by ID-addressed backends such as Google Drive, where a name alone does
// not locate an entry.
type HierarchicalItem struct {
	Item
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
}

// Provider is the common capability set every storage backend implements.
// Paths are slash-delimited logical paths interpreted per backend; see the
// adapter docs for how segments map to native locations. Implementations
// hold no mutable shared state beyond their backend client, so a single
// instance is safe for concurrent use.
type Provider interface {
	// Add writes content to path and returns a backend-specific locator
	// (the native path, an object URI, or a shareable link). Missing
	// intermediate containers are created. If an entry already exists at
	// path, Add fails with ErrAlreadyExists unless overwrite is set, in
	// which case the prior content is fully replaced.
	Add(ctx context.Context, path string, content io.Reader, overwrite bool) (string, error)

	// Delete removes the entry at path, recursively for containers.
	// Backends that permit duplicate names delete every match. Fails
	// with ErrNotFound when nothing exists at path.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file is present at path. A missing entry
	// is (false, nil); errors are reserved for malformed input and
	// backend failures.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the immediate children of the container at path, in
	// no guaranteed order. Fails with ErrNotFound when the container
	// does not exist.
	List(ctx context.Context, path string) ([]Item, error)

	// Read returns a stream of the entry's content. The caller owns the
	// stream and must close it on every exit path. Fails with
	// ErrNotFound when the entry is absent.
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}
