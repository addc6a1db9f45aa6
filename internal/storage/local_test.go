package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestDisk(t *testing.T) *LocalDisk {
	t.Helper()
	disk, err := NewLocalDisk(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocalDisk failed: %v", err)
	}
	return disk
}

func readAll(t *testing.T, p Provider, path string) string {
	t.Helper()
	stream, err := p.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read(%q) failed: %v", path, err)
	}
	defer stream.Close()

	content, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("reading stream for %q failed: %v", path, err)
	}
	return string(content)
}

func TestLocalDiskAddAndRead(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	locator, err := disk.Add(ctx, "docs/reports/q1.txt", strings.NewReader("hello"), false)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if locator == "" {
		t.Error("locator should be the native path, not empty")
	}

	if got := readAll(t, disk, "docs/reports/q1.txt"); got != "hello" {
		t.Errorf("Read = %q, want %q", got, "hello")
	}
}

func TestLocalDiskAddWithoutOverwriteFailsOnExisting(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	if _, err := disk.Add(ctx, "a/file.txt", strings.NewReader("one"), false); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	_, err := disk.Add(ctx, "a/file.txt", strings.NewReader("two"), false)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second Add = %v, want ErrAlreadyExists", err)
	}

	// First payload is untouched.
	if got := readAll(t, disk, "a/file.txt"); got != "one" {
		t.Errorf("content = %q, want %q", got, "one")
	}
}

func TestLocalDiskOverwriteReplacesContent(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	if _, err := disk.Add(ctx, "a/file.txt", strings.NewReader("original"), true); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if _, err := disk.Add(ctx, "a/file.txt", strings.NewReader("Overwrite Content"), true); err != nil {
		t.Fatalf("second Add failed: %v", err)
	}

	if got := readAll(t, disk, "a/file.txt"); got != "Overwrite Content" {
		t.Errorf("content = %q, want %q", got, "Overwrite Content")
	}
}

func TestLocalDiskExists(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	exists, err := disk.Exists(ctx, "missing.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Exists should be false before Add")
	}

	if _, err := disk.Add(ctx, "missing.txt", strings.NewReader("x"), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	exists, err = disk.Exists(ctx, "missing.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Exists should be true after Add")
	}

	// Directories are not files.
	if _, err := disk.Add(ctx, "dir/inner.txt", strings.NewReader("x"), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	exists, err = disk.Exists(ctx, "dir")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Exists should be false for a directory")
	}
}

func TestLocalDiskDelete(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	if err := disk.Delete(ctx, "nothing/here"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete on missing path = %v, want ErrNotFound", err)
	}

	if _, err := disk.Add(ctx, "a/file.txt", strings.NewReader("x"), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := disk.Delete(ctx, "a/file.txt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err := disk.Exists(ctx, "a/file.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Exists should be false after Delete")
	}
}

func TestLocalDiskDeleteDirectoryRecursively(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	for _, p := range []string{"dir/a.txt", "dir/sub/b.txt"} {
		if _, err := disk.Add(ctx, p, strings.NewReader("x"), false); err != nil {
			t.Fatalf("Add(%q) failed: %v", p, err)
		}
	}

	if err := disk.Delete(ctx, "dir"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := disk.List(ctx, "dir"); !errors.Is(err, ErrNotFound) {
		t.Errorf("List after Delete = %v, want ErrNotFound", err)
	}
}

func TestLocalDiskList(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	paths := []string{"box/one.txt", "box/two.txt", "box/nested/three.txt"}
	for _, p := range paths {
		if _, err := disk.Add(ctx, p, strings.NewReader("x"), false); err != nil {
			t.Fatalf("Add(%q) failed: %v", p, err)
		}
	}

	items, err := disk.List(ctx, "box")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("List returned %d items, want 3", len(items))
	}

	kinds := map[string]Kind{}
	for _, item := range items {
		kinds[item.Name] = item.Kind
	}
	if kinds["one.txt"] != KindFile || kinds["two.txt"] != KindFile {
		t.Errorf("files should list as KindFile: %v", kinds)
	}
	if kinds["nested"] != KindFolder {
		t.Errorf("directory should list as KindFolder: %v", kinds)
	}
}

func TestLocalDiskListOnFileIsInvalid(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	if _, err := disk.Add(ctx, "plain.txt", strings.NewReader("x"), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := disk.List(ctx, "plain.txt"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("List on a file = %v, want ErrInvalidArgument", err)
	}
}

func TestLocalDiskReadMissing(t *testing.T) {
	disk := newTestDisk(t)

	_, err := disk.Read(context.Background(), "no/such/file")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read = %v, want ErrNotFound", err)
	}
}

func TestLocalDiskRejectsBlankPaths(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	for _, path := range []string{"", "   ", "//"} {
		if _, err := disk.Add(ctx, path, bytes.NewReader(nil), false); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Add(%q) = %v, want ErrInvalidArgument", path, err)
		}
		if err := disk.Delete(ctx, path); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Delete(%q) = %v, want ErrInvalidArgument", path, err)
		}
		if _, err := disk.Exists(ctx, path); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Exists(%q) = %v, want ErrInvalidArgument", path, err)
		}
		if _, err := disk.List(ctx, path); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("List(%q) = %v, want ErrInvalidArgument", path, err)
		}
		if _, err := disk.Read(ctx, path); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Read(%q) = %v, want ErrInvalidArgument", path, err)
		}
	}
}

func TestLocalDiskRoundTrip(t *testing.T) {
	disk := newTestDisk(t)
	ctx := context.Background()

	payload := []byte("Overwrite Content")
	if _, err := disk.Add(ctx, "rt/payload.bin", bytes.NewReader(payload), false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := readAll(t, disk, "rt/payload.bin"); !bytes.Equal([]byte(got), payload) {
		t.Errorf("round trip mismatch: got %q, want %q", got, payload)
	}
}
