package storage

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitPath(t *testing.T) {
	cases := []struct {
		name string
		path string
		want []string
	}{
		{"simple", "a/b/c.txt", []string{"a", "b", "c.txt"}},
		{"leading slash", "/a/b", []string{"a", "b"}},
		{"trailing slash", "a/b/", []string{"a", "b"}},
		{"repeated slashes", "a//b", []string{"a", "b"}},
		{"single segment", "file.txt", []string{"file.txt"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := splitPath(tc.path)
			if err != nil {
				t.Fatalf("splitPath(%q) failed: %v", tc.path, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("splitPath(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestSplitPathRejectsBlankPaths(t *testing.T) {
	for _, path := range []string{"", "   ", "\t", "///"} {
		_, err := splitPath(path)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("splitPath(%q) = %v, want ErrInvalidArgument", path, err)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	err := opError("read", "a/b", errors.New("boom"))

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if serr.Op != "read" || serr.Path != "a/b" {
		t.Errorf("unexpected op/path: %q %q", serr.Op, serr.Path)
	}

	// Sentinels must stay matchable through the wrapper.
	wrapped := opError("delete", "x", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is should match ErrNotFound through *Error")
	}

	if opError("add", "p", nil) != nil {
		t.Error("opError should pass nil through")
	}
}
