package storage

import (
	"fmt"
	"strings"
)

// splitPath breaks a logical path into its non-empty segments.
// Leading, trailing and repeated slashes are ignored, so "a//b/" and
// "/a/b" both yield ["a" "b"]. A blank or whitespace-only path, or one
// with no segments left after trimming, is rejected with
// ErrInvalidArgument before any backend call is made.
func splitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty path: %w", ErrInvalidArgument)
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("path %q has no segments: %w", path, ErrInvalidArgument)
	}
	return segments, nil
}
