// Package mock provides a test implementation of the storage Provider
// interface with complete control over method return values.
package mock

import (
	"context"
	"io"
	"strings"

	"filedepot/internal/storage"
)

// MockProvider is a configurable Provider for unit tests. Each method can
// be overridden with a func field; otherwise the configured result fields
// are returned. All calls are recorded for verification.
type MockProvider struct {
	// Add mock configuration
	AddFunc    func(ctx context.Context, path string, content io.Reader, overwrite bool) (string, error)
	AddLocator string
	AddError   error

	// Delete mock configuration
	DeleteFunc  func(ctx context.Context, path string) error
	DeleteError error

	// Exists mock configuration
	ExistsFunc   func(ctx context.Context, path string) (bool, error)
	ExistsResult bool
	ExistsError  error

	// List mock configuration
	ListFunc  func(ctx context.Context, path string) ([]storage.Item, error)
	ListItems []storage.Item
	ListError error

	// Read mock configuration
	ReadFunc    func(ctx context.Context, path string) (io.ReadCloser, error)
	ReadContent string
	ReadError   error

	// Call tracking for verification
	AddCalls    []AddCall
	DeleteCalls []string
	ExistsCalls []string
	ListCalls   []string
	ReadCalls   []string
}

// AddCall records the arguments of one Add invocation. Content holds the
// fully drained payload.
type AddCall struct {
	Path      string
	Content   string
	Overwrite bool
}

// NewMockProvider creates a MockProvider with empty call logs.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		AddCalls:    make([]AddCall, 0),
		DeleteCalls: make([]string, 0),
		ExistsCalls: make([]string, 0),
		ListCalls:   make([]string, 0),
		ReadCalls:   make([]string, 0),
	}
}

// Add implements storage.Provider
func (m *MockProvider) Add(ctx context.Context, path string, content io.Reader, overwrite bool) (string, error) {
	payload, _ := io.ReadAll(content)
	m.AddCalls = append(m.AddCalls, AddCall{
		Path:      path,
		Content:   string(payload),
		Overwrite: overwrite,
	})
	if m.AddFunc != nil {
		return m.AddFunc(ctx, path, strings.NewReader(string(payload)), overwrite)
	}
	return m.AddLocator, m.AddError
}

// Delete implements storage.Provider
func (m *MockProvider) Delete(ctx context.Context, path string) error {
	m.DeleteCalls = append(m.DeleteCalls, path)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path)
	}
	return m.DeleteError
}

// Exists implements storage.Provider
func (m *MockProvider) Exists(ctx context.Context, path string) (bool, error) {
	m.ExistsCalls = append(m.ExistsCalls, path)
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, path)
	}
	return m.ExistsResult, m.ExistsError
}

// List implements storage.Provider
func (m *MockProvider) List(ctx context.Context, path string) ([]storage.Item, error) {
	m.ListCalls = append(m.ListCalls, path)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, path)
	}
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.ListItems, nil
}

// Read implements storage.Provider
func (m *MockProvider) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	m.ReadCalls = append(m.ReadCalls, path)
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, path)
	}
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	return io.NopCloser(strings.NewReader(m.ReadContent)), nil
}
