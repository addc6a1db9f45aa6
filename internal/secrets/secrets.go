// Package secrets supplies backend credentials to the storage factory.
// Providers are consulted once at storage-construction time, never
// per-operation; a caching decorator keeps fetched values warm under a
// time-bounded TTL.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned when no secret exists under the given name.
	ErrNotFound = errors.New("secret not found")
	// ErrUnavailable is returned when the secret source cannot be reached.
	ErrUnavailable = errors.New("secret source unavailable")
)

// Provider resolves a secret name to its value.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Env resolves secrets from environment variables. A name like
// "object-access-key" maps to the variable OBJECT_ACCESS_KEY, optionally
// under a prefix.
type Env struct {
	prefix string
}

// NewEnv creates an environment-backed secret provider. prefix, when not
// empty, is prepended to every variable name ("FILEDEPOT_" turns
// "api-key" into FILEDEPOT_API_KEY).
func NewEnv(prefix string) *Env {
	return &Env{prefix: prefix}
}

func (e *Env) GetSecret(ctx context.Context, name string) (string, error) {
	key := e.prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("secret %q (env %s): %w", name, key, ErrNotFound)
	}
	return value, nil
}
