package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filedepot/internal/config"
	"filedepot/internal/secrets"
)

// Backend identifies a storage backend kind.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendObject Backend = "object"
	BackendDrive  Backend = "gdrive"
)

// AvailableBackends returns every supported backend kind.
func AvailableBackends() []Backend {
	return []Backend{BackendLocal, BackendObject, BackendDrive}
}

// ParseBackend converts a string to a Backend with validation.
func ParseBackend(s string) (Backend, error) {
	backend := Backend(s)
	switch backend {
	case BackendLocal, BackendObject, BackendDrive:
		return backend, nil
	default:
		return "", fmt.Errorf("invalid storage backend: %s (valid: %v)", s, AvailableBackends())
	}
}

// ValidateBackendConfig checks that the configuration carries everything
// the given backend needs before any client is constructed.
func ValidateBackendConfig(backend Backend) error {
	switch backend {
	case BackendLocal:
		if config.LocalRoot == "" {
			return fmt.Errorf("LOCAL_STORAGE_ROOT is required for %s storage", backend)
		}
		return nil
	case BackendObject:
		if config.ObjectEndpoint == "" {
			return fmt.Errorf("OBJECT_ENDPOINT is required for %s storage", backend)
		}
		return nil
	case BackendDrive:
		// Credentials are discovered at construction time: either the
		// application default credentials or a token from the secret
		// provider.
		return nil
	default:
		return fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// CreateProvider builds a provider for the given backend kind. Credentials
// come from the secret provider; each backend client is constructed
// exactly once per returned instance.
func CreateProvider(ctx context.Context, backend Backend, sp secrets.Provider) (Provider, error) {
	if err := ValidateBackendConfig(backend); err != nil {
		return nil, fmt.Errorf("storage configuration validation failed: %w", err)
	}

	slog.Info("Creating storage backend", "type", backend)
	switch backend {
	case BackendLocal:
		return NewLocalDisk(config.LocalRoot, nil)
	case BackendObject:
		return createObjectStore(ctx, sp)
	case BackendDrive:
		return createDrive(ctx, sp)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}

// CreateProviderFromConfig builds a provider for the backend named in the
// environment configuration.
func CreateProviderFromConfig(ctx context.Context, sp secrets.Provider) (Provider, error) {
	backend, err := ParseBackend(config.StorageBackend)
	if err != nil {
		return nil, err
	}
	return CreateProvider(ctx, backend, sp)
}

func createObjectStore(ctx context.Context, sp secrets.Provider) (*ObjectStore, error) {
	accessKey, err := sp.GetSecret(ctx, config.ObjectAccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object store access key: %w", err)
	}
	secretKey, err := sp.GetSecret(ctx, config.ObjectSecretKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object store secret key: %w", err)
	}

	store, err := NewObjectStore(ObjectConfig{
		Endpoint:  config.ObjectEndpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    config.ObjectUseSSL,
		BaseURL:   config.ObjectBaseURL,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}
	return store, nil
}

func createDrive(ctx context.Context, sp secrets.Provider) (*Drive, error) {
	// A configured token secret selects per-user OAuth access; otherwise
	// the service account's default credentials are used.
	if config.DriveTokenSecret != "" {
		token, err := sp.GetSecret(ctx, config.DriveTokenSecret)
		if err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return nil, fmt.Errorf("failed to fetch Drive token: %w", err)
		}
		if err == nil {
			return NewDriveWithToken(ctx, token)
		}
	}
	return NewDriveWithDefaultCredentials(ctx)
}
