package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore implements Provider against any S3-compatible object store
// (MinIO, AWS S3, R2). The first logical path segment is the bucket name,
// lowercased to satisfy bucket naming rules; the remaining segments joined
// with "/" form the object key. "Folders" in listings are synthesized from
// key prefixes via delimiter listing, they are not real entities.
type ObjectStore struct {
	client  *minio.Client
	baseURL string
	log     *slog.Logger
}

// ObjectConfig holds connection settings for an S3-compatible endpoint.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	BaseURL   string // optional public URL prefix used for locators
}

// NewObjectStore creates the object-store provider. The underlying client
// is built exactly once and owned by the returned instance.
func NewObjectStore(cfg ObjectConfig, logger *slog.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	logger.Info("Object storage initialized", "endpoint", cfg.Endpoint)
	return &ObjectStore{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     logger,
	}, nil
}

// objectPath splits a logical path into bucket and key. The key is empty
// when the path names only the bucket.
func (o *ObjectStore) objectPath(path string) (bucket, key string, err error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", "", err
	}
	return strings.ToLower(segments[0]), strings.Join(segments[1:], "/"), nil
}

// ensureBucket creates the bucket if it does not exist yet. Buckets are
// auto-created on write paths only.
func (o *ObjectStore) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := o.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapObjectError(err)
	}
	if !exists {
		if err := o.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return mapObjectError(err)
		}
		o.log.Info("Created bucket", "bucket", bucket)
	}
	return nil
}

// Add uploads content as the object at path, creating the bucket when
// absent. The locator is the object's URI.
func (o *ObjectStore) Add(ctx context.Context, path string, content io.Reader, overwrite bool) (string, error) {
	bucket, key, err := o.objectPath(path)
	if err != nil {
		return "", opError("add", path, err)
	}
	if key == "" {
		return "", opError("add", path, fmt.Errorf("path names a container, not an object: %w", ErrInvalidArgument))
	}

	// The bucket may come into existence even if the final write fails.
	if err := o.ensureBucket(ctx, bucket); err != nil {
		o.log.Error("Failed to ensure bucket", "op", "add", "path", path, "error", err)
		return "", opError("add", path, err)
	}

	if !overwrite {
		_, err := o.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return "", opError("add", path, fmt.Errorf("object exists: %w", ErrAlreadyExists))
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return "", opError("add", path, mapObjectError(err))
		}
	}

	if _, err := o.client.PutObject(ctx, bucket, key, content, -1, minio.PutObjectOptions{}); err != nil {
		o.log.Error("Failed to put object", "op", "add", "path", path, "error", err)
		return "", opError("add", path, mapObjectError(err))
	}

	return o.locator(bucket, key), nil
}

// locator builds the URI returned by Add: the public base URL when one is
// configured, the endpoint URL otherwise.
func (o *ObjectStore) locator(bucket, key string) string {
	if o.baseURL != "" {
		return fmt.Sprintf("%s/%s/%s", o.baseURL, bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(o.client.EndpointURL().String(), "/"), bucket, key)
}

// Delete removes the object at path. When path names a synthesized folder
// (a key prefix) every object under it is removed; when it names only the
// bucket the bucket and its contents are removed.
func (o *ObjectStore) Delete(ctx context.Context, path string) error {
	bucket, key, err := o.objectPath(path)
	if err != nil {
		return opError("delete", path, err)
	}

	exists, err := o.client.BucketExists(ctx, bucket)
	if err != nil {
		return opError("delete", path, mapObjectError(err))
	}
	if !exists {
		return opError("delete", path, fmt.Errorf("no container %q: %w", bucket, ErrNotFound))
	}

	if key != "" {
		_, err := o.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if err == nil {
			if err := o.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
				o.log.Error("Failed to remove object", "op", "delete", "path", path, "error", err)
				return opError("delete", path, mapObjectError(err))
			}
			return nil
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return opError("delete", path, mapObjectError(err))
		}
		// Not a plain object; fall through and treat the key as a
		// folder prefix.
	}

	prefix := ""
	if key != "" {
		prefix = key + "/"
	}
	removed, err := o.removePrefix(ctx, bucket, prefix)
	if err != nil {
		o.log.Error("Failed to remove prefix", "op", "delete", "path", path, "error", err)
		return opError("delete", path, err)
	}
	if removed == 0 {
		return opError("delete", path, fmt.Errorf("no entry at path: %w", ErrNotFound))
	}

	if key == "" {
		if err := o.client.RemoveBucket(ctx, bucket); err != nil {
			return opError("delete", path, mapObjectError(err))
		}
	}
	return nil
}

// removePrefix deletes every object under prefix and reports how many
// objects were removed.
func (o *ObjectStore) removePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	removed := 0
	for obj := range o.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return removed, mapObjectError(obj.Err)
		}
		if err := o.client.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, mapObjectError(err)
		}
		removed++
	}
	return removed, nil
}

// Exists reports whether an object is present at path. A bucket-only path
// designates a container, never a file, so it reports false.
func (o *ObjectStore) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := o.objectPath(path)
	if err != nil {
		return false, opError("exists", path, err)
	}
	if key == "" {
		return false, nil
	}

	_, err = o.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return false, nil
		}
		return false, opError("exists", path, mapObjectError(err))
	}
	return true, nil
}

// List returns the immediate children of the container at path. Folder
// entries are synthesized from key prefixes by delimiter listing.
func (o *ObjectStore) List(ctx context.Context, path string) ([]Item, error) {
	bucket, key, err := o.objectPath(path)
	if err != nil {
		return nil, opError("list", path, err)
	}

	exists, err := o.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, opError("list", path, mapObjectError(err))
	}
	if !exists {
		return nil, opError("list", path, fmt.Errorf("no container %q: %w", bucket, ErrNotFound))
	}

	prefix := ""
	if key != "" {
		prefix = key + "/"
	}

	var items []Item
	for obj := range o.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, opError("list", path, mapObjectError(obj.Err))
		}

		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" {
			// The placeholder object for the prefix itself.
			continue
		}
		if strings.HasSuffix(name, "/") {
			items = append(items, Item{Name: strings.TrimSuffix(name, "/"), Kind: KindFolder})
		} else {
			items = append(items, Item{Name: name, Kind: KindFile})
		}
	}

	// A synthesized folder only exists while at least one key lives
	// under its prefix.
	if key != "" && len(items) == 0 {
		return nil, opError("list", path, fmt.Errorf("no container at path: %w", ErrNotFound))
	}
	return items, nil
}

// Read streams the object at path. The caller owns the returned stream.
func (o *ObjectStore) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := o.objectPath(path)
	if err != nil {
		return nil, opError("read", path, err)
	}
	if key == "" {
		return nil, opError("read", path, fmt.Errorf("path names a container, not an object: %w", ErrInvalidArgument))
	}

	obj, err := o.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, opError("read", path, mapObjectError(err))
	}

	// GetObject is lazy; Stat forces the first request so a missing
	// object fails here instead of on the first Read call.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, opError("read", path, fmt.Errorf("no entry at path: %w", ErrNotFound))
		}
		return nil, opError("read", path, mapObjectError(err))
	}
	return obj, nil
}

// mapObjectError classifies a vendor error into the shared taxonomy.
func mapObjectError(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	case "AccessDenied":
		return fmt.Errorf("%v: %w", err, ErrPermissionDenied)
	default:
		return fmt.Errorf("%v: %w", err, ErrUnavailable)
	}
}
