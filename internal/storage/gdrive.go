package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"filedepot/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// defaultDeleteBatchSize bounds how many delete calls run concurrently
// when a logical path resolves to many Drive entries.
const defaultDeleteBatchSize = 50

// Drive implements Provider against Google Drive. Drive is ID-addressed:
// every logical path segment is resolved to a node ID by walking the
// folder hierarchy from the root. Uploaded files are shared read-only with
// anyone holding the link, and Add returns that link as the locator.
type Drive struct {
	svc       *drive.Service
	rootID    string
	batchSize int
	log       *slog.Logger
}

// NewDriveWithDefaultCredentials creates a Drive provider using the
// application default credentials, typically a service account.
func NewDriveWithDefaultCredentials(ctx context.Context) (*Drive, error) {
	creds, err := google.FindDefaultCredentials(ctx, config.DriveScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to find default credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	slog.Info("Google Drive storage initialized")
	return newDrive(svc), nil
}

// NewDriveWithToken creates a Drive provider acting as the user behind the
// given OAuth2 access token.
func NewDriveWithToken(ctx context.Context, accessToken string) (*Drive, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	svc, err := drive.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service with token: %w", err)
	}

	slog.Info("Google Drive storage initialized with OAuth token")
	return newDrive(svc), nil
}

// NewDriveWithService wraps an existing Drive service. Used by tests to
// point the adapter at a fake API endpoint.
func NewDriveWithService(svc *drive.Service) *Drive {
	return newDrive(svc)
}

func newDrive(svc *drive.Service) *Drive {
	batchSize := config.DeleteBatchSize
	if batchSize < 1 {
		batchSize = defaultDeleteBatchSize
	}
	return &Drive{
		svc:       svc,
		rootID:    "root",
		batchSize: batchSize,
		log:       slog.Default(),
	}
}

// SetDeleteBatchSize overrides how many concurrent delete calls one batch
// may hold. Values below one fall back to the default.
func (d *Drive) SetDeleteBatchSize(n int) {
	if n < 1 {
		n = defaultDeleteBatchSize
	}
	d.batchSize = n
}

// Add uploads content as a file at path, creating missing intermediate
// folders. With overwrite set, existing entries at path are deleted first;
// Drive has no overwrite-in-place. The locator is the file's shareable
// link.
func (d *Drive) Add(ctx context.Context, path string, content io.Reader, overwrite bool) (string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", opError("add", path, err)
	}
	name := segments[len(segments)-1]

	// Folders created here survive even if the upload below fails.
	folderID, err := d.resolveFolder(ctx, segments[:len(segments)-1], true)
	if err != nil {
		d.log.Error("Failed to resolve folder", "op", "add", "path", path, "error", err)
		return "", opError("add", path, err)
	}

	existing, err := d.children(ctx, folderID, name)
	if err != nil {
		return "", opError("add", path, err)
	}
	if len(existing) > 0 {
		if !overwrite {
			return "", opError("add", path, fmt.Errorf("entry exists: %w", ErrAlreadyExists))
		}
		if err := d.deleteBatched(ctx, existing); err != nil {
			d.log.Error("Failed to delete prior entries", "op", "add", "path", path, "error", err)
			return "", opError("add", path, err)
		}
	}

	created, err := d.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).Media(content).Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		d.log.Error("Failed to create file", "op", "add", "path", path, "error", err)
		return "", opError("add", path, mapDriveError(err))
	}

	if err := d.shareWithLink(ctx, created.Id); err != nil {
		d.log.Error("Failed to set permissions", "op", "add", "path", path, "error", err)
		return "", opError("add", path, err)
	}

	d.log.Info("File uploaded", "path", path, "id", created.Id)
	return created.WebViewLink, nil
}

// shareWithLink grants read access to anyone holding the file's link.
func (d *Drive) shareWithLink(ctx context.Context, fileID string) error {
	_, err := d.svc.Permissions.Create(fileID, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return mapDriveError(err)
	}
	return nil
}

// Delete removes every entry at path; Drive permits duplicate names under
// one parent and all matches are deleted. The candidate set is processed
// in batches of the configured size: deletes within a batch run
// concurrently, batches run sequentially, which bounds the number of
// in-flight calls.
func (d *Drive) Delete(ctx context.Context, path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return opError("delete", path, err)
	}

	matches, err := d.resolveAll(ctx, segments)
	if err != nil {
		d.log.Error("Failed to resolve path", "op", "delete", "path", path, "error", err)
		return opError("delete", path, err)
	}
	if len(matches) == 0 {
		return opError("delete", path, fmt.Errorf("no entry at path: %w", ErrNotFound))
	}

	if err := d.deleteBatched(ctx, matches); err != nil {
		d.log.Error("Failed to delete entries", "op", "delete", "path", path, "error", err)
		return opError("delete", path, err)
	}
	return nil
}

// deleteBatched issues one Files.Delete per entry, at most batchSize of
// them in flight at a time. The first failure propagates after its batch
// drains; deletes already in flight are not cancelled, preferring
// at-least-once deletion over ambiguous partial state.
func (d *Drive) deleteBatched(ctx context.Context, files []*drive.File) error {
	for start := 0; start < len(files); start += d.batchSize {
		end := min(start+d.batchSize, len(files))

		var g errgroup.Group
		for _, file := range files[start:end] {
			g.Go(func() error {
				if err := d.svc.Files.Delete(file.Id).Context(ctx).Do(); err != nil {
					return mapDriveError(err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether any entry is present at path. Unresolvable
// segments mean a missing entry, not an error.
func (d *Drive) Exists(ctx context.Context, path string) (bool, error) {
	segments, err := splitPath(path)
	if err != nil {
		return false, opError("exists", path, err)
	}

	parentID, err := d.resolveFolder(ctx, segments[:len(segments)-1], false)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, opError("exists", path, err)
	}

	matches, err := d.children(ctx, parentID, segments[len(segments)-1])
	if err != nil {
		return false, opError("exists", path, err)
	}
	return len(matches) > 0, nil
}

// List returns the immediate children of the folder at path.
func (d *Drive) List(ctx context.Context, path string) ([]Item, error) {
	entries, err := d.ListEntries(ctx, path)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = entry.Item
	}
	return items, nil
}

// ListEntries is List with the backend-native identifiers retained, for
// callers that need to address entries by ID afterwards.
func (d *Drive) ListEntries(ctx context.Context, path string) ([]HierarchicalItem, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, opError("list", path, err)
	}

	folderID, err := d.resolveFolder(ctx, segments, false)
	if err != nil {
		d.log.Error("Failed to resolve folder", "op", "list", "path", path, "error", err)
		return nil, opError("list", path, err)
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	result, err := d.svc.Files.List().Q(query).
		Fields("files(id, name, mimeType, parents)").Context(ctx).Do()
	if err != nil {
		d.log.Error("Failed to list folder", "op", "list", "path", path, "error", err)
		return nil, opError("list", path, mapDriveError(err))
	}

	items := make([]HierarchicalItem, 0, len(result.Files))
	for _, file := range result.Files {
		kind := KindFile
		if file.MimeType == folderMIMEType {
			kind = KindFolder
		}
		items = append(items, HierarchicalItem{
			Item:     Item{Name: file.Name, Kind: kind},
			ID:       file.Id,
			ParentID: folderID,
		})
	}
	return items, nil
}

// Read streams the content of the entry at path. With duplicate names the
// first match is read. The caller owns the returned stream.
func (d *Drive) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, opError("read", path, err)
	}

	matches, err := d.resolveAll(ctx, segments)
	if err != nil {
		d.log.Error("Failed to resolve path", "op", "read", "path", path, "error", err)
		return nil, opError("read", path, err)
	}
	if len(matches) == 0 {
		return nil, opError("read", path, fmt.Errorf("no entry at path: %w", ErrNotFound))
	}

	resp, err := d.svc.Files.Get(matches[0].Id).Context(ctx).Download()
	if err != nil {
		d.log.Error("Failed to download file", "op", "read", "path", path, "error", err)
		return nil, opError("read", path, mapDriveError(err))
	}
	return resp.Body, nil
}

// mapDriveError classifies a Drive API error into the shared taxonomy.
func mapDriveError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return fmt.Errorf("%v: %w", err, ErrNotFound)
		case 401, 403:
			return fmt.Errorf("%v: %w", err, ErrPermissionDenied)
		}
	}
	return fmt.Errorf("%v: %w", err, ErrUnavailable)
}
