package storage

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
)

// folderMIMEType is the Drive MIME type marking a folder node.
const folderMIMEType = "application/vnd.google-apps.folder"

// escapeQueryTerm escapes a name for interpolation into a Drive query.
func escapeQueryTerm(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, `'`, `\'`)
}

// childFolders returns the folders named name directly under parentID.
func (d *Drive) childFolders(ctx context.Context, parentID, name string) ([]*drive.File, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQueryTerm(name), parentID, folderMIMEType)

	result, err := d.svc.Files.List().Q(query).
		Fields("files(id, name, parents)").Context(ctx).Do()
	if err != nil {
		return nil, mapDriveError(err)
	}
	return result.Files, nil
}

// children returns every entry named name directly under parentID,
// regardless of type. Drive permits several entries to share a name under
// one parent, so the result can hold more than one match.
func (d *Drive) children(ctx context.Context, parentID, name string) ([]*drive.File, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQueryTerm(name), parentID)

	result, err := d.svc.Files.List().Q(query).
		Fields("files(id, name, mimeType, parents)").Context(ctx).Do()
	if err != nil {
		return nil, mapDriveError(err)
	}
	return result.Files, nil
}

// createFolder creates a folder named name under parentID and returns its
// ID.
func (d *Drive) createFolder(ctx context.Context, parentID, name string) (string, error) {
	folder, err := d.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMIMEType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", mapDriveError(err)
	}

	d.log.Info("Created folder", "name", name, "id", folder.Id, "parent", parentID)
	return folder.Id, nil
}

// resolveFolder walks segments from the root, adopting one folder ID per
// segment. When a segment has no match, create selects between making the
// folder (write paths) and failing with ErrNotFound naming the segment
// (read paths). When several folders share a segment's name the first
// match wins; duplicate names are tolerated, not rejected.
func (d *Drive) resolveFolder(ctx context.Context, segments []string, create bool) (string, error) {
	current := d.rootID
	for _, segment := range segments {
		matches, err := d.childFolders(ctx, current, segment)
		if err != nil {
			return "", err
		}

		if len(matches) == 0 {
			if !create {
				return "", fmt.Errorf("segment %q: %w", segment, ErrNotFound)
			}
			current, err = d.createFolder(ctx, current, segment)
			if err != nil {
				return "", err
			}
			continue
		}
		current = matches[0].Id
	}
	return current, nil
}

// resolveAll resolves the terminal segment of segments to every matching
// entry under its parent folder, supporting multi-delete of duplicate
// names. The parent is resolved without creating anything.
func (d *Drive) resolveAll(ctx context.Context, segments []string) ([]*drive.File, error) {
	parentID, err := d.resolveFolder(ctx, segments[:len(segments)-1], false)
	if err != nil {
		return nil, err
	}
	return d.children(ctx, parentID, segments[len(segments)-1])
}
