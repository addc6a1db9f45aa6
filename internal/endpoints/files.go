package endpoints

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"filedepot/internal/audit"
	"filedepot/internal/config"
	"filedepot/internal/storage"

	"github.com/gin-gonic/gin"
)

// FileResponse is the envelope for mutating file operations.
type FileResponse struct {
	Success bool   `json:"success"`
	Locator string `json:"locator,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListResponse carries a container listing.
type ListResponse struct {
	Success bool           `json:"success"`
	Items   []storage.Item `json:"items"`
	Error   string         `json:"error,omitempty"`
}

// AuditResponse carries recent audit entries.
type AuditResponse struct {
	Success bool          `json:"success"`
	Entries []audit.Entry `json:"entries"`
	Error   string        `json:"error,omitempty"`
}

// statusForError maps a storage error to an HTTP status code.
func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logicalPath extracts the logical path from the wildcard route parameter.
func logicalPath(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("path"), "/")
}

// HandleAddFile writes the request body to the given path. Set the
// overwrite query parameter to replace an existing entry.
func HandleAddFile(provider storage.Provider, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := logicalPath(c)
		overwrite := c.Query("overwrite") == "true"

		locator, err := provider.Add(c.Request.Context(), path, c.Request.Body, overwrite)
		if err != nil {
			c.JSON(statusForError(err), FileResponse{Success: false, Error: err.Error()})
			return
		}

		if recorder != nil {
			if err := recorder.Record(c.Request.Context(), "add", config.StorageBackend, path, locator); err != nil {
				slog.Warn("Failed to record audit entry", "op", "add", "path", path, "error", err)
			}
		}

		c.JSON(http.StatusCreated, FileResponse{Success: true, Locator: locator})
	}
}

// HandleReadFile streams the entry's content to the client.
func HandleReadFile(provider storage.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := logicalPath(c)

		stream, err := provider.Read(c.Request.Context(), path)
		if err != nil {
			c.JSON(statusForError(err), FileResponse{Success: false, Error: err.Error()})
			return
		}
		defer stream.Close()

		c.Status(http.StatusOK)
		c.Header("Content-Type", "application/octet-stream")
		if _, err := io.Copy(c.Writer, stream); err != nil {
			// Headers are gone; all we can do is log and drop the
			// connection.
			slog.Error("Failed to stream file", "path", path, "error", err)
		}
	}
}

// HandleDeleteFile deletes the entry at the given path, recursively for
// containers.
func HandleDeleteFile(provider storage.Provider, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := logicalPath(c)

		if err := provider.Delete(c.Request.Context(), path); err != nil {
			c.JSON(statusForError(err), FileResponse{Success: false, Error: err.Error()})
			return
		}

		if recorder != nil {
			if err := recorder.Record(c.Request.Context(), "delete", config.StorageBackend, path, ""); err != nil {
				slog.Warn("Failed to record audit entry", "op", "delete", "path", path, "error", err)
			}
		}

		c.JSON(http.StatusOK, FileResponse{Success: true})
	}
}

// HandleFileExists answers HEAD requests: 200 when a file is present, 404
// when not.
func HandleFileExists(provider storage.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := logicalPath(c)

		exists, err := provider.Exists(c.Request.Context(), path)
		if err != nil {
			c.Status(statusForError(err))
			return
		}
		if !exists {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	}
}

// HandleListFolder returns the immediate children of the container at the
// given path.
func HandleListFolder(provider storage.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := logicalPath(c)

		items, err := provider.List(c.Request.Context(), path)
		if err != nil {
			c.JSON(statusForError(err), ListResponse{Success: false, Error: err.Error()})
			return
		}
		if items == nil {
			items = []storage.Item{}
		}
		c.JSON(http.StatusOK, ListResponse{Success: true, Items: items})
	}
}

// HandleAuditLog returns the most recent recorded operations.
func HandleAuditLog(recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, AuditResponse{Success: false, Error: "limit must be a positive integer"})
				return
			}
			limit = parsed
		}

		entries, err := recorder.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuditResponse{Success: false, Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, AuditResponse{Success: true, Entries: entries})
	}
}
