package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"filedepot/internal/audit"
	"filedepot/internal/storage"
	storagemock "filedepot/internal/storage/mock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(provider storage.Provider, recorder *audit.Recorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, provider, recorder)
	return router
}

func TestHandleAddFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.AddLocator = "https://example.com/loc"
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/files/docs/report.txt", strings.NewReader("hello"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response FileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Equal(t, "https://example.com/loc", response.Locator)

		require.Len(t, mockProvider.AddCalls, 1)
		assert.Equal(t, "docs/report.txt", mockProvider.AddCalls[0].Path)
		assert.Equal(t, "hello", mockProvider.AddCalls[0].Content)
		assert.False(t, mockProvider.AddCalls[0].Overwrite)
	})

	t.Run("overwrite flag", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/files/docs/report.txt?overwrite=true", strings.NewReader("x"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, mockProvider.AddCalls, 1)
		assert.True(t, mockProvider.AddCalls[0].Overwrite)
	})

	t.Run("conflict on existing entry", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.AddError = fmt.Errorf("entry exists: %w", storage.ErrAlreadyExists)
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/files/docs/report.txt", strings.NewReader("x"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bad request on invalid path", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.AddError = fmt.Errorf("empty path: %w", storage.ErrInvalidArgument)
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/files/%20", strings.NewReader("x"))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleReadFile(t *testing.T) {
	t.Run("streams content", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.ReadContent = "file body"
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/files/docs/report.txt", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "file body", w.Body.String())
		assert.Equal(t, []string{"docs/report.txt"}, mockProvider.ReadCalls)
	})

	t.Run("not found", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.ReadError = fmt.Errorf("no entry: %w", storage.ErrNotFound)
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/files/ghost.txt", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("backend failure maps to bad gateway", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.ReadError = fmt.Errorf("dial tcp: %w", storage.ErrUnavailable)
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/files/x.txt", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHandleDeleteFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/files/docs/report.txt", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"docs/report.txt"}, mockProvider.DeleteCalls)
	})

	t.Run("not found", func(t *testing.T) {
		mockProvider := storagemock.NewMockProvider()
		mockProvider.DeleteError = fmt.Errorf("no entry: %w", storage.ErrNotFound)
		router := newTestRouter(mockProvider, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/files/ghost.txt", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleFileExists(t *testing.T) {
	mockProvider := storagemock.NewMockProvider()
	mockProvider.ExistsResult = true
	router := newTestRouter(mockProvider, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("HEAD", "/api/files/present.txt", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	mockProvider.ExistsResult = false
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("HEAD", "/api/files/absent.txt", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListFolder(t *testing.T) {
	mockProvider := storagemock.NewMockProvider()
	mockProvider.ListItems = []storage.Item{
		{Name: "a.txt", Kind: storage.KindFile},
		{Name: "sub", Kind: storage.KindFolder},
	}
	router := newTestRouter(mockProvider, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/list/docs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	require.Len(t, response.Items, 2)
	assert.Equal(t, storage.KindFolder, response.Items[1].Kind)
}

func TestMutationsAreAudited(t *testing.T) {
	recorder, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer recorder.Close()

	mockProvider := storagemock.NewMockProvider()
	mockProvider.AddLocator = "loc-1"
	router := newTestRouter(mockProvider, recorder)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/files/docs/report.txt", strings.NewReader("x"))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/files/docs/report.txt", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/audit?limit=10", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response AuditResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Entries, 2)
	// Newest first.
	assert.Equal(t, "delete", response.Entries[0].Op)
	assert.Equal(t, "add", response.Entries[1].Op)
	assert.Equal(t, "loc-1", response.Entries[1].Locator)
}
