package endpoints

import (
	"net/http"

	"filedepot/internal/audit"
	"filedepot/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers all API routes on the router. recorder may be nil
// when audit logging is disabled; the audit endpoint is then absent.
func SetupRoutes(router *gin.Engine, provider storage.Provider, recorder *audit.Recorder) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.PUT("/files/*path", HandleAddFile(provider, recorder))
		api.GET("/files/*path", HandleReadFile(provider))
		api.HEAD("/files/*path", HandleFileExists(provider))
		api.DELETE("/files/*path", HandleDeleteFile(provider, recorder))
		api.GET("/list/*path", HandleListFolder(provider))

		if recorder != nil {
			api.GET("/audit", HandleAuditLog(recorder))
		}
	}
}
