package config

import (
	"os"
	"strconv"
)

var (
	// Storage backend selection: "local", "object" or "gdrive"
	StorageBackend = getEnvWithDefault("STORAGE_BACKEND", "local")

	// Local disk configuration
	LocalRoot = getEnvWithDefault("LOCAL_STORAGE_ROOT", "./data")

	// Object store configuration. The access and secret keys are fetched
	// through the secret provider under these names rather than read
	// directly, so a vault-backed provider can supply them.
	ObjectEndpoint        = os.Getenv("OBJECT_ENDPOINT")
	ObjectBaseURL         = os.Getenv("OBJECT_BASE_URL")
	ObjectUseSSL          = getEnvWithDefault("OBJECT_USE_SSL", "true") == "true"
	ObjectAccessKeySecret = getEnvWithDefault("OBJECT_ACCESS_KEY_SECRET", "object-access-key")
	ObjectSecretKeySecret = getEnvWithDefault("OBJECT_SECRET_KEY_SECRET", "object-secret-key")

	// Google Drive configuration
	DriveScopes      = []string{"https://www.googleapis.com/auth/drive"}
	DriveTokenSecret = getEnvWithDefault("DRIVE_TOKEN_SECRET", "")

	// DeleteBatchSize bounds concurrent deletes when one path resolves to
	// many entries on an ID-addressed backend
	DeleteBatchSize = getEnvInt("DELETE_BATCH_SIZE", 50)

	// Secret cache settings
	RedisHost       = getEnvWithDefault("REDIS_HOST", "")
	RedisPort       = getEnvInt("REDIS_PORT", 6379)
	SecretCacheTTL  = getEnvInt("SECRET_CACHE_TTL_MINUTES", 120)
	SecretCachePref = getEnvWithDefault("SECRET_CACHE_PREFIX", "filedepot:secret")

	// Audit log
	AuditDBPath = getEnvWithDefault("AUDIT_DB_PATH", "filedepot-audit.db")
)

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
