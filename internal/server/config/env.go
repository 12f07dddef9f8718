package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the environment. A .env file in the working
// directory is loaded first when present; variables already set win over it.
//
// PORT is the only variable that maps to a partial value: it becomes ":PORT".
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if port := os.Getenv("PORT"); port != "" {
		config.EndpointAddrHTTP = ":" + port
	}

	setString(&config.Storage, os.Getenv("STORAGE"))
	setString(&config.UsersFile, os.Getenv("USERS_FILE"))
	setString(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&config.MongoURI, os.Getenv("MONGO_URI"))
	setString(&config.MongoDatabase, os.Getenv("MONGO_DATABASE"))
	setString(&config.FirestoreProjectID, os.Getenv("FIREBASE_PROJECT_ID"))
	setString(&config.FirestoreCredentialsJSON, os.Getenv("FIREBASE_SERVICE_ACCOUNT"))
	setString(&config.WorkshopsSource, os.Getenv("WORKSHOPS_SOURCE"))
	setString(&config.S3RootUser, os.Getenv("S3_ROOT_USER"))
	setString(&config.S3RootPassword, os.Getenv("S3_ROOT_PASSWORD"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))
	setString(&config.ListUsersRoute, os.Getenv("LIST_USERS_ROUTE"))
	setString(&config.LogBackend, os.Getenv("LOG_BACKEND"))

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.ShutdownTimeout = d
		}
	}
}
