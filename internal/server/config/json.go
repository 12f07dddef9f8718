package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/workshopreg/internal/flagx"
	"github.com/dmitrijs2005/workshopreg/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations may be
// strings such as "5s" or integer nanoseconds. Absent fields keep their
// current value.
type JsonConfig struct {
	EndpointAddrHTTP         string         `json:"endpoint_addr_http"`
	Storage                  string         `json:"storage"`
	UsersFile                string         `json:"users_file"`
	DatabaseDSN              string         `json:"database_dsn"`
	MongoURI                 string         `json:"mongo_uri"`
	MongoDatabase            string         `json:"mongo_database"`
	FirestoreProjectID       string         `json:"firestore_project_id"`
	FirestoreCredentialsJSON string         `json:"firestore_credentials_json"`
	WorkshopsSource          string         `json:"workshops_source"`
	S3RootUser               string         `json:"s3_root_user"`
	S3RootPassword           string         `json:"s3_root_password"`
	S3Region                 string         `json:"s3_region"`
	S3BaseEndpoint           string         `json:"s3_base_endpoint"`
	ListUsersRoute           string         `json:"list_users_route"`
	ShutdownTimeout          timex.Duration `json:"shutdown_timeout"`
	LogBackend               string         `json:"log_backend"`
}

// parseJson loads the file named by -c/-config (or $CONFIG) into config.
// Nothing happens when no file is given. An unreadable file or invalid JSON
// panics: the server must not start on a half-applied configuration.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.Storage, c.Storage)
	setString(&config.UsersFile, c.UsersFile)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.FirestoreProjectID, c.FirestoreProjectID)
	setString(&config.FirestoreCredentialsJSON, c.FirestoreCredentialsJSON)
	setString(&config.WorkshopsSource, c.WorkshopsSource)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.ListUsersRoute, c.ListUsersRoute)
	setString(&config.LogBackend, c.LogBackend)
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
