// Package repomanager opens the storage backend named in the configuration
// and hands out its repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/workshopreg/internal/server/config"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
)

// RepositoryManager owns a storage backend's connections.
type RepositoryManager interface {
	Backend() string
	Users() users.Repository
	Close(ctx context.Context) error
}

// New opens the backend selected by cfg.Storage.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return NewInMemoryRepositoryManager(), nil
	case config.StorageFile:
		m, err := NewFileRepositoryManager(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StoragePostgres:
		m, err := NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorageMongo:
		m, err := NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorageFirestore:
		m, err := NewFirestoreRepositoryManager(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsJSON)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
