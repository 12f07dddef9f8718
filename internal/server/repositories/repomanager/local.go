package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/workshopreg/internal/server/config"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
)

type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) Backend() string         { return config.StorageMemory }
func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }
func (m *InMemoryRepositoryManager) Close(context.Context) error {
	return nil
}

type FileRepositoryManager struct {
	users *users.FileRepository
}

func NewFileRepositoryManager(path string) (*FileRepositoryManager, error) {
	repo, err := users.NewFileRepository(path)
	if err != nil {
		return nil, fmt.Errorf("user repo creation error: %w", err)
	}
	return &FileRepositoryManager{users: repo}, nil
}

func (m *FileRepositoryManager) Backend() string         { return config.StorageFile }
func (m *FileRepositoryManager) Users() users.Repository { return m.users }
func (m *FileRepositoryManager) Close(context.Context) error {
	return nil
}
