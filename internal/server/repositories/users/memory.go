package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
)

// MemoryRepository keeps records in process memory. Each instance is
// independent; nothing is shared between instances.
type MemoryRepository struct {
	mu    sync.RWMutex
	users []*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.users), nil
}

func (r *MemoryRepository) ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0)
	for _, u := range r.users {
		if acceptedEquals(u, accepted) {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.users[i].Clone(), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	stored := user.Clone()
	stored.ID = nextSequentialID(r.users)
	r.users = append(r.users, stored)

	return stored.Clone(), nil
}

func (r *MemoryRepository) UpdateAccepted(ctx context.Context, id string, accepted *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	r.users[i].Accepted = copyBool(accepted)
	return nil
}

func (r *MemoryRepository) ResetAccepted(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		u.Accepted = nil
	}
	return int64(len(r.users)), nil
}

func (r *MemoryRepository) indexOf(id string) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func copyBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
