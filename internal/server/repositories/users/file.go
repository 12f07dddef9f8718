package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/filex"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/gofrs/flock"
)

const fileLockRetryDelay = 20 * time.Millisecond

// FileRepository stores all records as one JSON array on disk.
//
// Every call reads the file, and writes replace it through a temp file and
// rename. A sibling ".lock" file guards against other processes using the
// same path; the mutex serialises goroutines of this one.
type FileRepository struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	return &FileRepository{path: path, lock: flock.New(path + ".lock")}, nil
}

func (r *FileRepository) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	err := r.read(ctx, func(list []*models.User) {
		out = list
	})
	return out, err
}

func (r *FileRepository) ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error) {
	out := make([]*models.User, 0)
	err := r.read(ctx, func(list []*models.User) {
		for _, u := range list {
			if acceptedEquals(u, accepted) {
				out = append(out, u)
			}
		}
	})
	return out, err
}

func (r *FileRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var found *models.User
	err := r.read(ctx, func(list []*models.User) {
		for _, u := range list {
			if u.Email == email {
				found = u
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var found *models.User
	err := r.read(ctx, func(list []*models.User) {
		for _, u := range list {
			if u.ID == id {
				found = u
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *FileRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var stored *models.User
	err := r.update(ctx, func(list []*models.User) ([]*models.User, error) {
		for _, u := range list {
			if u.Email == user.Email {
				return nil, common.ErrorAlreadyExists
			}
		}
		stored = user.Clone()
		stored.ID = nextSequentialID(list)
		return append(list, stored), nil
	})
	if err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (r *FileRepository) UpdateAccepted(ctx context.Context, id string, accepted *bool) error {
	return r.update(ctx, func(list []*models.User) ([]*models.User, error) {
		for _, u := range list {
			if u.ID == id {
				u.Accepted = copyBool(accepted)
				return list, nil
			}
		}
		return nil, common.ErrorNotFound
	})
}

func (r *FileRepository) ResetAccepted(ctx context.Context) (int64, error) {
	var n int64
	err := r.update(ctx, func(list []*models.User) ([]*models.User, error) {
		for _, u := range list {
			u.Accepted = nil
		}
		n = int64(len(list))
		return list, nil
	})
	return n, err
}

func (r *FileRepository) read(ctx context.Context, fn func([]*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lock.TryRLockContext(ctx, fileLockRetryDelay); err != nil {
		return fmt.Errorf("file lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	list, err := r.load()
	if err != nil {
		return err
	}
	fn(list)
	return nil
}

// update runs fn on the current contents and persists the returned list.
// When fn fails the file is left untouched.
func (r *FileRepository) update(ctx context.Context, fn func([]*models.User) ([]*models.User, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lock.TryLockContext(ctx, fileLockRetryDelay); err != nil {
		return fmt.Errorf("file lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	list, err := r.load()
	if err != nil {
		return err
	}

	list, err = fn(list)
	if err != nil {
		return err
	}

	return r.save(list)
}

func (r *FileRepository) load() ([]*models.User, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*models.User{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	list := []*models.User{}
	if len(b) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return list, nil
}

func (r *FileRepository) save(list []*models.User) error {
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	return filex.WriteAtomic(r.path, b, 0o640)
}
