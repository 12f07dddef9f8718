package services

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/workshopreg/internal/logging"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
)

var errBackend = errors.New("backend down")

func discardLogger() logging.Logger {
	return logging.NewJSONSlogLogger(io.Discard)
}

// brokenRepo fails every call that is not overridden by the embedded repository.
type brokenRepo struct {
	users.Repository
	createErr error
	findErr   error
}

func (r *brokenRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.Repository.FindByEmail(ctx, email)
}

func (r *brokenRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.Repository.Create(ctx, u)
}

func (r *brokenRepo) List(ctx context.Context) ([]*models.User, error) {
	return nil, errBackend
}

func (r *brokenRepo) ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error) {
	return nil, errBackend
}

func (r *brokenRepo) UpdateAccepted(ctx context.Context, id string, accepted *bool) error {
	return errBackend
}

func (r *brokenRepo) ResetAccepted(ctx context.Context) (int64, error) {
	return 0, errBackend
}
