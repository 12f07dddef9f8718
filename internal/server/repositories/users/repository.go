// Package users holds the storage adapter for participant records and its
// interchangeable backends. Every backend honours the same contract, so the
// services above never know which one is active.
package users

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/workshopreg/internal/server/models"
)

// Repository is the storage contract for participant records.
//
// Lookups that find nothing return common.ErrorNotFound. Create returns
// common.ErrorAlreadyExists when the backend itself detects a duplicate email.
type Repository interface {
	List(ctx context.Context) ([]*models.User, error)
	ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateAccepted(ctx context.Context, id string, accepted *bool) error
	ResetAccepted(ctx context.Context) (int64, error)
}

// nextSequentialID returns max(existing numeric ids)+1, or "1" for an empty set.
// Ids that are not decimal numbers are skipped.
func nextSequentialID(list []*models.User) string {
	var max int64
	for _, u := range list {
		n, err := strconv.ParseInt(u.ID, 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

func acceptedEquals(u *models.User, accepted bool) bool {
	return u.Accepted != nil && *u.Accepted == accepted
}

func cloneAll(list []*models.User) []*models.User {
	out := make([]*models.User, 0, len(list))
	for _, u := range list {
		out = append(out, u.Clone())
	}
	return out
}
