package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/logging"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
)

type AcceptanceService struct {
	repo   users.Repository
	logger logging.Logger
	mu     *sync.Mutex
}

func NewAcceptanceService(repo users.Repository, writes *sync.Mutex, logger logging.Logger) *AcceptanceService {
	if writes == nil {
		writes = &sync.Mutex{}
	}
	return &AcceptanceService{repo: repo, logger: logger.With("module", "acceptance"), mu: writes}
}

// SetAccepted stores value as the acceptance decision of record id. value
// comes straight from the decoded request and must be a bool.
func (s *AcceptanceService) SetAccepted(ctx context.Context, id string, value any) (bool, error) {
	accepted, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: accepted is %T", common.ErrorInvalidInput, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.UpdateAccepted(ctx, id, &accepted); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("%w: error updating user: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "Acceptance updated", "id", id, "accepted", accepted)
	return accepted, nil
}

// ResetAll clears every decision and returns the number of records touched.
func (s *AcceptanceService) ResetAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repo.ResetAccepted(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: error resetting users: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "Acceptance reset", "count", n)
	return n, nil
}

func (s *AcceptanceService) ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error) {
	list, err := s.repo.ListByAccepted(ctx, accepted)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing users: %w", common.ErrorInternal, err)
	}
	return list, nil
}

func (s *AcceptanceService) ListAll(ctx context.Context) ([]*models.User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing users: %w", common.ErrorInternal, err)
	}
	return list, nil
}
