package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/logging"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/workshops"
)

type WorkshopService struct {
	source workshops.Source
	logger logging.Logger
	now    func() time.Time
}

func NewWorkshopService(source workshops.Source, logger logging.Logger) *WorkshopService {
	return &WorkshopService{source: source, logger: logger.With("module", "workshops"), now: time.Now}
}

// List loads the catalogue and stamps each entry with its status at the
// current instant. Failures are *common.DataLoadError.
func (s *WorkshopService) List(ctx context.Context) ([]models.WorkshopView, error) {
	list, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return workshops.Resolve(list, s.now())
}
