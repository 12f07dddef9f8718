package workshops

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
)

var startLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05"}

// Start parses the workshop's date and time as a UTC instant.
func Start(w models.Workshop) (time.Time, error) {
	value := w.Date + " " + w.Time
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("workshop %s: invalid date/time %q", w.Label(), value)
}

// StatusAt classifies now against the window [start, start+WorkshopDuration).
func StatusAt(start, now time.Time) models.WorkshopStatus {
	end := start.Add(common.WorkshopDuration)
	switch {
	case now.Before(start):
		return models.WorkshopUpcoming
	case now.Before(end):
		return models.WorkshopRunning
	default:
		return models.WorkshopPassed
	}
}

// Resolve attaches a status to every workshop, keeping the input order.
// One unparseable record fails the whole listing.
func Resolve(list []models.Workshop, now time.Time) ([]models.WorkshopView, error) {
	out := make([]models.WorkshopView, 0, len(list))
	for _, w := range list {
		start, err := Start(w)
		if err != nil {
			return nil, &common.DataLoadError{Err: err}
		}
		out = append(out, models.WorkshopView{Workshop: w, Status: StatusAt(start, now)})
	}
	return out, nil
}
