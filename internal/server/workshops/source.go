// Package workshops loads the workshop catalogue and derives each
// workshop's lifecycle status from the current time.
package workshops

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/config"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
)

//go:embed data/workshops.json
var defaultCatalogue []byte

// Source returns the workshop catalogue. Failures are *common.DataLoadError.
type Source interface {
	Load(ctx context.Context) ([]models.Workshop, error)
}

// NewSource picks the source named by cfg.WorkshopsSource: empty for the
// built-in catalogue, s3://bucket/key for an object, anything else is a path.
func NewSource(cfg *config.Config) (Source, error) {
	src := cfg.WorkshopsSource
	switch {
	case src == "":
		return EmbeddedSource{}, nil
	case strings.HasPrefix(src, s3Scheme):
		return NewS3Source(cfg)
	default:
		return FileSource{Path: src}, nil
	}
}

// EmbeddedSource serves the catalogue compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(ctx context.Context) ([]models.Workshop, error) {
	return decode(defaultCatalogue)
}

// FileSource reads a JSON array from disk on every call, so edits show up
// without a restart.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]models.Workshop, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &common.DataLoadError{Err: err}
	}
	return decode(b)
}

func decode(b []byte) ([]models.Workshop, error) {
	var list []models.Workshop
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, &common.DataLoadError{Err: fmt.Errorf("decode catalogue: %w", err)}
	}
	return list, nil
}
