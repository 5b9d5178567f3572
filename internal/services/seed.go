package services

import (
	"context"
	"fmt"

	"dublinbikes-api/internal/storage"

	"go.uber.org/zap"
)

// SeedService imports the stations data file into the document backend.
type SeedService struct {
	path   string
	target *StationService
	logr   *zap.Logger
}

func NewSeedService(path string, target *StationService, logr *zap.Logger) *SeedService {
	return &SeedService{path: path, target: target, logr: logr}
}

// SeedFromFile upserts every record of the data file and returns the count.
func (s *SeedService) SeedFromFile(ctx context.Context) (int, error) {
	stations, err := storage.LoadStationsFile(s.path)
	if err != nil {
		return 0, err
	}

	n, err := s.target.Seed(ctx, stations)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", s.target.Namespace(), err)
	}

	s.logr.Info("document store seeded",
		zap.String("file", s.path),
		zap.String("backend", s.target.Namespace()),
		zap.Int("count", n))
	return n, nil
}
