package storage

import (
	"context"
	"errors"

	"dublinbikes-api/internal/models"
)

// ErrDuplicateStation is returned by Create when the station number is taken.
var ErrDuplicateStation = errors.New("station already exists")

// Backend is the storage capability shared by the file and document stores.
// Absence is reported through the bool results, never as an error.
//
// List returns the whole collection ordered by station number; filtering,
// search, sort and paging happen in the query executor, not in the store.
type Backend interface {
	List(ctx context.Context) ([]models.Station, error)
	Get(ctx context.Context, number int) (models.Station, bool, error)
	Create(ctx context.Context, station models.Station) error
	Update(ctx context.Context, number int, station models.Station) (bool, error)
	Delete(ctx context.Context, number int) (bool, error)
	Summary(ctx context.Context) (models.Summary, error)
	// Seed upserts every station and returns how many were written.
	// Repeated numbers in one call resolve to the last occurrence.
	Seed(ctx context.Context, stations []models.Station) (int, error)
	// Mutate applies fn to every station in number order as one atomic
	// read-modify-write. Writes issued while a pass runs are applied either
	// before or after it, never lost. Station numbers cannot be changed by fn.
	Mutate(ctx context.Context, fn func(*models.Station)) (int, error)
}

// dedupeByNumber keeps the last occurrence of every station number, in order
// of first appearance.
func dedupeByNumber(stations []models.Station) []models.Station {
	index := make(map[int]int, len(stations))
	out := make([]models.Station, 0, len(stations))
	for _, s := range stations {
		if i, ok := index[s.Number]; ok {
			out[i] = s
			continue
		}
		index[s.Number] = len(out)
		out = append(out, s)
	}
	return out
}
