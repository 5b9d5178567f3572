package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"dublinbikes-api/internal/models"
)

// FileStore keeps the collection in memory after a one-off load from a
// data file. Writes are process-local and lost on restart.
type FileStore struct {
	mu       sync.RWMutex
	stations map[int]models.Station
}

// LoadStationsFile decodes a JSON array of station records.
func LoadStationsFile(path string) ([]models.Station, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}

	var records []models.StationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode stations file %s: %w", path, err)
	}

	stations := make([]models.Station, 0, len(records))
	for _, rec := range records {
		stations = append(stations, rec.ToStation())
	}
	return stations, nil
}

// NewFileStore loads path into a new in-memory store.
func NewFileStore(path string) (*FileStore, error) {
	stations, err := LoadStationsFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(stations)
}

// NewMemoryStore builds a store from stations; station numbers must be unique.
func NewMemoryStore(stations []models.Station) (*FileStore, error) {
	fs := &FileStore{stations: make(map[int]models.Station, len(stations))}
	for _, s := range stations {
		if _, exists := fs.stations[s.Number]; exists {
			return nil, fmt.Errorf("station %d: %w", s.Number, ErrDuplicateStation)
		}
		s.Normalize()
		fs.stations[s.Number] = s
	}
	return fs, nil
}

// List returns a snapshot copy, so callers never observe a write mid-scan.
func (fs *FileStore) List(ctx context.Context) ([]models.Station, error) {
	fs.mu.RLock()
	out := make([]models.Station, 0, len(fs.stations))
	for _, s := range fs.stations {
		out = append(out, s)
	}
	fs.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (fs *FileStore) Get(ctx context.Context, number int) (models.Station, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	s, ok := fs.stations[number]
	return s, ok, nil
}

func (fs *FileStore) Create(ctx context.Context, station models.Station) error {
	station.Normalize()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.stations[station.Number]; exists {
		return fmt.Errorf("station %d: %w", station.Number, ErrDuplicateStation)
	}
	fs.stations[station.Number] = station
	return nil
}

func (fs *FileStore) Update(ctx context.Context, number int, station models.Station) (bool, error) {
	station.Number = number
	station.Normalize()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.stations[number]; !exists {
		return false, nil
	}
	fs.stations[number] = station
	return true, nil
}

func (fs *FileStore) Delete(ctx context.Context, number int) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.stations[number]; !exists {
		return false, nil
	}
	delete(fs.stations, number)
	return true, nil
}

func (fs *FileStore) Summary(ctx context.Context) (models.Summary, error) {
	stations, err := fs.List(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summarize(stations), nil
}

// Seed replaces or adds every given station.
func (fs *FileStore) Seed(ctx context.Context, stations []models.Station) (int, error) {
	stations = dedupeByNumber(stations)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, s := range stations {
		s.Normalize()
		fs.stations[s.Number] = s
	}
	return len(stations), nil
}

// Mutate holds the write lock for the whole pass.
func (fs *FileStore) Mutate(ctx context.Context, fn func(*models.Station)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	numbers := make([]int, 0, len(fs.stations))
	for n := range fs.stations {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		s := fs.stations[n]
		fn(&s)
		s.Number = n
		s.Normalize()
		fs.stations[n] = s
	}
	return len(numbers), nil
}
