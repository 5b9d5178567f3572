package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"dublinbikes-api/internal/cache"
	"dublinbikes-api/internal/database"
	"dublinbikes-api/internal/models"
	"dublinbikes-api/internal/storage"

	"go.uber.org/zap"
)

func manyStations(n int) []models.Station {
	stations := make([]models.Station, 0, n)
	for i := 1; i <= n; i++ {
		stations = append(stations, models.Station{
			Number:                i,
			Name:                  fmt.Sprintf("Station %d", i),
			Address:               fmt.Sprintf("%d Main Street", i),
			BikeStands:            20,
			AvailableBikes:        10,
			Status:                models.StatusOpen,
			LastUpdateEpochMillis: 1,
		})
	}
	return stations
}

// mutationBackends returns a file store and a sqlite document store seeded with stations.
func mutationBackends(t *testing.T, stations []models.Station) map[string]storage.Backend {
	t.Helper()

	fileStore, err := storage.NewMemoryStore(stations)
	if err != nil {
		t.Fatalf("Failed to build memory store: %v", err)
	}

	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	docStore := storage.NewDocStore(db)
	ctx := context.Background()
	if err := docStore.CreateSchema(ctx); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if _, err := docStore.Seed(ctx, stations); err != nil {
		t.Fatalf("Failed to seed doc store: %v", err)
	}

	return map[string]storage.Backend{"file": fileStore, "doc": docStore}
}

func TestMutateKeepsUpdateIssuedMidPass(t *testing.T) {
	for name, backend := range mutationBackends(t, referenceStations()) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewStationService(name, backend, cache.New(), zap.NewNop())

			renamed := models.Station{Name: "Renamed", Address: "Alpha Road", BikeStands: 30, AvailableBikes: 25, Status: models.StatusOpen, LastUpdateEpochMillis: 5}
			type result struct {
				ok  bool
				err error
			}
			updated := make(chan result, 1)
			var once sync.Once

			_, err := svc.Mutate(ctx, func(s *models.Station) {
				once.Do(func() {
					go func() {
						ok, err := svc.UpdateStation(ctx, 1, renamed)
						updated <- result{ok, err}
					}()
					// an unsynchronized update would complete here and then be overwritten
					select {
					case r := <-updated:
						updated <- r
					case <-time.After(50 * time.Millisecond):
					}
				})
				s.AvailableBikes = 0
			})
			if err != nil {
				t.Fatalf("Mutate failed: %v", err)
			}

			r := <-updated
			if r.err != nil || !r.ok {
				t.Fatalf("Update failed: ok=%v err=%v", r.ok, r.err)
			}

			got, ok, err := svc.GetStation(ctx, 1)
			if err != nil || !ok {
				t.Fatalf("Get failed: ok=%v err=%v", ok, err)
			}
			if got.Name != "Renamed" || got.BikeStands != 30 || got.AvailableBikes != 25 {
				t.Errorf("Acknowledged update was lost: %+v", got)
			}

			other, _, _ := svc.GetStation(ctx, 2)
			if other.AvailableBikes != 0 {
				t.Errorf("Expected the pass to reach station 2, got %d bikes", other.AvailableBikes)
			}
		})
	}
}

func TestTickConcurrentWithWrites(t *testing.T) {
	const n = 20

	for name, backend := range mutationBackends(t, manyStations(n)) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewStationService(name, backend, cache.New(), zap.NewNop())
			feed := NewLiveFeed([]*StationService{svc}, zap.NewNop(), WithRand(rand.New(rand.NewPCG(11, 12))))

			done := make(chan struct{})
			var wg sync.WaitGroup
			var stopOnce sync.Once
			stop := func() {
				stopOnce.Do(func() {
					close(done)
					wg.Wait()
				})
			}
			defer stop()

			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					if err := feed.Tick(ctx); err != nil {
						t.Errorf("Tick failed: %v", err)
						return
					}
				}
			}()

			// even numbers are renamed, odd numbers above 10 are deleted
			for i := 1; i <= n; i++ {
				switch {
				case i%2 == 0:
					ok, err := svc.UpdateStation(ctx, i, models.Station{
						Name:           fmt.Sprintf("Edited %d", i),
						BikeStands:     50,
						AvailableBikes: 40,
						Status:         models.StatusOpen,
					})
					if err != nil || !ok {
						t.Fatalf("Update %d failed: ok=%v err=%v", i, ok, err)
					}
				case i > 10:
					ok, err := svc.DeleteStation(ctx, i)
					if err != nil || !ok {
						t.Fatalf("Delete %d failed: ok=%v err=%v", i, ok, err)
					}
				}
			}

			stop()

			for i := 1; i <= n; i++ {
				got, ok, err := svc.GetStation(ctx, i)
				if err != nil {
					t.Fatalf("Get %d failed: %v", i, err)
				}

				switch {
				case i%2 == 0:
					if !ok || got.Name != fmt.Sprintf("Edited %d", i) || got.BikeStands != 50 {
						t.Errorf("Station %d lost its acknowledged update: ok=%v %+v", i, ok, got)
					}
				case i > 10:
					if ok {
						t.Errorf("Deleted station %d came back", i)
					}
				default:
					if !ok || got.BikeStands != 20 {
						t.Errorf("Untouched station %d changed capacity: ok=%v %+v", i, ok, got)
					}
				}
				if ok && (got.AvailableBikes < 0 || got.AvailableBikes > got.BikeStands) {
					t.Errorf("Station %d out of bounds: %+v", i, got)
				}
			}
		})
	}
}
