package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"dublinbikes-api/internal/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultLiveFeedSchedule = "@every 15s"
	// openProbability is the chance a station with stands comes out OPEN on a tick.
	openProbability = 0.9
	tickTimeout     = 10 * time.Second
)

// LiveFeed simulates live availability by perturbing every station on a schedule.
// It is a simulation, not a telemetry ingestion path.
type LiveFeed struct {
	targets []*StationService
	logr    *zap.Logger
	now     func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	cron *cron.Cron
}

type LiveFeedOption func(*LiveFeed)

// WithRand makes the feed deterministic, for tests.
func WithRand(rng *rand.Rand) LiveFeedOption {
	return func(f *LiveFeed) { f.rng = rng }
}

func WithClock(now func() time.Time) LiveFeedOption {
	return func(f *LiveFeed) { f.now = now }
}

func NewLiveFeed(targets []*StationService, logr *zap.Logger, opts ...LiveFeedOption) *LiveFeed {
	f := &LiveFeed{
		targets: targets,
		logr:    logr.Named("live_feed"),
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start schedules Tick with a cron spec such as "@every 15s".
// Overlapping ticks are skipped rather than queued.
func (f *LiveFeed) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultLiveFeedSchedule
	}

	logger := cronLogger{f.logr.Sugar()}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()
		// failures are isolated to this tick; the next one runs as scheduled
		_ = f.Tick(ctx)
	}); err != nil {
		return fmt.Errorf("schedule live feed %q: %w", schedule, err)
	}

	f.cron = c
	c.Start()
	f.logr.Info("live feed started", zap.String("schedule", schedule), zap.Int("targets", len(f.targets)))
	return nil
}

// Stop prevents further ticks and waits for a running one to finish,
// or for ctx to expire.
func (f *LiveFeed) Stop(ctx context.Context) {
	if f.cron == nil {
		return
	}
	done := f.cron.Stop()
	select {
	case <-done.Done():
		f.logr.Info("live feed stopped")
	case <-ctx.Done():
		f.logr.Warn("live feed stop timed out", zap.Error(ctx.Err()))
	}
}

// Tick runs one mutation pass over every target. Errors are logged and
// returned; one failing target does not stop the others.
func (f *LiveFeed) Tick(ctx context.Context) error {
	runID := uuid.NewString()
	start := f.now()
	var errs []error

	for _, target := range f.targets {
		now := f.now()
		n, err := target.Mutate(ctx, func(s *models.Station) {
			f.rngMu.Lock()
			defer f.rngMu.Unlock()
			Perturb(s, f.rng, now)
		})
		if err != nil {
			f.logr.Error("live feed tick failed",
				zap.String("run_id", runID),
				zap.String("backend", target.Namespace()),
				zap.Int("mutated", n),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", target.Namespace(), err))
			continue
		}

		f.logr.Debug("live feed tick",
			zap.String("run_id", runID),
			zap.String("backend", target.Namespace()),
			zap.Int("mutated", n),
			zap.Duration("took", f.now().Sub(start)))
	}

	return errors.Join(errs...)
}

// Perturb moves availableBikes by a random delta in [-max(1, stands/4), +max(1, stands/4)],
// clamps it to [0, stands], stamps now and redraws the status.
// A station without stands is always CLOSED.
func Perturb(s *models.Station, rng *rand.Rand, now time.Time) {
	maxChange := max(1, s.BikeStands/4)
	delta := rng.IntN(2*maxChange+1) - maxChange

	s.AvailableBikes = min(max(s.AvailableBikes+delta, 0), max(s.BikeStands, 0))
	s.AvailableBikeStands = s.BikeStands - s.AvailableBikes
	s.LastUpdateEpochMillis = now.UnixMilli()

	switch {
	case s.BikeStands <= 0:
		s.Status = models.StatusClosed
	case rng.Float64() < openProbability:
		s.Status = models.StatusOpen
	default:
		s.Status = models.StatusClosed
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
