// Package refresh recomputes the facts of every saved location on a cron
// schedule and stores them as snapshots.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/database"
	"github.com/zapponejosh/molad-api/internal/logger"
)

// DefaultKeep is how many snapshots are retained per location.
const DefaultKeep = 30

// Refresher stores fresh MoladFacts snapshots for saved locations.
type Refresher struct {
	db       *database.DB
	resolver *calendar.Resolver
	logger   *slog.Logger
	now      func() time.Time
	keep     int
	timeout  time.Duration

	cron *cron.Cron
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

// WithKeep sets how many snapshots are retained per location.
func WithKeep(n int) Option {
	return func(r *Refresher) { r.keep = n }
}

// New creates a refresher. Call Start to run it on a schedule.
func New(db *database.DB, resolver *calendar.Resolver, log *slog.Logger, opts ...Option) *Refresher {
	if log == nil {
		log = slog.Default()
	}
	r := &Refresher{
		db:       db,
		resolver: resolver,
		logger:   log,
		now:      time.Now,
		keep:     DefaultKeep,
		timeout:  time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RefreshLocation computes and stores the facts of one location. A failed
// computation is returned and nothing is stored.
func (r *Refresher) RefreshLocation(ctx context.Context, loc *database.Location) (*database.FactsSnapshot, error) {
	ctx = logger.WithLocation(ctx, loc.Name)

	facts, err := r.resolver.Facts(ctx, r.now(), loc.Calendar())
	if err != nil {
		return nil, fmt.Errorf("compute facts for %s: %w", loc.Name, err)
	}

	snap, err := r.db.SaveSnapshot(ctx, loc.ID, facts)
	if err != nil {
		return nil, fmt.Errorf("save snapshot for %s: %w", loc.Name, err)
	}

	if r.keep > 0 {
		if _, err := r.db.PruneSnapshots(ctx, loc.ID, r.keep); err != nil {
			r.logger.WarnContext(ctx, "prune snapshots failed", slog.Any("error", err))
		}
	}

	return snap, nil
}

// RefreshAll refreshes every saved location and returns how many succeeded.
// Failures are logged and joined into the returned error; they do not stop
// the remaining locations.
func (r *Refresher) RefreshAll(ctx context.Context) (int, error) {
	locations, err := r.db.ListLocations(ctx)
	if err != nil {
		return 0, fmt.Errorf("list locations: %w", err)
	}

	var errs []error
	ok := 0
	for i := range locations {
		loc := &locations[i]
		if _, err := r.RefreshLocation(ctx, loc); err != nil {
			r.logger.ErrorContext(logger.WithLocation(ctx, loc.Name), "refresh failed",
				slog.Int64("location_id", loc.ID),
				slog.Any("error", err),
			)
			errs = append(errs, err)
			continue
		}
		ok++
	}

	r.logger.Info("refresh complete",
		slog.Int("locations", len(locations)),
		slog.Int("refreshed", ok),
		slog.Int("failed", len(errs)),
	)

	return ok, errors.Join(errs...)
}

// Start schedules RefreshAll with a standard cron spec such as "@daily" or
// "0 */6 * * *". Overlapping runs are skipped.
func (r *Refresher) Start(spec string) error {
	if r.cron != nil {
		return errors.New("refresher already started")
	}

	l := cronLogger{r.logger}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	if _, err := c.AddFunc(spec, r.runScheduled); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}

	c.Start()
	r.cron = c
	r.logger.Info("refresher started", slog.String("schedule", spec))
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.cron = nil
	r.logger.Info("refresher stopped")
}

func (r *Refresher) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	// Errors are already logged per location.
	_, _ = r.RefreshAll(ctx)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
