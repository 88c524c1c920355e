// internal/app/system/workers/loginpurge.go
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DefaultPurgeSchedule runs the purge daily at 03:15 server time.
const DefaultPurgeSchedule = "15 3 * * *"

// LoginPurger deletes login records older than a cutoff.
type LoginPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginPurge is a background worker that drops login records past their
// retention on a cron schedule.
type LoginPurge struct {
	store     LoginPurger
	log       *zap.Logger
	schedule  string
	retention time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

// NewLoginPurge creates the worker. schedule is a standard five-field cron
// expression; an empty schedule uses DefaultPurgeSchedule.
func NewLoginPurge(store LoginPurger, logger *zap.Logger, schedule string, retention time.Duration) (*LoginPurge, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("login retention must be positive, got %s", retention)
	}
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}

	w := &LoginPurge{
		store:     store,
		log:       logger,
		schedule:  schedule,
		retention: retention,
		now:       time.Now,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins the schedule.
func (w *LoginPurge) Start() {
	w.cron.Start()
	w.log.Info("login purge worker started",
		zap.String("schedule", w.schedule),
		zap.Duration("retention", w.retention))
}

// Stop halts the schedule and waits for a running purge to finish.
func (w *LoginPurge) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info("login purge worker stopped")
}

// RunOnce purges immediately and returns the number of records removed.
func (w *LoginPurge) RunOnce(ctx context.Context) (int64, error) {
	cutoff := w.now().UTC().Add(-w.retention)
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), w.log, "purge login records")
	defer cancel()
	return w.store.PurgeBefore(ctx, cutoff)
}

func (w *LoginPurge) run() {
	n, err := w.RunOnce(context.Background())
	if err != nil {
		w.log.Error("failed to purge login records", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("purged login records", zap.Int64("count", n))
	}
}
