// internal/store/janitor.go
//
// Scheduled cleanup of sessions that were started but never finished.
// Finished sessions are kept; their results also live in daily_results.

package store

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Janitor periodically prunes abandoned in-progress sessions.
type Janitor struct {
	cron      *cron.Cron
	store     Store
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewJanitor builds a janitor that removes in-progress sessions older than retention.
func NewJanitor(st Store, retention time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		store:     st,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("component", "janitor").Logger(),
	}
}

// Schedule registers the prune job. Schedule examples:
//   - "@daily"        - midnight UTC
//   - "@every 1h"     - hourly
//   - "5 0 * * *"     - 00:05 UTC
func (j *Janitor) Schedule(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.log.Error().Err(err).Msg("prune failed")
		}
	})
	if err != nil {
		return err
	}
	j.log.Info().Str("schedule", spec).Dur("retention", j.retention).Msg("prune job registered")
	return nil
}

// RunOnce prunes immediately and reports how many sessions were removed.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	j.log.Debug().Int("pruned", n).Time("cutoff", cutoff).Msg("pruned sessions")
	return n, nil
}

// Start begins running scheduled jobs in the background.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the scheduler and waits for a running job to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
