package cache

import (
	"github.com/rs/zerolog"
)

// SweepJob removes expired entries from the cache store.
// It is scheduled periodically so abandoned keys do not accumulate.
type SweepJob struct {
	store *Store
	log   zerolog.Logger
}

// NewSweepJob creates a new cache sweep job.
func NewSweepJob(store *Store, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		store: store,
		log:   log.With().Str("job", "cache_sweep").Logger(),
	}
}

// Run executes the sweep, removing all expired entries.
func (j *SweepJob) Run() error {
	removed := j.store.Sweep()
	if removed > 0 {
		j.log.Info().
			Int("removed", removed).
			Int("remaining", j.store.Len()).
			Msg("Swept expired cache entries")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *SweepJob) Name() string {
	return "cache_sweep"
}
