package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/stormstream/storm-assistant/internal/store"
)

// Janitor periodically sweeps idle chat sessions out of the store.
type Janitor struct {
	scheduler *gocron.Scheduler
	sessions  *store.SessionStore
	interval  time.Duration
	log       *zap.Logger
}

// New creates a Janitor sweeping at the given interval.
func New(sessions *store.SessionStore, interval time.Duration, log *zap.Logger) *Janitor {
	return &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (j *Janitor) Start() error {
	minutes := int(j.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := j.scheduler.Every(minutes).Minutes().Do(func() {
		evicted := j.sessions.Sweep(time.Now())
		if evicted > 0 {
			j.log.Info("swept idle sessions",
				zap.Int("evicted", evicted),
				zap.Int("remaining", j.sessions.Len()),
			)
		}
	})
	if err != nil {
		return err
	}

	j.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future sweeps.
func (j *Janitor) Stop() {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
}
