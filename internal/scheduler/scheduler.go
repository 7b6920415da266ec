package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/taskmaster/internal/weather"
)

// runTimeout bounds how long one job run waits for its fetches.
const runTimeout = 30 * time.Second

// Refresher re-requests weather for the locations currently in view.
type Refresher interface {
	RefreshWeather() []*weather.Request
}

// Scheduler periodically refreshes weather for visible tasks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
}

// New creates a new Scheduler. An interval of zero or less disables it.
func New(target Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: weather refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: refreshing visible weather every %s", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// run refreshes every visible location and reports how many failed.
func (s *Scheduler) run() int {
	log.Println("scheduler: running weather refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	reqs := s.target.RefreshWeather()
	failed := 0
	for _, req := range reqs {
		if req == nil {
			continue
		}
		if _, err := req.Wait(ctx); err != nil {
			log.Printf("scheduler: refresh failed for %q: %v", req.Location, err)
			failed++
		}
	}

	log.Printf("scheduler: completed weather refresh job (%d locations, %d failed)", len(reqs), failed)
	return failed
}
