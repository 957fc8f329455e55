// Package scheduler drives periodic fetch-and-archive runs.
package scheduler

import (
	"context"
	"time"

	"github.com/enerhub/enerhub/pkg/archive"
	"github.com/enerhub/enerhub/pkg/snapshot"
	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds one fetch-and-archive cycle so a stalled API call
// cannot pile runs on top of each other.
const jobTimeout = 10 * time.Minute

// Scheduler runs the fetch service on a fixed interval and optionally hands
// the written snapshot files to the archiver.
type Scheduler struct {
	log       logrus.FieldLogger
	scheduler *gocron.Scheduler
	service   *snapshot.Service
	archiver  *archive.Archiver
	interval  time.Duration
}

// New creates a Scheduler. archiver may be nil to fetch without archival.
func New(log logrus.FieldLogger, service *snapshot.Service, archiver *archive.Archiver, interval time.Duration) *Scheduler {
	return &Scheduler{
		log:       log.WithField("component", "scheduler"),
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		archiver:  archiver,
		interval:  interval,
	}
}

// Start schedules the periodic job, runs it once immediately, and returns.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().StartImmediately().Do(s.runJob)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()

	s.log.WithField("interval_minutes", minutes).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler. A job in flight runs to completion.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	written, err := s.service.RunOnce(ctx)
	if err != nil {
		s.log.WithError(err).Error("Fetch run failed")

		return
	}

	if s.archiver == nil || len(written) == 0 {
		return
	}

	summary := s.archiver.UploadMany(ctx, written)
	if summary.Failed > 0 {
		s.log.WithField("failed", summary.Failed).Warn("Archive run degraded")
	}
}
