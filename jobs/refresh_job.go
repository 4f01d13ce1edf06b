package jobs

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/services"
)

type SnapshotRefreshJob struct {
	Service  *services.CachedDashboardService
	Interval time.Duration
}

func NewSnapshotRefreshJob(service *services.CachedDashboardService, interval time.Duration) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{
		Service:  service,
		Interval: interval,
	}
}

// Run rebuilds the memoized snapshot once
func (j *SnapshotRefreshJob) Run() {
	logrus.Info("Starting snapshot refresh job")
	started := time.Now()

	j.Service.InvalidateSnapshot()
	j.Service.WarmupCache()

	logrus.WithFields(logrus.Fields{
		"component": "refresh_job",
		"elapsed":   time.Since(started).String(),
	}).Info("Snapshot refresh job completed")
}

// Start runs the job immediately and then on every tick until stop is
// closed. It is meant to run in its own goroutine.
func (j *SnapshotRefreshJob) Start(stop <-chan struct{}) {
	j.Run()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Run()
		case <-stop:
			logrus.Info("Snapshot refresh job stopped")
			return
		}
	}
}
