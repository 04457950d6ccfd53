package services

import (
	"time"

	"github.com/restokorp/restaurant-app/utils"
)

// Job is a named periodic task. Run must be idempotent: the runner retries
// on the next tick regardless of the previous outcome.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func() error
}

// JobRunner drives independent ticker loops for background jobs (booking
// sweep, cache warmup, daily report). Jobs share no state beyond the DB.
type JobRunner struct {
	jobs     []Job
	stopChan chan struct{}
}

func NewJobRunner(jobs ...Job) *JobRunner {
	return &JobRunner{
		jobs:     jobs,
		stopChan: make(chan struct{}),
	}
}

func (r *JobRunner) Start() {
	for _, job := range r.jobs {
		go r.loop(job)
	}
}

func (r *JobRunner) Stop() {
	close(r.stopChan)
}

func (r *JobRunner) loop(job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(); err != nil {
				utils.ErrorLogger.Printf("Job %s failed: %v", job.Name, err)
				continue
			}
			utils.InfoLogger.Printf("Job %s finished in %v", job.Name, time.Since(start))
		case <-r.stopChan:
			return
		}
	}
}
