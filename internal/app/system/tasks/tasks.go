// internal/app/system/tasks/tasks.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives jobs on their intervals until the context is cancelled.
type Runner struct {
	log  *zap.Logger
	jobs []Job
	wg   sync.WaitGroup
}

func NewRunner(log *zap.Logger, jobs ...Job) *Runner {
	return &Runner{log: log, jobs: jobs}
}

// Start launches one goroutine per job. Each job also runs once at start.
func (r *Runner) Start(ctx context.Context) {
	for _, job := range r.jobs {
		job := job
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.runJob(ctx, job)
		}()
	}
}

// Wait blocks until all job goroutines have exited.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) runJob(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	r.invoke(ctx, job)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.invoke(ctx, job)
		}
	}
}

func (r *Runner) invoke(ctx context.Context, job Job) {
	runCtx, cancel := context.WithTimeout(ctx, job.Interval)
	defer cancel()
	if err := job.Run(runCtx); err != nil && runCtx.Err() == nil {
		r.log.Warn("background job failed",
			zap.String("job", job.Name),
			zap.Error(err))
	}
}
