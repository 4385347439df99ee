package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("job not found")

// DefaultJobRetention is how many finished jobs stay queryable.
const DefaultJobRetention = 200

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobCanceled  JobStatus = "canceled"
	JobFailed    JobStatus = "failed"
)

// Runner is what the job manager drives; *Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, req Request) (Report, error)
}

type Job struct {
	ID               string    `json:"job_id"`
	Status           JobStatus `json:"status"`
	Request          Request   `json:"request"`
	EstimatedRevenue float64   `json:"estimated_revenue"`
	Report           *Report   `json:"report,omitempty"`
	Error            string    `json:"error,omitempty"`
	SubmittedAt      time.Time `json:"submitted_at"`
	FinishedAt       time.Time `json:"finished_at,omitzero"`
}

type jobEntry struct {
	job    Job
	cancel context.CancelFunc
}

// Jobs runs pipeline requests in the background, one goroutine per job.
type Jobs struct {
	runner Runner
	log    *slog.Logger

	mu       sync.RWMutex
	jobs     map[string]*jobEntry
	finished []string // finish order, oldest first
	retain   int
	wg       sync.WaitGroup
}

func NewJobs(runner Runner, log *slog.Logger) *Jobs {
	if log == nil {
		log = slog.Default()
	}
	return &Jobs{runner: runner, log: log, jobs: make(map[string]*jobEntry), retain: DefaultJobRetention}
}

// SetRetention caps the finished jobs kept; the oldest are dropped first.
// Running jobs are never dropped. n <= 0 restores the default.
func (j *Jobs) SetRetention(n int) {
	if n <= 0 {
		n = DefaultJobRetention
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.retain = n
	j.evict()
}

func (j *Jobs) evict() {
	for len(j.finished) > j.retain {
		delete(j.jobs, j.finished[0])
		j.finished = j.finished[1:]
	}
}

// Submit starts req detached from any request context and returns the job
// snapshot immediately.
func (j *Jobs) Submit(req Request, estimatedRevenue float64) (Job, error) {
	if err := req.Validate(); err != nil {
		return Job{}, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &jobEntry{
		job: Job{
			ID:               uuid.NewString(),
			Status:           JobRunning,
			Request:          req,
			EstimatedRevenue: estimatedRevenue,
			SubmittedAt:      time.Now().UTC(),
		},
		cancel: cancel,
	}
	j.mu.Lock()
	j.jobs[e.job.ID] = e
	snap := e.job
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer cancel()
		rep, err := j.runner.Run(ctx, req)
		j.finish(e, rep, err)
	}()
	j.log.Info("job submitted", slog.String("job_id", snap.ID), slog.Float64("estimated_revenue", estimatedRevenue))
	return snap, nil
}

func (j *Jobs) finish(e *jobEntry, rep Report, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e.job.Report = &rep
	e.job.FinishedAt = time.Now().UTC()
	switch {
	case err == nil:
		e.job.Status = JobCompleted
	case errors.Is(err, context.Canceled):
		e.job.Status = JobCanceled
	default:
		e.job.Status = JobFailed
		e.job.Error = err.Error()
	}
	j.finished = append(j.finished, e.job.ID)
	j.evict()
	j.log.Info("job finished",
		slog.String("job_id", e.job.ID),
		slog.String("status", string(e.job.Status)),
		slog.Int("total_generated", rep.TotalGenerated))
}

func (j *Jobs) Get(id string) (Job, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	e, ok := j.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return e.job, nil
}

// Cancel stops a running job after its in-flight unit.
func (j *Jobs) Cancel(id string) error {
	j.mu.RLock()
	e, ok := j.jobs[id]
	j.mu.RUnlock()
	if !ok {
		return ErrJobNotFound
	}
	e.cancel()
	return nil
}

// Running counts jobs that have not finished yet.
func (j *Jobs) Running() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	n := 0
	for _, e := range j.jobs {
		if e.job.Status == JobRunning {
			n++
		}
	}
	return n
}

// Shutdown cancels every job and waits for them, or for ctx.
func (j *Jobs) Shutdown(ctx context.Context) error {
	j.mu.RLock()
	for _, e := range j.jobs {
		e.cancel()
	}
	j.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
