package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bistsignal/backend/pkg/logger"
)

// JobRecorder counts job outcomes; *metrics.Recorder satisfies it
type JobRecorder interface {
	RecordJob(job, status string)
}

// Scheduler manages scheduled jobs
// ⭐ SSOT: schedules are managed by this scheduler only
type Scheduler struct {
	cron     *cron.Cron
	logger   *logger.Logger
	location *time.Location
	jobs     map[string]Job
	entries  map[string]cron.EntryID
	history  map[string]*JobHistory
	mu       sync.RWMutex

	// Retry configuration
	maxRetries int
	retryDelay time.Duration

	recorder JobRecorder
	store    HistoryStore

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler evaluating cron expressions in loc (UTC when nil)
func New(log *logger.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{log: log}

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:     log.Module("scheduler"),
		location:   loc,
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		maxRetries: 3,
		retryDelay: 1 * time.Minute,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// WithRetry sets how often a failed run is retried and the pause between attempts
func (s *Scheduler) WithRetry(maxRetries int, delay time.Duration) *Scheduler {
	s.maxRetries = maxRetries
	s.retryDelay = delay
	return s
}

// WithRecorder reports every finished run to r
func (s *Scheduler) WithRecorder(r JobRecorder) *Scheduler {
	s.recorder = r
	return s
}

// WithHistoryStore persists history after every run
func (s *Scheduler) WithHistoryStore(store HistoryStore) *Scheduler {
	s.store = store
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(s.ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.entries[jobName] = id
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
		"location": s.location.String(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobName]; !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(s.entries[jobName])
	delete(s.jobs, jobName)
	delete(s.entries, jobName)
	delete(s.history, jobName)
	s.logger.WithJob(jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler, aborting pending retries, and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a specific job immediately (outside of schedule) and waits for it
func (s *Scheduler) RunJob(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", jobName)
	}

	return s.runJob(ctx, job), nil
}

// runJob executes a job with retry logic
func (s *Scheduler) runJob(ctx context.Context, job Job) JobResult {
	jobName := job.Name()
	startTime := time.Now()
	log := s.logger.WithJob(jobName)

	log.Info("Job started")

	var lastErr error
	var success bool
	attempts := 0

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		err := job.Run(ctx)
		if err == nil {
			success = true
			break
		}

		lastErr = err
		log.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("Job execution failed")

		if attempt == s.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			lastErr = fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(s.retryDelay):
			continue
		}
		break
	}

	endTime := time.Now()
	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  endTime.Sub(startTime),
		Attempts:  attempts,
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.record(ctx, result)

	if success {
		log.WithFields(map[string]interface{}{
			"duration": result.Duration,
			"attempts": attempts,
		}).Info("Job completed successfully")
	} else {
		log.WithFields(map[string]interface{}{
			"duration": result.Duration,
			"attempts": attempts,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}

	return result
}

// record appends result to the history and reports it
func (s *Scheduler) record(ctx context.Context, result JobResult) {
	s.mu.Lock()
	history, exists := s.history[result.JobName]
	var snapshot *JobHistory
	if exists {
		history.AddResult(result)
		snapshot = &JobHistory{Results: append([]JobResult(nil), history.Results...)}
	}
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordJob(result.JobName, result.Status())
	}

	if s.store != nil && snapshot != nil {
		// the run context may already be cancelled
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.store.Save(saveCtx, result.JobName, snapshot); err != nil {
			s.logger.WithError(err).WithJob(result.JobName).Warn("Failed to persist job history")
		}
	}
}

// LoadHistory replaces in-memory history with what the store holds
func (s *Scheduler) LoadHistory(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	for _, jobName := range s.GetAllJobs() {
		history, err := s.store.Load(ctx, jobName)
		if err != nil {
			return fmt.Errorf("load history of %s: %w", jobName, err)
		}

		s.mu.Lock()
		if _, exists := s.history[jobName]; exists {
			s.history[jobName] = history
		}
		s.mu.Unlock()
	}
	return nil
}

// GetJobHistory returns the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return &JobHistory{Results: append([]JobResult(nil), history.Results...)}, nil
}

// GetAllJobs returns all registered jobs, sorted by name
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// Schedule returns the cron expression of a job
func (s *Scheduler) Schedule(jobName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobName]
	if !exists {
		return "", false
	}
	return job.Schedule(), true
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats)

	for jobName, history := range s.history {
		success, failure := history.Counts()
		stat := JobStats{
			JobName:             jobName,
			Schedule:            s.jobs[jobName].Schedule(),
			TotalRuns:           len(history.Results),
			SuccessCount:        success,
			FailureCount:        failure,
			SuccessRate:         history.GetSuccessRate(),
			ConsecutiveFailures: history.ConsecutiveFailures(),
		}

		if latest := history.GetLatestResults(1); len(latest) == 1 {
			t := latest[0].StartTime
			stat.LastRun = &t
		}
		if r := history.last(true); r != nil {
			t := r.StartTime
			stat.LastSuccess = &t
		}
		if r := history.last(false); r != nil {
			t := r.StartTime
			stat.LastFailure = &t
			stat.LastError = r.Error
		}
		if next := s.cron.Entry(s.entries[jobName]).Next; !next.IsZero() {
			stat.NextRun = &next
		}

		stats[jobName] = stat
	}

	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`

	// ConsecutiveFailures counts failed runs since the last success
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastError           string `json:"last_error,omitempty"`
}

// cronLogger routes cron's own messages through the application logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
