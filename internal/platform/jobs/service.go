package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobRecompute = "payroll_recompute"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// historyLimit bounds how many finished runs are remembered.
const historyLimit = 256

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrRunNotFound = errors.New("job run not found")
)

type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Details     any        `json:"details,omitempty"`
	Error       string     `json:"error,omitempty"`
	QueuedAt    time.Time  `json:"queuedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Service struct {
	queue chan job

	mu       sync.RWMutex
	runs     map[string]*Run
	finished []string
}

type job struct {
	ID   string
	Type string
	Run  func(context.Context) (any, error)
}

func New() *Service {
	return &Service{
		queue: make(chan job, 128),
		runs:  make(map[string]*Run),
	}
}

// Start runs the queue worker until ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue schedules run on the worker and returns the run id to poll.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) (string, error) {
	j := job{ID: uuid.NewString(), Type: jobType, Run: run}
	s.track(j)
	select {
	case s.queue <- j:
		return j.ID, nil
	default:
		s.mu.Lock()
		delete(s.runs, j.ID)
		s.mu.Unlock()
		slog.Warn("job queue full", "jobType", jobType)
		return "", ErrQueueFull
	}
}

// RunNow runs a job on the caller's goroutine and records it like a queued one.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (Run, error) {
	j := job{ID: uuid.NewString(), Type: jobType, Run: run}
	s.track(j)
	_, err := s.runJob(ctx, j)
	snapshot, _ := s.Run(j.ID)
	return snapshot, err
}

// Run returns a copy of the run's current state.
func (s *Service) Run(id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return *r, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "runId", j.ID, "err", err)
			}
		}
	}
}

func (s *Service) track(j job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[j.ID] = &Run{ID: j.ID, Type: j.Type, Status: StatusQueued, QueuedAt: time.Now().UTC()}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	started := time.Now().UTC()
	s.update(j.ID, func(r *Run) {
		r.Status = StatusRunning
		r.StartedAt = &started
	})

	details, err := j.Run(ctx)

	completed := time.Now().UTC()
	s.update(j.ID, func(r *Run) {
		r.Status = StatusCompleted
		r.Details = details
		r.CompletedAt = &completed
		if err != nil {
			r.Status = StatusFailed
			r.Error = err.Error()
		}
	})
	s.remember(j.ID)
	slog.Info("job run finished", "jobType", j.Type, "runId", j.ID, "durationMs", completed.Sub(started).Milliseconds(), "failed", err != nil)
	return details, err
}

func (s *Service) update(id string, apply func(*Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runs[id]; ok {
		apply(r)
	}
}

func (s *Service) remember(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, id)
	for len(s.finished) > historyLimit {
		delete(s.runs, s.finished[0])
		s.finished = s.finished[1:]
	}
}
