// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	xlog "github.com/viktor-platform/scia-bridge/internal/log"
	"github.com/viktor-platform/scia-bridge/internal/metrics"
	"github.com/viktor-platform/scia-bridge/internal/params"
)

const (
	// DefaultTimeout bounds a single analysis run.
	DefaultTimeout = 600 * time.Second

	// maxRequeues is how often an expired lease is handed back to the
	// queue before the job fails.
	maxRequeues = 1

	sweepInterval = 15 * time.Second
)

// ManagerOptions tune the manager.
type ManagerOptions struct {
	DefaultTimeout time.Duration
	Clock          func() time.Time
}

// Manager coordinates the job queue on top of a Store: submission, worker
// leases, completion and the expiry sweep.
type Manager struct {
	store          Store
	defaultTimeout time.Duration
	clock          func() time.Time

	mu     sync.Mutex
	queue  []uuid.UUID
	notify chan struct{}
}

// NewManager wraps the store. Jobs already queued (or left running by a
// crashed daemon) are recovered into the wait queue.
func NewManager(ctx context.Context, store Store, opts ManagerOptions) (*Manager, error) {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	m := &Manager{
		store:          store,
		defaultTimeout: opts.DefaultTimeout,
		clock:          opts.Clock,
		notify:         make(chan struct{}),
	}
	if err := m.recover(ctx); err != nil {
		return nil, fmt.Errorf("recover job queue: %w", err)
	}
	return m, nil
}

func (m *Manager) recover(ctx context.Context) error {
	all, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	logger := xlog.WithComponent("jobs")

	// oldest first so the queue keeps submission order
	sort.Slice(all, func(i, k int) bool {
		return all[i].EnqueuedAt.Before(all[k].EnqueuedAt)
	})
	for _, job := range all {
		switch job.Status {
		case StatusQueued:
			m.enqueue(job.ID)
		case StatusRunning:
			// the daemon restarted mid-flight; the lease is gone
			requeued, err := m.store.Update(ctx, job.ID, func(j *Job) error {
				j.Status = StatusQueued
				j.WorkerID = ""
				j.StartedAt = nil
				return nil
			})
			if err != nil {
				return err
			}
			m.enqueue(requeued.ID)
			logger.Warn().
				Str(xlog.FieldJobID, job.ID.String()).
				Str("event", "jobs.recovered").
				Msg("requeued job left running by previous daemon instance")
		}
	}
	return nil
}

// Submit validates the definition and enqueues a new analysis job. A zero
// timeout uses the manager default.
func (m *Manager) Submit(ctx context.Context, def params.BridgeParams, timeout time.Duration) (*Job, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = m.defaultTimeout
	}
	job := &Job{
		ID:         uuid.New(),
		Definition: def,
		Status:     StatusQueued,
		EnqueuedAt: m.clock().UTC(),
		Timeout:    timeout,
	}
	if err := m.store.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("store job: %w", err)
	}
	m.enqueue(job.ID)
	metrics.RecordJobTransition(string(StatusQueued))

	logger := xlog.WithComponentFromContext(ctx, "jobs")
	logger.Info().
		Str(xlog.FieldJobID, job.ID.String()).
		Dur("timeout", timeout).
		Str("event", "jobs.submitted").
		Msg("analysis job queued")
	return job, nil
}

// Get returns the job by id.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	return m.store.Get(ctx, id)
}

// List returns all jobs, newest first.
func (m *Manager) List(ctx context.Context) ([]*Job, error) {
	return m.store.List(ctx)
}

// Cancel aborts a queued or running job. Terminal jobs yield ErrConflict.
func (m *Manager) Cancel(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := m.store.Update(ctx, id, func(j *Job) error {
		if !j.Status.CanTransitionTo(StatusCancelled) {
			return fmt.Errorf("%w: cannot cancel %s job", ErrConflict, j.Status)
		}
		now := m.clock().UTC()
		j.Status = StatusCancelled
		j.FinishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordJobTransition(string(StatusCancelled))
	return job, nil
}

// Lease hands the oldest queued job to a worker, blocking until one is
// available or ctx expires. A ctx deadline surfaces as ErrLeaseTimeout.
func (m *Manager) Lease(ctx context.Context, workerID string) (*Job, error) {
	start := m.clock()
	for {
		// capture the wakeup channel before checking the queue so a
		// Submit landing in between still wakes this lease
		m.mu.Lock()
		wait := m.notify
		m.mu.Unlock()

		if job := m.tryLease(ctx, workerID); job != nil {
			metrics.ObserveLeaseWait(m.clock().Sub(start).Seconds())
			metrics.RecordJobTransition(string(StatusRunning))
			return job, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLeaseTimeout
			}
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// tryLease pops queue entries until one job actually transitions to
// running. Entries whose job was cancelled in the meantime are dropped.
func (m *Manager) tryLease(ctx context.Context, workerID string) *Job {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return nil
		}
		id := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		job, err := m.store.Update(ctx, id, func(j *Job) error {
			if j.Status != StatusQueued {
				return fmt.Errorf("%w: job is %s", ErrConflict, j.Status)
			}
			now := m.clock().UTC()
			j.Status = StatusRunning
			j.StartedAt = &now
			j.WorkerID = workerID
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
				// the job was cancelled or removed, drop the entry
				continue
			}
			// transient store failure: keep the entry for a later attempt
			m.requeueFront(id)
			logger := xlog.WithComponentFromContext(ctx, "jobs")
			logger.Error().
				Err(err).
				Str(xlog.FieldJobID, id.String()).
				Str("event", "jobs.lease_update_failed").
				Msg("could not transition queued job, keeping it queued")
			return nil
		}
		logger := xlog.WithComponentFromContext(ctx, "jobs")
		logger.Info().
			Str(xlog.FieldJobID, job.ID.String()).
			Str(xlog.FieldWorkerID, workerID).
			Str("event", "jobs.leased").
			Msg("job leased to worker")
		return job
	}
}

// Complete marks a running job as finished and records its artifacts.
func (m *Manager) Complete(ctx context.Context, id uuid.UUID, artifacts []ArtifactRef) (*Job, error) {
	job, err := m.store.Update(ctx, id, func(j *Job) error {
		if !j.Status.CanTransitionTo(StatusCompleted) {
			return fmt.Errorf("%w: cannot complete %s job", ErrConflict, j.Status)
		}
		now := m.clock().UTC()
		j.Status = StatusCompleted
		j.FinishedAt = &now
		j.Artifacts = artifacts
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordJobTransition(string(StatusCompleted))
	if job.StartedAt != nil && job.FinishedAt != nil {
		metrics.ObserveJobDuration("completed", job.FinishedAt.Sub(*job.StartedAt).Seconds())
	}
	return job, nil
}

// Fail marks a running job as failed with the worker's error message.
func (m *Manager) Fail(ctx context.Context, id uuid.UUID, reason string) (*Job, error) {
	job, err := m.store.Update(ctx, id, func(j *Job) error {
		if !j.Status.CanTransitionTo(StatusFailed) {
			return fmt.Errorf("%w: cannot fail %s job", ErrConflict, j.Status)
		}
		now := m.clock().UTC()
		j.Status = StatusFailed
		j.FinishedAt = &now
		j.Error = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordJobTransition(string(StatusFailed))
	if job.StartedAt != nil && job.FinishedAt != nil {
		metrics.ObserveJobDuration("failed", job.FinishedAt.Sub(*job.StartedAt).Seconds())
	}
	return job, nil
}

// Start runs the expiry sweep until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(ctx)
			}
		}
	}()
}

// sweep expires running jobs whose lease outlived the job timeout: one
// requeue, then failure.
func (m *Manager) sweep(ctx context.Context) {
	all, err := m.store.List(ctx)
	if err != nil {
		logger := xlog.WithComponent("jobs")
		logger.Error().Err(err).Str("event", "jobs.sweep_failed").Msg("expiry sweep could not list jobs")
		return
	}
	now := m.clock()
	for _, job := range all {
		if job.Status != StatusRunning || job.StartedAt == nil {
			continue
		}
		if now.Sub(*job.StartedAt) <= job.Timeout {
			continue
		}
		expired, err := m.store.Update(ctx, job.ID, func(j *Job) error {
			if j.Status != StatusRunning {
				return fmt.Errorf("%w: job is %s", ErrConflict, j.Status)
			}
			if j.Requeues < maxRequeues {
				j.Requeues++
				j.Status = StatusQueued
				j.WorkerID = ""
				j.StartedAt = nil
				return nil
			}
			finished := m.clock().UTC()
			j.Status = StatusFailed
			j.FinishedAt = &finished
			j.Error = fmt.Sprintf("analysis timed out after %s", j.Timeout)
			return nil
		})
		if err != nil {
			continue
		}
		metrics.RecordJobExpiry(string(expired.Status))
		logger := xlog.WithComponent("jobs").With().
			Str(xlog.FieldJobID, expired.ID.String()).
			Str(xlog.FieldStatus, string(expired.Status)).Logger()
		if expired.Status == StatusQueued {
			m.enqueue(expired.ID)
			logger.Warn().Str("event", "jobs.lease_expired").Msg("worker lease expired, job requeued")
		} else {
			logger.Error().Str("event", "jobs.timed_out").Msg("job exceeded its timeout")
		}
	}
}

// requeueFront puts an entry back at the head of the queue without waking
// parked leases.
func (m *Manager) requeueFront(id uuid.UUID) {
	m.mu.Lock()
	m.queue = append([]uuid.UUID{id}, m.queue...)
	m.mu.Unlock()
}

func (m *Manager) enqueue(id uuid.UUID) {
	m.mu.Lock()
	m.queue = append(m.queue, id)
	// wake every parked lease
	close(m.notify)
	m.notify = make(chan struct{})
	m.mu.Unlock()
}

// QueueDepth returns the number of queue entries, used by readiness and
// metrics collection.
func (m *Manager) QueueDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
