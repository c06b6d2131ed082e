// SPDX-License-Identifier: MIT

// Package jobs owns the analysis job lifecycle: submission, leasing to
// workers, completion and expiry. Jobs survive daemon restarts with the
// badger and sqlite store backends.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/viktor-platform/scia-bridge/internal/params"
)

// Status is the lifecycle state of an analysis job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition s → next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusRunning || next == StatusCancelled || next == StatusFailed
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed || next == StatusCancelled || next == StatusQueued
	}
	return false
}

// ArtifactRef describes one result artifact attached to a job.
type ArtifactRef struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Job is a single analysis request and its progress.
type Job struct {
	ID         uuid.UUID           `json:"id"`
	Definition params.BridgeParams `json:"definition"`
	Status     Status              `json:"status"`
	Error      string              `json:"error,omitempty"`

	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	WorkerID  string        `json:"worker_id,omitempty"`
	Artifacts []ArtifactRef `json:"artifacts,omitempty"`
	Timeout   time.Duration `json:"timeout"`

	// Requeues counts how often an expired lease was handed back to the
	// queue.
	Requeues int `json:"requeues,omitempty"`
}

// Clone returns a deep copy; stores hand out copies so callers cannot
// mutate shared state.
func (j *Job) Clone() *Job {
	out := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	if j.Artifacts != nil {
		out.Artifacts = append([]ArtifactRef(nil), j.Artifacts...)
	}
	return &out
}
