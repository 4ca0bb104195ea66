// Package jobs tracks asynchronous generation jobs from creation through
// their terminal status, and owns the dispatch of detached job goroutines.
package jobs

import (
	"sync"

	"github.com/jordan/content-calendar/internal/types"
)

// Status is the lifecycle state of a job.
type Status string

// Job lifecycle states. Transitions are monotonic:
// pending -> running -> success|error, with no way back.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Job is a tracked unit of asynchronous generation work.
type Job struct {
	ID     string                   `json:"id"`
	Status Status                   `json:"status"`
	Result *types.GenerationOutcome `json:"result"`
	Error  string                   `json:"error"`
}

// Registry is the process-wide job store. Implementations must allow
// concurrent Get while SetStatus is in flight; updates are whole-record
// replacements so a reader never observes a partially written job.
type Registry interface {
	Create(id string) error
	SetStatus(id string, status Status, result *types.GenerationOutcome, errMsg string) error
	Get(id string) (Job, error)
}

// MemoryRegistry keeps jobs in an in-process map. State resets on restart
// and entries live for the process lifetime; there is no eviction.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{jobs: make(map[string]Job)}
}

// Create registers a new pending job. Job ids are never reused, so an
// existing id is an error.
func (r *MemoryRegistry) Create(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return &ErrAlreadyExists{ID: id}
	}
	r.jobs[id] = Job{ID: id, Status: StatusPending}
	return nil
}

// SetStatus replaces the job record with the given status and payload.
// Terminal jobs are immutable.
func (r *MemoryRegistry) SetStatus(id string, status Status, result *types.GenerationOutcome, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.jobs[id]
	if !exists {
		return &ErrNotFound{ID: id}
	}
	if current.Status.Terminal() {
		return &ErrInvalidTransition{ID: id, From: current.Status, To: status}
	}
	r.jobs[id] = Job{ID: id, Status: status, Result: result, Error: errMsg}
	return nil
}

// Get returns a copy of the job record.
func (r *MemoryRegistry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return Job{}, &ErrNotFound{ID: id}
	}
	return job, nil
}
