package jobs

import "fmt"

// ErrNotFound indicates the job id is not in the registry.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.ID)
}

// ErrAlreadyExists indicates a create with an id already in use.
type ErrAlreadyExists struct {
	ID string
}

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("job already exists: %s", e.ID)
}

// ErrInvalidTransition indicates an update against a terminal job.
type ErrInvalidTransition struct {
	ID   string
	From Status
	To   Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("job %s is terminal: cannot transition %s -> %s", e.ID, e.From, e.To)
}
