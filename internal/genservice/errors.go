package genservice

import "fmt"

// ServiceError indicates a generation backend call failed or timed out. It
// carries the upstream status and message so the job's terminal error can
// surface them verbatim.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation service %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("generation service %s unreachable: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("generation service %s failed: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
