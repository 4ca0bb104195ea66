package jobs

import "golang.org/x/sync/errgroup"

// Dispatcher launches detached job goroutines and keeps a handle on them so
// the process can drain in-flight work during shutdown. Once dispatched, a
// job runs to completion or failure; there is no cancellation.
type Dispatcher struct {
	group errgroup.Group
}

// NewDispatcher returns a dispatcher with no in-flight work.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch runs fn on its own goroutine, detached from the caller.
func (d *Dispatcher) Dispatch(fn func()) {
	d.group.Go(func() error {
		fn()
		return nil
	})
}

// Drain blocks until all dispatched jobs have finished.
func (d *Dispatcher) Drain() {
	_ = d.group.Wait()
}
