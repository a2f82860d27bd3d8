// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"sync"
	"time"
)

// poller is an explicit, cancellable handle for a recurring poll task.
// At most one poller is active per controller; it is always stopped on
// job completion, job error, cancellation, and teardown. The poll
// function runs on a single goroutine, so at most one status request is
// outstanding at any time.
type poller struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// startPoller runs fn every interval until fn returns false or Stop is
// called. The first call happens after one full interval.
func startPoller(interval time.Duration, fn func() bool) *poller {
	p := &poller{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if !fn() {
					return
				}
			}
		}
	}()
	return p
}

// Stop halts the poll loop. Idempotent, and it does not wait for an
// in-flight fn call to return, so it is safe from any goroutine
// including fn itself.
func (p *poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Done is closed once the poll loop has exited.
func (p *poller) Done() <-chan struct{} { return p.done }
