package gateway

import (
	"sync"
	"time"

	"github.com/policylab/beancouncil/internal/oracle"
)

// call is the shared future for one coalesced oracle invocation. Every
// caller that was folded into the same quiet window awaits the same call
// and observes the same settled result.
type call struct {
	req      oracle.Request
	done     chan struct{}
	judgment *oracle.Judgment
	err      error
}

// debouncer coalesces rapid requests for one (persona, call-class) pair.
// New arguments supersede the pending ones; the oracle is invoked only
// after the quiet window elapses, and at most one invocation per pair is
// ever in flight. Superseded calls are implicitly cancelled: latest wins.
type debouncer struct {
	mu       sync.Mutex
	quiet    time.Duration
	pending  *call
	timer    *time.Timer
	inflight bool
	run      func(*call)
}

func newDebouncer(quiet time.Duration, run func(*call)) *debouncer {
	return &debouncer{quiet: quiet, run: run}
}

func (d *debouncer) submit(req oracle.Request) *call {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		d.pending = &call{req: req, done: make(chan struct{})}
		d.timer = time.AfterFunc(d.quiet, d.fire)
	} else {
		d.pending.req = req
		d.timer.Reset(d.quiet)
	}
	return d.pending
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.pending == nil {
		d.mu.Unlock()
		return
	}
	if d.inflight {
		// One outstanding call per pair: queue behind the debounce,
		// not the network.
		d.timer.Reset(d.quiet)
		d.mu.Unlock()
		return
	}
	c := d.pending
	d.pending = nil
	d.inflight = true
	d.mu.Unlock()

	d.run(c)

	d.mu.Lock()
	d.inflight = false
	d.mu.Unlock()
}
