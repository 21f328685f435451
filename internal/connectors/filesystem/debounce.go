package filesystem

import (
	"sync"
	"time"
)

// settled is sent when a path has been quiet for the settle period.
type settled struct {
	path string
	gen  uint64
}

type pendingPath struct {
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces bursts of events per path into one settled message.
// A message is only valid if accept returns true for it: a timer that fired
// while the path was touched again leaves a stale message behind.
type debouncer struct {
	settle time.Duration
	ready  chan settled
	done   chan struct{}

	mu      sync.Mutex
	pending map[string]*pendingPath
	gen     uint64
}

func newDebouncer(settle time.Duration) *debouncer {
	return &debouncer{
		settle:  settle,
		ready:   make(chan settled),
		done:    make(chan struct{}),
		pending: make(map[string]*pendingPath),
	}
}

// touch restarts the settle period of path.
func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(d.settle)
		return
	}

	// Either new, or the old timer already fired and its message is in flight.
	d.gen++
	gen := d.gen
	d.pending[path] = &pendingPath{
		gen: gen,
		timer: time.AfterFunc(d.settle, func() {
			select {
			case d.ready <- settled{path: path, gen: gen}:
			case <-d.done:
			}
		}),
	}
}

// accept reports whether msg is the current settle of its path and forgets the path if so.
func (d *debouncer) accept(msg settled) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[msg.path]
	if !ok || p.gen != msg.gen {
		return false
	}
	delete(d.pending, msg.path)
	return true
}

// stop cancels pending timers and releases callbacks blocked on ready.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	close(d.done)
	for _, p := range d.pending {
		p.timer.Stop()
	}
	d.pending = map[string]*pendingPath{}
}
