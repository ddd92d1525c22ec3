package freelist

import "sync/atomic"

// Stats is a point-in-time snapshot of a pool's operation counters.
// Counters survive a Move: they describe the arena's traffic, not the
// Pool instance's.
type Stats struct {
	// Acquires is the number of successful slot acquisitions
	Acquires int64
	// Releases is the number of successful releases
	Releases int64
	// Constructs is the number of Construct calls that acquired a slot
	Constructs int64
	// Destructs is the number of DestructAndRelease calls that ran a
	// destructor (reset hook or zeroing)
	Destructs int64
	// Exhausted is the number of acquisitions rejected because every
	// slot was outstanding
	Exhausted int64
	// InUse is the number of slots currently held by callers
	InUse int64
	// FreeSlots is the current free-stack depth
	FreeSlots int
}

// Stats returns a snapshot of the pool's counters
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	free := p.top
	p.mu.Unlock()

	return Stats{
		Acquires:   atomic.LoadInt64(&p.stats.acquires),
		Releases:   atomic.LoadInt64(&p.stats.releases),
		Constructs: atomic.LoadInt64(&p.stats.constructs),
		Destructs:  atomic.LoadInt64(&p.stats.destructs),
		Exhausted:  atomic.LoadInt64(&p.stats.exhausted),
		InUse:      atomic.LoadInt64(&p.stats.inUse),
		FreeSlots:  free,
	}
}
