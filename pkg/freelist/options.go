package freelist

// poolConfig collects the per-instance toggles before the pool's
// backing memory exists
type poolConfig[T any] struct {
	name       string
	threadSafe bool
	validate   bool
	offHeap    bool
	reset      func(*T)
	obs        Observer
}

// Option configures a Pool at construction time. Variants that the
// original design selected at compile time — thread safety, validated
// versus trusting release checks, tracing — are chosen per instance
// here, so single-threaded users pay no locking cost and unvalidated
// users pay no bookkeeping cost.
type Option[T any] func(*poolConfig[T])

func applyOptions[T any](opts []Option[T]) poolConfig[T] {
	var cfg poolConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithName sets the pool's name, used in trace output and metric
// labels. Unnamed pools get a sequential "pool-N" name.
func WithName[T any](name string) Option[T] {
	return func(cfg *poolConfig[T]) {
		cfg.name = name
	}
}

// WithThreadSafety selects the serialized variant: one coarse mutex
// guards every mutating operation for its full duration, including
// constructor and reset hooks. There is no sharding and no lock-free
// fast path; a blocked caller waits for the lock with no bound.
// Capacity and PhysicalSize stay lock-free since capacity is
// immutable.
func WithThreadSafety[T any]() Option[T] {
	return func(cfg *poolConfig[T]) {
		cfg.threadSafe = true
	}
}

// WithValidation selects the validated variant: Release and
// DestructAndRelease check that the address is slot-aligned inside
// the arena and not already free, failing with
// ErrorTypeInvalidRelease instead of corrupting the free stack. Costs
// one bit of bookkeeping per slot and bounds checks per release.
// Orthogonal to tracing: WithObserver never adds safety checks.
func WithValidation[T any]() Option[T] {
	return func(cfg *poolConfig[T]) {
		cfg.validate = true
	}
}

// WithOffHeap places the arena in an anonymous mapping outside the Go
// heap, keeping large arenas out of the garbage collector's scan set.
// Only pointer-free element types are accepted: the collector cannot
// see into the mapping, so a pointer stored there would not keep its
// referent alive. Valid only for owning pools.
func WithOffHeap[T any]() Option[T] {
	return func(cfg *poolConfig[T]) {
		cfg.offHeap = true
	}
}

// WithReset installs the pool's destructor analog: DestructAndRelease
// runs it on the object before the slot returns to the free stack.
// Without a hook the slot is zeroed instead. Release never runs it.
func WithReset[T any](reset func(*T)) Option[T] {
	return func(cfg *poolConfig[T]) {
		cfg.reset = reset
	}
}

// WithObserver installs a diagnostics hook invoked around each
// operation. Observers are purely informational: they must not and
// cannot alter acquire/release ordering or outcomes.
func WithObserver[T any](obs Observer) Option[T] {
	return func(cfg *poolConfig[T]) {
		cfg.obs = obs
	}
}
