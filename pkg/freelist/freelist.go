// Package freelist provides a fixed-capacity, typed object pool built
// on a free-list allocator. A pool preallocates one contiguous arena
// sized for exactly N instances of a caller-chosen type and hands out
// and reclaims individual slots in O(1) without touching a
// general-purpose allocator after setup. This avoids fragmentation and
// allocation-latency jitter for workloads that repeatedly construct
// and destroy many same-typed objects (simulation entities, game
// objects, protocol frames).
//
// The package provides:
//   - Generic type-safe pooling with Pool[T]
//   - Owning pools backed by the heap or by anonymous off-heap mappings
//   - Borrowing pools bound to caller-supplied buffers
//   - A strict LIFO free stack with a deterministic cold-fill order
//   - Optional per-instance locking, release validation, and tracing
//
// Example usage:
//
//	pool, err := freelist.New[Entity](1024)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	e, err := pool.Construct(func(e *Entity) error {
//	    e.Init(x, y)
//	    return nil
//	})
//	if err != nil {
//	    return err
//	}
//	// ... use e ...
//	pool.DestructAndRelease(e)
package freelist

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/mmap"
)

// ownership records who allocated the arena and the free-stack storage
// and therefore who is responsible for releasing them.
type ownership uint8

const (
	// ownershipBorrowed marks a pool bound to caller-supplied buffers.
	// Close never touches them and the caller may reuse them afterward.
	ownershipBorrowed ownership = iota
	// ownershipHeap marks a pool whose arena lives on the Go heap
	ownershipHeap
	// ownershipOffHeap marks a pool whose arena is an anonymous
	// mapping that Close must return to the operating system
	ownershipOffHeap
)

// poolSeq numbers pools that were not given an explicit name
var poolSeq uint64

// Pool is a fixed-capacity free-list allocator for values of type T.
//
// A Pool owns (or borrows) two regions: an arena holding up to
// capacity instances of T, and a parallel address array used strictly
// LIFO as the free stack. Every operation goes through these two
// regions; the pool never grows, shrinks, or compacts.
//
// A Pool must be created with New or NewBorrowed and used by pointer.
// It must not be copied: duplicating the free stack would create two
// authorities over the same slot addresses. Use Move to transfer
// ownership to a new instance instead.
//
// By default a Pool performs no internal locking; see WithThreadSafety
// for the serialized variant.
type Pool[T any] struct {
	name     string
	capacity int
	stride   uintptr

	// slots is the arena view. A nil slots marks a closed or
	// moved-from pool; every operation on it fails with
	// ErrorTypeClosed.
	slots []T
	// free[:top] are the addresses of currently unused slots,
	// free[top-1] being the next one handed out.
	free []*T
	top  int

	// inUse tracks outstanding slots, one bit per slot. Maintained
	// only when release validation is enabled.
	inUse []uint64

	mode    ownership
	mapping []byte // off-heap backing, nil otherwise

	mu         sync.Locker
	threadSafe bool
	validate   bool
	reset      func(*T)
	obs        Observer

	stats struct {
		acquires   int64
		releases   int64
		constructs int64
		destructs  int64
		exhausted  int64
		inUse      int64
	}
}

// New creates an owning pool with room for capacity values of type T.
//
// The arena and the free stack are allocated once, here; the pool
// never allocates again. A cold pool hands out slot addresses in
// ascending slot order: the first capacity calls to Acquire (with no
// intervening Release) return &arena[0], &arena[1], and so on. This
// ordering is part of the contract, not an accident of the
// implementation.
//
// With WithOffHeap the arena is an anonymous mapping outside the Go
// heap; a mapping failure surfaces as ErrorTypeAllocation and no pool
// is produced. Heap-backed arenas cannot fail recoverably: if the Go
// runtime cannot satisfy the allocation the process aborts, which is
// an accepted trade-off of running on a garbage-collected heap.
//
// Zero or negative capacities and zero-sized element types are
// rejected with ErrorTypeConfig.
func New[T any](capacity int, opts ...Option[T]) (*Pool[T], error) {
	var zero T
	stride := unsafe.Sizeof(zero)

	if capacity <= 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig, "capacity must be positive, got %d", capacity)
	}
	if stride == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "zero-sized element types cannot be pooled")
	}

	cfg := applyOptions(opts)
	p := &Pool[T]{
		capacity: capacity,
		stride:   stride,
		mode:     ownershipHeap,
	}
	p.configure(cfg)

	if cfg.offHeap {
		// Off-heap memory is invisible to the garbage collector, so a
		// pointer stored there would not keep its referent alive.
		if typeHasPointers[T]() {
			return nil, errors.New(errors.ErrorTypeConfig,
				"off-heap arenas require pointer-free element types")
		}
		mapping, err := mmap.Alloc(capacity * int(stride))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeAllocation, "cannot map off-heap arena")
		}
		p.mapping = mapping
		p.slots = unsafe.Slice((*T)(unsafe.Pointer(&mapping[0])), capacity)
		p.mode = ownershipOffHeap
	} else {
		p.slots = make([]T, capacity)
	}

	p.free = make([]*T, capacity)
	if p.validate {
		p.inUse = make([]uint64, (capacity+63)/64)
	}
	p.fill()

	if p.obs != nil {
		p.obs.PoolCreated(p.name, capacity)
	}
	return p, nil
}

// NewBorrowed creates a pool bound to caller-supplied storage: arena
// for the slots and stack for the free-stack addresses. The pool's
// capacity is len(arena); stack must be at least that long. The caller
// guarantees both buffers stay valid and are used exclusively by this
// pool for its entire lifetime. Close never releases them, so the same
// buffers can back a fresh pool afterward.
//
// Use PhysicalSizeFor to size an arena buffer before the pool exists.
//
// WithOffHeap is rejected for borrowed pools: the caller already chose
// where the memory lives.
func NewBorrowed[T any](arena []T, stack []*T, opts ...Option[T]) (*Pool[T], error) {
	var zero T
	stride := unsafe.Sizeof(zero)

	capacity := len(arena)
	if capacity == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "borrowed arena is empty")
	}
	if stride == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "zero-sized element types cannot be pooled")
	}
	if len(stack) < capacity {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"free-stack buffer holds %d addresses, need %d", len(stack), capacity)
	}

	cfg := applyOptions(opts)
	if cfg.offHeap {
		return nil, errors.New(errors.ErrorTypeConfig, "off-heap option is not valid for borrowed pools")
	}
	p := &Pool[T]{
		capacity: capacity,
		stride:   stride,
		mode:     ownershipBorrowed,
	}
	p.configure(cfg)

	p.slots = arena[:capacity:capacity]
	p.free = stack[:capacity:capacity]
	if p.validate {
		p.inUse = make([]uint64, (capacity+63)/64)
	}
	p.fill()

	if p.obs != nil {
		p.obs.PoolCreated(p.name, capacity)
	}
	return p, nil
}

// configure copies the resolved options onto the pool and fills in
// the defaults they did not cover
func (p *Pool[T]) configure(cfg poolConfig[T]) {
	p.name = cfg.name
	p.threadSafe = cfg.threadSafe
	p.validate = cfg.validate
	p.reset = cfg.reset
	p.obs = cfg.obs
	if p.name == "" {
		p.name = "pool-" + itoa(atomic.AddUint64(&poolSeq, 1))
	}
	if p.threadSafe {
		p.mu = &sync.Mutex{}
	} else {
		p.mu = nopLocker{}
	}
}

// fill populates the free stack so the cold pool drains in ascending
// slot order: the last entry pushed (the first popped) is &slots[0].
func (p *Pool[T]) fill() {
	for i := 0; i < p.capacity; i++ {
		p.free[i] = &p.slots[p.capacity-1-i]
	}
	p.top = p.capacity
}

// Acquire pops the most recently freed slot address off the free stack
// and hands it to the caller. The returned pointer lies inside the
// arena, is aligned for T, and is exclusively the caller's until it is
// released. The slot's bytes are NOT cleared: they may hold stale
// state from a prior occupant.
//
// When every slot is outstanding Acquire fails with
// ErrorTypeExhausted and leaves the free stack untouched; the caller
// may retry after some Release.
func (p *Pool[T]) Acquire() (*T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pop()
}

// Construct acquires a slot and runs init on it in place, returning a
// pointer to the now-live object. A nil init behaves like a bare
// Acquire. If acquisition fails nothing is constructed and the error
// is ErrorTypeExhausted.
//
// If init itself fails, Construct returns BOTH the acquired pointer
// and an ErrorTypeConstructor error: the slot is acquired but holds no
// live object, and the caller must hand it back with Release — not
// DestructAndRelease, since there is nothing to destruct.
//
// In the thread-safe variant init runs while the pool lock is held.
func (p *Pool[T]) Construct(init func(*T) error) (*T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ptr, err := p.pop()
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&p.stats.constructs, 1)

	if init != nil {
		if err := init(ptr); err != nil {
			if p.obs != nil {
				p.obs.ConstructFailed(p.name)
			}
			return ptr, errors.Wrap(err, errors.ErrorTypeConstructor, "in-place constructor failed")
		}
	}
	return ptr, nil
}

// Release pushes ptr back onto the free stack, making its slot
// eligible for future acquisition. Release never runs the reset hook;
// any live object at ptr is the caller's to have destroyed already.
// Prefer DestructAndRelease for live objects.
//
// With validation enabled (WithValidation) the address is checked to
// be slot-aligned inside the arena and not already free; a violation
// returns ErrorTypeInvalidRelease and the free stack is untouched.
// Without validation the caller is trusted, exactly like a
// release-mode assert: an invalid release silently corrupts the pool.
func (p *Pool[T]) Release(ptr *T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkRelease(ptr); err != nil {
		return err
	}
	p.push(ptr)
	return nil
}

// DestructAndRelease destroys the object at ptr and then releases its
// slot. Destruction means running the pool's reset hook (WithReset),
// or zeroing the slot when no hook is configured. This is the safe
// composite for live objects: it fixes the destruct-before-release
// ordering so callers cannot get it backwards.
//
// Validation (when enabled) runs before the reset hook, so an invalid
// address destroys nothing. In the thread-safe variant the reset hook
// runs while the pool lock is held.
func (p *Pool[T]) DestructAndRelease(ptr *T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkRelease(ptr); err != nil {
		return err
	}
	if p.reset != nil {
		p.reset(ptr)
	} else {
		var zero T
		*ptr = zero
	}
	atomic.AddInt64(&p.stats.destructs, 1)
	p.push(ptr)
	return nil
}

// Move transfers the arena, the free stack, the cursor, and the
// ownership mode to a fresh Pool instance and returns it. Outstanding
// slots stay outstanding and are released through the new instance.
//
// The source is left structurally empty: it owns nothing, Close on it
// is a no-op, and any other operation on it fails with
// ErrorTypeClosed. The caller must guarantee no operation on the
// source is in flight during the move; the move itself takes no lock
// against concurrent use.
func (p *Pool[T]) Move() *Pool[T] {
	np := &Pool[T]{
		name:       p.name,
		capacity:   p.capacity,
		stride:     p.stride,
		slots:      p.slots,
		free:       p.free,
		top:        p.top,
		inUse:      p.inUse,
		mode:       p.mode,
		mapping:    p.mapping,
		threadSafe: p.threadSafe,
		validate:   p.validate,
		reset:      p.reset,
		obs:        p.obs,
	}
	if np.threadSafe {
		np.mu = &sync.Mutex{}
	} else {
		np.mu = nopLocker{}
	}
	np.stats.acquires = atomic.LoadInt64(&p.stats.acquires)
	np.stats.releases = atomic.LoadInt64(&p.stats.releases)
	np.stats.constructs = atomic.LoadInt64(&p.stats.constructs)
	np.stats.destructs = atomic.LoadInt64(&p.stats.destructs)
	np.stats.exhausted = atomic.LoadInt64(&p.stats.exhausted)
	np.stats.inUse = atomic.LoadInt64(&p.stats.inUse)

	// The source owns nothing now; releasing resources is the new
	// instance's job.
	p.slots = nil
	p.free = nil
	p.inUse = nil
	p.mapping = nil
	p.mode = ownershipBorrowed
	p.top = 0
	return np
}

// Close releases whatever backing memory the pool owns. Off-heap
// arenas are unmapped; heap arenas are dropped for the garbage
// collector; borrowed buffers are never touched. Close is idempotent,
// and a closed pool fails every further operation with
// ErrorTypeClosed.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.mode == ownershipOffHeap && p.mapping != nil {
		if e := mmap.Free(p.mapping); e != nil {
			err = errors.Wrap(e, errors.ErrorTypeInternal, "cannot unmap arena")
		}
		p.mapping = nil
	}
	p.slots = nil
	p.free = nil
	p.inUse = nil
	p.top = 0
	return err
}

// Capacity returns the fixed number of slots. It never locks;
// capacity is immutable after construction.
func (p *Pool[T]) Capacity() int {
	return p.capacity
}

// PhysicalSize returns the arena size in bytes:
// capacity * sizeof(T). It never locks and never fails.
func (p *Pool[T]) PhysicalSize() int {
	return p.capacity * int(p.stride)
}

// FreeCount returns the number of currently unused slots. It bounds
// the number of acquisitions that can succeed before the next release.
func (p *Pool[T]) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.top
}

// Name returns the pool's name as used in trace and metric labels
func (p *Pool[T]) Name() string {
	return p.name
}

// PhysicalSizeFor returns the arena size in bytes a pool of n values
// of type T needs: n * sizeof(T). Use it to size the arena buffer for
// NewBorrowed before any pool exists.
func PhysicalSizeFor[T any](n int) int {
	var zero T
	if n <= 0 {
		return 0
	}
	return n * int(unsafe.Sizeof(zero))
}

// pop removes and returns the top free-stack address.
// The caller holds the lock.
func (p *Pool[T]) pop() (*T, error) {
	if p.slots == nil {
		return nil, errors.New(errors.ErrorTypeClosed, "pool is closed or was moved from")
	}
	if p.top == 0 {
		atomic.AddInt64(&p.stats.exhausted, 1)
		if p.obs != nil {
			p.obs.Exhausted(p.name)
		}
		return nil, errors.Newf(errors.ErrorTypeExhausted, "all %d slots outstanding", p.capacity)
	}

	p.top--
	ptr := p.free[p.top]
	if p.validate {
		idx := p.slotIndex(ptr)
		p.inUse[idx/64] |= 1 << (idx % 64)
	}
	atomic.AddInt64(&p.stats.acquires, 1)
	atomic.AddInt64(&p.stats.inUse, 1)
	if p.obs != nil {
		p.obs.Acquired(p.name, p.slotIndex(ptr), p.top)
	}
	return ptr, nil
}

// push appends an already-validated address to the free stack.
// The caller holds the lock.
func (p *Pool[T]) push(ptr *T) {
	if p.validate {
		idx := p.slotIndex(ptr)
		p.inUse[idx/64] &^= 1 << (idx % 64)
	}
	p.free[p.top] = ptr
	p.top++
	atomic.AddInt64(&p.stats.releases, 1)
	atomic.AddInt64(&p.stats.inUse, -1)
	if p.obs != nil {
		p.obs.Released(p.name, p.slotIndex(ptr), p.top)
	}
}

// checkRelease rejects releases a validated build must not accept.
// Without validation only the closed state is checked; everything else
// is the caller's contract. The caller holds the lock.
func (p *Pool[T]) checkRelease(ptr *T) error {
	if p.slots == nil {
		return errors.New(errors.ErrorTypeClosed, "pool is closed or was moved from")
	}
	if !p.validate {
		return nil
	}
	if ptr == nil {
		return errors.New(errors.ErrorTypeInvalidRelease, "nil address")
	}

	base := uintptr(unsafe.Pointer(&p.slots[0]))
	addr := uintptr(unsafe.Pointer(ptr))
	// Valid addresses are exactly base + i*stride for 0 <= i <
	// capacity. The address one stride past the last slot is outside
	// the arena even though it compares inside a naive end bound.
	if addr < base || addr >= base+uintptr(p.capacity)*p.stride {
		return errors.Newf(errors.ErrorTypeInvalidRelease,
			"address %#x outside arena [%#x, %#x)", addr, base, base+uintptr(p.capacity)*p.stride)
	}
	if (addr-base)%p.stride != 0 {
		return errors.Newf(errors.ErrorTypeInvalidRelease,
			"address %#x is not slot-aligned", addr)
	}
	idx := int((addr - base) / p.stride)
	if p.inUse[idx/64]&(1<<(idx%64)) == 0 {
		return errors.Newf(errors.ErrorTypeInvalidRelease,
			"double release of slot %d", idx)
	}
	return nil
}

// slotIndex maps an in-arena address to its slot index.
// Only called with addresses the pool handed out or validated.
func (p *Pool[T]) slotIndex(ptr *T) int {
	base := uintptr(unsafe.Pointer(&p.slots[0]))
	return int((uintptr(unsafe.Pointer(ptr)) - base) / p.stride)
}

// nopLocker is the single-threaded variant's stand-in for the mutex
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// itoa formats a counter without pulling fmt into the hot path
func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
