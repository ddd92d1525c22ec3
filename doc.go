// Package freelist documents the freelist module: a fixed-capacity,
// typed object pool for Go built on a free-list allocator.
//
// A pool preallocates one contiguous arena sized for exactly N
// instances of a caller-chosen type and hands out and reclaims
// individual slots in O(1), with no general-purpose allocation after
// setup. The design targets workloads that repeatedly construct and
// destroy many same-typed, same-sized objects — simulation entities,
// game objects, protocol frames — where heap fragmentation and
// allocation-latency jitter matter more than flexibility.
//
// # Packages
//
// The core lives in pkg/freelist:
//
//   - freelist.Pool[T] — the pool: arena, LIFO free stack, acquire /
//     release / construct / destruct-and-release, move, close
//   - Owning pools (heap or off-heap anonymous mappings) and
//     borrowing pools over caller-supplied buffers
//   - Per-instance variants: thread safety, validated releases,
//     operation tracing
//
// Supporting packages:
//
//   - pkg/errors — structured error taxonomy (exhausted, allocation,
//     constructor, invalid release, closed, config)
//   - pkg/logger — zap-based structured logging
//   - pkg/metrics — Prometheus observer for pool traffic
//   - pkg/mmap — anonymous off-heap mappings
//   - pkg/config — YAML pool configuration for driver programs
//
// # Quick start
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
//	if errors.IsExhausted(err) {
//	    // every slot is outstanding; shed load or wait for a release
//	}
//	defer pool.DestructAndRelease(e)
//
// Guarantees worth knowing: a cold pool hands out slots in ascending
// index order; reuse is strictly LIFO; acquired slots may contain
// stale bytes from prior occupants; a pool is never copied — use Move
// to transfer ownership wholesale.
package freelist
