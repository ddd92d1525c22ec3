package freelist

import (
	"go.uber.org/zap"
)

// Observer receives a callback around each pool operation. It exists
// for tracing and metrics only; implementations must not assume any
// ordering guarantees beyond the pool's own contract and cannot
// influence operation outcomes.
//
// In the thread-safe variant callbacks run while the pool lock is
// held, so implementations should return quickly and must not call
// back into the pool.
type Observer interface {
	// PoolCreated fires once when a pool finishes construction
	PoolCreated(pool string, capacity int)
	// Acquired fires after a successful acquire; slot is the slot
	// index handed out and free the number of slots still unused.
	Acquired(pool string, slot int, free int)
	// Released fires after a successful release
	Released(pool string, slot int, free int)
	// Exhausted fires when an acquire fails because every slot is outstanding
	Exhausted(pool string)
	// ConstructFailed fires when an in-place constructor returns an error
	ConstructFailed(pool string)
}

// LogObserver traces pool operations to a zap logger at debug level.
// It is the verbose-tracing sink: wire it in during bring-up, leave it
// out in production.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates a tracing observer over the given logger
func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// PoolCreated implements Observer
func (o *LogObserver) PoolCreated(pool string, capacity int) {
	o.log.Debug("pool created",
		zap.String("pool", pool),
		zap.Int("capacity", capacity))
}

// Acquired implements Observer
func (o *LogObserver) Acquired(pool string, slot, free int) {
	o.log.Debug("slot acquired",
		zap.String("pool", pool),
		zap.Int("slot", slot),
		zap.Int("free", free))
}

// Released implements Observer
func (o *LogObserver) Released(pool string, slot, free int) {
	o.log.Debug("slot released",
		zap.String("pool", pool),
		zap.Int("slot", slot),
		zap.Int("free", free))
}

// Exhausted implements Observer
func (o *LogObserver) Exhausted(pool string) {
	o.log.Debug("pool exhausted", zap.String("pool", pool))
}

// ConstructFailed implements Observer
func (o *LogObserver) ConstructFailed(pool string) {
	o.log.Debug("in-place constructor failed", zap.String("pool", pool))
}
