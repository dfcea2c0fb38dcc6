// Package txn implements the three-tier, purely-arithmetic lock manager
// that backs the engine's five-mode transaction protocol. It never blocks
// or queues: conflicts surface immediately to the caller as errors.
package txn

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Mode names one of the three lock tiers, or none.
type Mode int

const (
	None Mode = iota
	Shared
	Reserved
	Exclusive
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Shared:
		return "shared"
	case Reserved:
		return "reserved"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// ErrLockConflict is returned by AddLock when the requested transition
// violates the arithmetic rules in SPEC_FULL.md §4.5.
var ErrLockConflict = errors.New("lock-conflict")

// LockManager holds the three counters shared by every connection open
// against one database file. It is guarded by a mutex (grounded on the
// teacher's AlertManager.mu sync.RWMutex shape) since connections run
// concurrently against the same Registry entry.
type LockManager struct {
	mu sync.Mutex

	shared    int
	reserved  int
	exclusive int

	log *zap.Logger
}

// NewLockManager constructs an empty LockManager. A nil logger falls back
// to zap's no-op logger.
func NewLockManager(log *zap.Logger) *LockManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &LockManager{log: log}
}

// AddLock attempts to move the caller from currentlyHeld to requested.
// Idempotent when requested == currentlyHeld. Returns ErrLockConflict on
// any rule violation, wrapped with the specific reason.
func (lm *LockManager) AddLock(requested, currentlyHeld Mode) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if requested == currentlyHeld {
		lm.log.Debug("lock request is a no-op", zap.Stringer("mode", requested))
		return nil
	}

	switch requested {
	case Shared:
		if lm.exclusive != 0 {
			return lm.reject(requested, currentlyHeld, "exclusive lock held")
		}
		lm.shared++

	case Reserved:
		if lm.reserved != 0 || lm.exclusive != 0 {
			return lm.reject(requested, currentlyHeld, "reserved or exclusive lock held")
		}
		if currentlyHeld == Shared {
			lm.shared--
		}
		lm.reserved++

	case Exclusive:
		if lm.exclusive != 0 || lm.shared != 0 {
			return lm.reject(requested, currentlyHeld, "exclusive or shared lock held")
		}
		if lm.reserved == 1 && currentlyHeld != Reserved {
			return lm.reject(requested, currentlyHeld, "reserved lock held by another connection")
		}
		if lm.reserved == 1 {
			lm.reserved--
		}
		lm.exclusive++

	default:
		return lm.reject(requested, currentlyHeld, "unrecognized mode")
	}

	lm.log.Debug("lock transition accepted",
		zap.Stringer("from", currentlyHeld), zap.Stringer("to", requested))
	return nil
}

// RemoveLock releases held, decrementing its counter. Releasing None is a
// no-op.
func (lm *LockManager) RemoveLock(held Mode) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	switch held {
	case Shared:
		if lm.shared > 0 {
			lm.shared--
		}
	case Reserved:
		if lm.reserved > 0 {
			lm.reserved--
		}
	case Exclusive:
		if lm.exclusive > 0 {
			lm.exclusive--
		}
	}
	lm.log.Debug("lock released", zap.Stringer("mode", held))
}

func (lm *LockManager) reject(requested, currentlyHeld Mode, reason string) error {
	lm.log.Warn("lock transition rejected",
		zap.Stringer("from", currentlyHeld), zap.Stringer("to", requested),
		zap.Int("shared", lm.shared), zap.Int("reserved", lm.reserved), zap.Int("exclusive", lm.exclusive),
		zap.String("reason", reason))
	return fmt.Errorf("%w: cannot move from %s to %s: %s", ErrLockConflict, currentlyHeld, requested, reason)
}
