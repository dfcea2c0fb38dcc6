package txn

import (
	"errors"
	"testing"
)

func TestAddLockIdempotentNoOp(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Shared, Shared); err != nil {
		t.Fatalf("requesting an already-held mode should be a no-op: %v", err)
	}
	if lm.shared != 0 {
		t.Fatalf("shared counter = %d, want 0 (no-op should not increment)", lm.shared)
	}
}

func TestAddSharedBlockedByExclusive(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Exclusive, None); err != nil {
		t.Fatalf("AddLock(Exclusive): %v", err)
	}
	if err := lm.AddLock(Shared, None); !errors.Is(err, ErrLockConflict) {
		t.Fatalf("got %v, want ErrLockConflict", err)
	}
}

func TestAddSharedAllowsMultiple(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Shared, None); err != nil {
		t.Fatalf("first AddLock(Shared): %v", err)
	}
	if err := lm.AddLock(Shared, None); err != nil {
		t.Fatalf("second AddLock(Shared) from another connection should succeed: %v", err)
	}
	if lm.shared != 2 {
		t.Fatalf("shared = %d, want 2", lm.shared)
	}
}

func TestAddReservedBlockedByExistingReserved(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Reserved, None); err != nil {
		t.Fatalf("first AddLock(Reserved): %v", err)
	}
	if err := lm.AddLock(Reserved, None); !errors.Is(err, ErrLockConflict) {
		t.Fatalf("a second connection taking Reserved should conflict, got %v", err)
	}
}

func TestAddReservedFromSharedReleasesShared(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Shared, None); err != nil {
		t.Fatalf("AddLock(Shared): %v", err)
	}
	if err := lm.AddLock(Reserved, Shared); err != nil {
		t.Fatalf("AddLock(Reserved) promoting from Shared: %v", err)
	}
	if lm.shared != 0 {
		t.Fatalf("shared = %d, want 0 after promotion", lm.shared)
	}
	if lm.reserved != 1 {
		t.Fatalf("reserved = %d, want 1", lm.reserved)
	}
}

func TestAddExclusiveBlockedByOtherSharedReaders(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Shared, None); err != nil {
		t.Fatalf("AddLock(Shared): %v", err)
	}
	if err := lm.AddLock(Exclusive, None); !errors.Is(err, ErrLockConflict) {
		t.Fatalf("got %v, want ErrLockConflict (another reader still holds shared)", err)
	}
}

func TestAddExclusiveBlockedByOthersReserved(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Reserved, None); err != nil {
		t.Fatalf("AddLock(Reserved): %v", err)
	}
	if err := lm.AddLock(Exclusive, None); !errors.Is(err, ErrLockConflict) {
		t.Fatalf("got %v, want ErrLockConflict (another connection holds reserved)", err)
	}
}

func TestAddExclusivePromotesOwnReserved(t *testing.T) {
	lm := NewLockManager(nil)
	if err := lm.AddLock(Reserved, None); err != nil {
		t.Fatalf("AddLock(Reserved): %v", err)
	}
	if err := lm.AddLock(Exclusive, Reserved); err != nil {
		t.Fatalf("promoting one's own Reserved to Exclusive should succeed: %v", err)
	}
	if lm.reserved != 0 || lm.exclusive != 1 {
		t.Fatalf("reserved=%d exclusive=%d, want 0,1", lm.reserved, lm.exclusive)
	}
}

func TestRemoveLockDecrementsAndFloorsAtZero(t *testing.T) {
	lm := NewLockManager(nil)
	lm.RemoveLock(Shared) // no held lock: must not go negative
	if lm.shared != 0 {
		t.Fatalf("shared = %d, want 0", lm.shared)
	}
	if err := lm.AddLock(Shared, None); err != nil {
		t.Fatalf("AddLock(Shared): %v", err)
	}
	lm.RemoveLock(Shared)
	if lm.shared != 0 {
		t.Fatalf("shared after release = %d, want 0", lm.shared)
	}
}

func TestRemoveLockNoneIsNoOp(t *testing.T) {
	lm := NewLockManager(nil)
	lm.RemoveLock(None)
	if lm.shared != 0 || lm.reserved != 0 || lm.exclusive != 0 {
		t.Fatal("releasing None should not touch any counter")
	}
}
