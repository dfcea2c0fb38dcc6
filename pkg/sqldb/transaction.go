package sqldb

import (
	"github.com/go-embeddb/embeddb/pkg/ast"
	"github.com/go-embeddb/embeddb/pkg/txn"
	"go.uber.org/zap"
)

// action names the four operations lockCheck arbitrates, per SPEC_FULL.md
// §4.7.
type action int

const (
	actionRead action = iota
	actionWrite
	actionCommit
	actionRelinquish
)

// lockCheck is the central policy procedure: every executor calls it
// before touching data. It consults (txMode, lockHeld) and the shared
// LockManager to pick a lock transition and to decide what the
// connection's working database handle should point at.
func (c *Connection) lockCheck(act action) error {
	switch c.txMode {
	case "":
		return c.lockCheckAutoCommit(act)
	case ast.ModeDeferred:
		return c.lockCheckDeferred(act)
	case ast.ModeImmediate:
		return c.lockCheckImmediate(act)
	case ast.ModeExclusive:
		return c.lockCheckExclusive(act)
	default:
		return &Error{Kind: ErrTransactionState, Message: "unknown transaction mode"}
	}
}

func (c *Connection) lockCheckAutoCommit(act action) error {
	switch act {
	case actionRead:
		if err := c.requestLock(txn.Shared); err != nil {
			return err
		}
		committed, _, _ := c.registry.Open(c.filename)
		c.db = committed
		return nil

	case actionWrite:
		if err := c.requestLock(txn.Exclusive); err != nil {
			return err
		}
		committed, _, _ := c.registry.Open(c.filename)
		c.db = committed.Clone()
		return nil

	case actionCommit:
		if err := c.requestLock(txn.Exclusive); err != nil {
			return err
		}
		if err := c.registry.Publish(c.filename, c.db); err != nil {
			return err
		}
		c.releaseLock()
		return nil

	case actionRelinquish:
		c.releaseLock()
		return nil
	}
	return nil
}

func (c *Connection) lockCheckDeferred(act action) error {
	switch act {
	case actionRead:
		if c.lockHeld == txn.None {
			return c.requestLock(txn.Shared)
		}
		return nil

	case actionWrite:
		if c.lockHeld != txn.Reserved && c.lockHeld != txn.Exclusive {
			return c.requestLock(txn.Reserved)
		}
		return nil

	case actionCommit:
		// A transaction that only ever read holds Shared at commit time: no
		// write occurred, so there is nothing to publish and no exclusive
		// upgrade is needed — just release, per the reference's commit()
		// (a held shared lock is dropped outright, never promoted).
		if c.lockHeld == txn.Shared {
			c.releaseLock()
			c.txMode = ""
			return nil
		}
		if err := c.requestLock(txn.Exclusive); err != nil {
			return err
		}
		if err := c.registry.Publish(c.filename, c.db); err != nil {
			return err
		}
		c.releaseLock()
		c.txMode = ""

	case actionRelinquish:
		c.releaseLock()
		c.txMode = ""
	}
	return nil
}

func (c *Connection) lockCheckImmediate(act action) error {
	switch act {
	case actionRead:
		return nil // reserved already held

	case actionWrite:
		if c.lockHeld != txn.Exclusive {
			return c.requestLock(txn.Reserved)
		}
		return nil

	case actionCommit:
		if err := c.requestLock(txn.Exclusive); err != nil {
			return err
		}
		if err := c.registry.Publish(c.filename, c.db); err != nil {
			return err
		}
		c.releaseLock()
		c.txMode = ""

	case actionRelinquish:
		c.releaseLock()
		c.txMode = ""
	}
	return nil
}

func (c *Connection) lockCheckExclusive(act action) error {
	switch act {
	case actionRead, actionWrite:
		return nil // exclusive already held

	case actionCommit:
		if err := c.registry.Publish(c.filename, c.db); err != nil {
			return err
		}
		c.releaseLock()
		c.txMode = ""

	case actionRelinquish:
		c.releaseLock()
		c.txMode = ""
	}
	return nil
}

func (c *Connection) requestLock(mode txn.Mode) error {
	if err := c.lm.AddLock(mode, c.lockHeld); err != nil {
		return &Error{Kind: ErrLockConflict, Message: err.Error()}
	}
	c.lockHeld = mode
	return nil
}

func (c *Connection) releaseLock() {
	c.lm.RemoveLock(c.lockHeld)
	c.lockHeld = txn.None
}

// beginTransaction opens a transaction in the requested mode. DEFERRED and
// IMMEDIATE deep-copy the committed database into the connection's private
// working set; IMMEDIATE additionally acquires a reserved lock at BEGIN
// time, EXCLUSIVE acquires an exclusive lock at BEGIN.
func (c *Connection) beginTransaction(stmt *ast.BeginStatement) error {
	if c.txMode != "" {
		return &Error{Kind: ErrTransactionState, Message: "a transaction is already open"}
	}

	committed, _, _ := c.registry.Open(c.filename)

	switch stmt.Mode {
	case ast.ModeDeferred:
		c.db = committed.Clone()
		c.txMode = ast.ModeDeferred

	case ast.ModeImmediate:
		c.db = committed.Clone()
		if err := c.requestLock(txn.Reserved); err != nil {
			return err
		}
		c.txMode = ast.ModeImmediate

	case ast.ModeExclusive:
		c.db = committed.Clone()
		if err := c.requestLock(txn.Exclusive); err != nil {
			return err
		}
		c.txMode = ast.ModeExclusive

	default:
		return &Error{Kind: ErrTransactionState, Message: "unknown transaction mode"}
	}

	c.log.Debug("transaction opened", zap.String("mode", string(stmt.Mode)))
	return nil
}

// commitTransaction publishes the connection's working snapshot as
// committed. An empty transaction (no lock ever taken) simply clears the
// mode, per spec.md §4.4.
func (c *Connection) commitTransaction() error {
	if c.txMode == "" {
		return &Error{Kind: ErrTransactionState, Message: "no transaction is open"}
	}
	if c.lockHeld == txn.None {
		c.txMode = ""
		return nil
	}
	if err := c.lockCheck(actionCommit); err != nil {
		return err
	}
	c.log.Debug("transaction committed")
	return nil
}

// rollbackTransaction discards the connection's private snapshot and
// releases whatever lock it holds.
func (c *Connection) rollbackTransaction() error {
	if c.txMode == "" {
		return &Error{Kind: ErrTransactionState, Message: "no transaction is open"}
	}
	c.releaseLock()
	c.txMode = ""
	committed, _, _ := c.registry.Open(c.filename)
	c.db = committed
	c.log.Debug("transaction rolled back")
	return nil
}
