// Package registry maps database filenames to their live *engine.Database
// and *txn.LockManager pair, the process-wide collaborator spec.md treats
// as external (specified only as an interface). Grounded on the teacher's
// pkg/schema/loader.go SchemaLoader — a mutable cache object rather than a
// package-level global — generalized into an explicit interface plus a
// default in-memory implementation so tests can construct independent
// registries.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-embeddb/embeddb/pkg/engine"
	"github.com/go-embeddb/embeddb/pkg/persistence"
	"github.com/go-embeddb/embeddb/pkg/txn"
	"go.uber.org/zap"
)

// Registry resolves a filename to its shared Database and LockManager,
// lazily loading from disk (or creating an empty database) on first Open.
type Registry interface {
	Open(filename string) (*engine.Database, *txn.LockManager, error)
	Publish(filename string, db *engine.Database) error
}

type entry struct {
	db *engine.Database
	lm *txn.LockManager
}

// MemoryRegistry is the default Registry: an in-process, mutex-guarded map
// from filename to entry.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]*entry
	log     *zap.Logger
}

// NewMemoryRegistry constructs an empty registry. A nil logger falls back
// to zap's no-op logger.
func NewMemoryRegistry(log *zap.Logger) *MemoryRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryRegistry{entries: map[string]*entry{}, log: log}
}

// Open returns the Database and LockManager registered for filename,
// loading it from disk on first access if the file exists, or creating an
// empty database named after filename otherwise. Subsequent Opens of the
// same filename return the same pair, shared across connections.
func (r *MemoryRegistry) Open(filename string) (*engine.Database, *txn.LockManager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[filename]; ok {
		return e.db, e.lm, nil
	}

	db, err := persistence.Load(filename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("registry: open %q: %w", filename, err)
		}
		r.log.Debug("no database file found, starting empty", zap.String("filename", filename), zap.Error(err))
		db = engine.NewDatabase(filename)
	}

	e := &entry{db: db, lm: txn.NewLockManager(r.log.Named("lock").With(zap.String("filename", filename)))}
	r.entries[filename] = e
	return e.db, e.lm, nil
}

// Publish replaces the committed database registered for filename with db,
// used by COMMIT to make a transaction's private snapshot visible to
// subsequently-opened connections.
func (r *MemoryRegistry) Publish(filename string, db *engine.Database) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[filename]
	if !ok {
		return fmt.Errorf("registry: %q was never opened", filename)
	}
	e.db = db
	return nil
}
