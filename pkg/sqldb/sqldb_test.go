package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-embeddb/embeddb/pkg/engine"
	"github.com/go-embeddb/embeddb/pkg/registry"
)

func newConn(t *testing.T, reg registry.Registry, filename string) *Connection {
	t.Helper()
	c, err := Connect(reg, filename)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return c
}

func exec(t *testing.T, c *Connection, sql string) []engine.Tuple {
	t.Helper()
	tuples, err := c.Execute(context.Background(), sql)
	if err != nil {
		t.Fatalf("Execute(%q): %v", sql, err)
	}
	return tuples
}

func TestE1OrderedSelect(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "e1.db"))

	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, c, "INSERT INTO names VALUES ('James', 1), ('Yaxin', 3), ('Rui', 2);")
	tuples := exec(t, c, "SELECT name, id FROM names ORDER BY id;")

	want := []string{"James", "Rui", "Yaxin"}
	if len(tuples) != 3 {
		t.Fatalf("got %d tuples, want 3", len(tuples))
	}
	for i, w := range want {
		if tuples[i][0] != w {
			t.Errorf("tuple %d = %v, want name %q", i, tuples[i], w)
		}
	}
}

func TestE2Aggregate(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "e2.db"))

	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, c, "INSERT INTO names VALUES ('James', 1), ('Yaxin', 3), ('Rui', 2);")
	tuples := exec(t, c, "SELECT MAX id FROM names;")

	if len(tuples) != 1 || tuples[0][0] != int64(3) {
		t.Fatalf("got %v, want a single tuple [3]", tuples)
	}
}

func TestE3LeftOuterJoin(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "e3.db"))

	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, c, "INSERT INTO names VALUES ('James', 1), ('Yaxin', 3);")
	exec(t, c, "CREATE TABLE grades (id INTEGER, grade TEXT);")
	exec(t, c, "INSERT INTO grades VALUES (1, 'A');")

	tuples := exec(t, c, "SELECT names.name, grades.grade FROM names LEFT OUTER JOIN grades ON names.id = grades.id ORDER BY names.id;")
	if len(tuples) != 2 {
		t.Fatalf("got %d tuples, want 2", len(tuples))
	}
	if tuples[0][0] != "James" || tuples[0][1] != "A" {
		t.Errorf("tuple 0 = %v, want [James A]", tuples[0])
	}
	if tuples[1][0] != "Yaxin" || tuples[1][1] != nil {
		t.Errorf("tuple 1 = %v, want [Yaxin <nil>]", tuples[1])
	}
}

func TestE4TransactionRollbackAcrossConnections(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	filename := filepath.Join(t.TempDir(), "e4.db")
	writer := newConn(t, reg, filename)
	exec(t, writer, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, writer, "INSERT INTO names VALUES ('James', 1);")

	exec(t, writer, "BEGIN TRANSACTION;")
	exec(t, writer, "INSERT INTO names VALUES ('Ghost', 99);")
	if _, err := writer.Execute(context.Background(), "ROLLBACK TRANSACTION;"); err != nil {
		t.Fatalf("ROLLBACK: %v", err)
	}

	reader := newConn(t, reg, filename)
	tuples := exec(t, reader, "SELECT id FROM names;")
	if len(tuples) != 1 {
		t.Fatalf("got %d rows after rollback, want 1 (rolled-back insert must not be visible)", len(tuples))
	}
}

func TestE5LockConflictAcrossConnections(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	filename := filepath.Join(t.TempDir(), "e5.db")
	setup := newConn(t, reg, filename)
	exec(t, setup, "CREATE TABLE names (name TEXT, id INTEGER);")

	a := newConn(t, reg, filename)
	b := newConn(t, reg, filename)

	if _, err := a.Execute(context.Background(), "BEGIN EXCLUSIVE TRANSACTION;"); err != nil {
		t.Fatalf("connection A BEGIN EXCLUSIVE: %v", err)
	}
	_, err := b.Execute(context.Background(), "INSERT INTO names VALUES ('Blocked', 1);")
	if err == nil {
		t.Fatal("expected connection B's write to conflict with A's exclusive lock")
	}
	sqlErr, ok := err.(*Error)
	if !ok || sqlErr.Kind != ErrLockConflict {
		t.Fatalf("got %v, want an *Error with Kind ErrLockConflict", err)
	}
}

func TestE6ViewOverJoinReEvaluatesOnRead(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "e6.db"))

	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, c, "INSERT INTO names VALUES ('James', 1);")
	exec(t, c, "CREATE TABLE grades (id INTEGER, grade TEXT);")
	exec(t, c, "INSERT INTO grades VALUES (1, 'A');")
	exec(t, c, "CREATE VIEW report AS SELECT names.name, grades.grade FROM names LEFT OUTER JOIN grades ON names.id = grades.id;")

	first := exec(t, c, "SELECT * FROM report;")
	if len(first) != 1 || first[0][0] != "James" || first[0][1] != "A" {
		t.Fatalf("got %v, want [[James A]]", first)
	}

	exec(t, c, "INSERT INTO names VALUES ('Yaxin', 2);")
	second := exec(t, c, "SELECT * FROM report;")
	if len(second) != 2 {
		t.Fatalf("got %d rows after base-table insert, want 2 (view must re-execute on read)", len(second))
	}
}

func TestAutoCommitWriteIsVisibleAfterStatement(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	filename := filepath.Join(t.TempDir(), "autocommit.db")
	c := newConn(t, reg, filename)
	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, c, "INSERT INTO names VALUES ('James', 1);")

	other := newConn(t, reg, filename)
	tuples := exec(t, other, "SELECT id FROM names;")
	if len(tuples) != 1 {
		t.Fatalf("auto-commit insert should be immediately visible to a new connection, got %d rows", len(tuples))
	}
}

func TestDeferredTransactionCommitPublishesSnapshot(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	filename := filepath.Join(t.TempDir(), "deferred.db")
	c := newConn(t, reg, filename)
	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")

	exec(t, c, "BEGIN TRANSACTION;")
	exec(t, c, "INSERT INTO names VALUES ('James', 1);")
	if _, err := c.Execute(context.Background(), "COMMIT TRANSACTION;"); err != nil {
		t.Fatalf("COMMIT: %v", err)
	}

	other := newConn(t, reg, filename)
	tuples := exec(t, other, "SELECT id FROM names;")
	if len(tuples) != 1 {
		t.Fatalf("committed insert should be visible to a new connection, got %d rows", len(tuples))
	}
}

func TestDeferredReadOnlyTransactionCommitsWithoutLockConflict(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	filename := filepath.Join(t.TempDir(), "readonly.db")
	c := newConn(t, reg, filename)
	exec(t, c, "CREATE TABLE names (name TEXT, id INTEGER);")
	exec(t, c, "INSERT INTO names VALUES ('James', 1);")

	exec(t, c, "BEGIN TRANSACTION;")
	exec(t, c, "SELECT id FROM names;")
	if _, err := c.Execute(context.Background(), "COMMIT TRANSACTION;"); err != nil {
		t.Fatalf("COMMIT of a read-only DEFERRED transaction should not conflict on the shared lock: %v", err)
	}

	// The lock must actually have been released: a second connection should
	// be able to take the exclusive lock a write needs.
	other := newConn(t, reg, filename)
	if _, err := other.Execute(context.Background(), "INSERT INTO names VALUES ('Yaxin', 2);"); err != nil {
		t.Fatalf("a later write should not be blocked by the committed read-only transaction: %v", err)
	}
}

func TestBeginUnknownModeIsTransactionState(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "badmode.db"))
	_, err := c.Execute(context.Background(), "BEGIN FOO TRANSACTION;")
	if err == nil {
		t.Fatal("expected an error for an unrecognized BEGIN mode")
	}
	sqlErr, ok := err.(*Error)
	if !ok || sqlErr.Kind != ErrTransactionState {
		t.Fatalf("got %v, want an *Error with Kind ErrTransactionState", err)
	}
}

func TestCreateTableIfNotExistsIsIdempotent(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "ifnotexists.db"))
	exec(t, c, "CREATE TABLE names (id INTEGER);")
	if _, err := c.Execute(context.Background(), "CREATE TABLE IF NOT EXISTS names (id INTEGER);"); err != nil {
		t.Fatalf("CREATE TABLE IF NOT EXISTS should not error on an existing table: %v", err)
	}
}

func TestUnknownStatementIsSilentlyIgnored(t *testing.T) {
	reg := registry.NewMemoryRegistry(nil)
	c := newConn(t, reg, filepath.Join(t.TempDir(), "unknown.db"))
	tuples, err := c.Execute(context.Background(), "VACUUM;")
	if err != nil {
		t.Fatalf("unknown statement should be silently ignored, got error: %v", err)
	}
	if tuples != nil {
		t.Fatalf("got %v, want nil tuples", tuples)
	}
}
