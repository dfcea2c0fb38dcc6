package registry

import "testing"

func TestOpenCreatesEmptyDatabaseWhenFileAbsent(t *testing.T) {
	reg := NewMemoryRegistry(nil)
	db, lm, err := reg.Open("/nonexistent/path/does-not-exist.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if db == nil || lm == nil {
		t.Fatal("expected a non-nil database and lock manager")
	}
	if db.Size() != 0 {
		t.Fatalf("fresh database size = %d, want 0", db.Size())
	}
}

func TestOpenSameFilenameSharesThePair(t *testing.T) {
	reg := NewMemoryRegistry(nil)
	db1, lm1, err := reg.Open("shared.db")
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db2, lm2, err := reg.Open("shared.db")
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if db1 != db2 {
		t.Error("expected the same *Database pointer across opens of the same filename")
	}
	if lm1 != lm2 {
		t.Error("expected the same *LockManager pointer across opens of the same filename")
	}
}

func TestOpenDifferentFilenamesAreIndependent(t *testing.T) {
	reg := NewMemoryRegistry(nil)
	db1, _, _ := reg.Open("a.db")
	db2, _, _ := reg.Open("b.db")
	if db1 == db2 {
		t.Error("expected distinct databases for distinct filenames")
	}
}

func TestPublishUpdatesTheRegisteredDatabase(t *testing.T) {
	reg := NewMemoryRegistry(nil)
	original, _, err := reg.Open("pub.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	replacement := original.Clone()
	if err := reg.Publish("pub.db", replacement); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, _, err := reg.Open("pub.db")
	if err != nil {
		t.Fatalf("Open after Publish: %v", err)
	}
	if got != replacement {
		t.Error("expected Open to return the published replacement")
	}
}

func TestPublishBeforeOpenErrors(t *testing.T) {
	reg := NewMemoryRegistry(nil)
	db, _, _ := reg.Open("scratch.db")
	if err := reg.Publish("never-opened.db", db); err == nil {
		t.Fatal("expected an error publishing to a filename that was never opened")
	}
}
