package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer Close(db)

	if !db.Migrator().HasTable(&KVEntry{}) {
		t.Errorf("kv_entries table was not created")
	}
}

func TestOpenRejectsNonDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.db")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a database\n", 100)), 0o600); err != nil {
		t.Fatal(err)
	}

	db, err := Open(path)
	if err == nil {
		Close(db)
		t.Fatalf("Open() succeeded on a file that is not a database")
	}
	if db != nil {
		t.Errorf("Open() returned a handle alongside error %v", err)
	}
}
