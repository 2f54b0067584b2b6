package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConnectionConfig(t *testing.T) {
	config := DefaultConnectionConfig("/test/path.db")

	if config.Path != "/test/path.db" {
		t.Errorf("Path = %q, want %q", config.Path, "/test/path.db")
	}
	if config.BusyTimeout != 5000 {
		t.Errorf("BusyTimeout = %d, want 5000", config.BusyTimeout)
	}
	if config.MaxOpenConns != 1 {
		t.Errorf("MaxOpenConns = %d, want 1", config.MaxOpenConns)
	}
}

func TestNewSQLiteConnection_EmptyPath(t *testing.T) {
	db, err := NewSQLiteConnection(ConnectionConfig{})
	if err == nil {
		db.Close()
		t.Fatal("expected error for empty path, got nil")
	}
}

func TestNewSQLiteConnection_WALMode(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wal.db")

	db, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteConnection() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}
}

func TestNewSQLiteConnection_Memory(t *testing.T) {
	db, err := NewSQLiteConnectionWithDefaults(MemoryPath)
	if err != nil {
		t.Fatalf("NewSQLiteConnection(memory) error = %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestIsMemory(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{":memory:", true},
		{"file::memory:?cache=shared", true},
		{"/tmp/state.db", false},
		{"memory.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMemory(tt.path); got != tt.want {
				t.Errorf("IsMemory(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
