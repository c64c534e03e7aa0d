package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/resql/internal/querysql"
	"github.com/roach88/resql/internal/testutil"
)

// createTestStore opens a fresh database seeded with an orders table.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	testutil.Exec(t, s.DB(),
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer TEXT NOT NULL, total REAL, note BLOB)`,
		`INSERT INTO orders (id, customer, total, note) VALUES (1, 'acme', 12.5, x'6869')`,
		`INSERT INTO orders (id, customer, total, note) VALUES (2, 'acme', 40, NULL)`,
		`INSERT INTO orders (id, customer, total, note) VALUES (3, 'globex', 7.25, NULL)`,
	)
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	testutil.Exec(t, s1.DB(), `CREATE TABLE kept (id INTEGER)`, `INSERT INTO kept VALUES (7)`)
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var id int
	if err := s2.db.QueryRow("SELECT id FROM kept").Scan(&id); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_MaxOpenConns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, WithMaxOpenConns(4))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if got := s.DB().Stats().MaxOpenConnections; got != 4 {
		t.Errorf("MaxOpenConnections = %d, want 4", got)
	}

	s2, err := Open(filepath.Join(t.TempDir(), "other.db"), WithMaxOpenConns(0))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s2.Close()

	if got := s2.DB().Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want default 1", got)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.want); err != nil {
				t.Error(err)
			}
		})
	}
}

// Execute tests

func TestExecute_ReturnsRowsInOrder(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(),
		"SELECT id, customer, total, note FROM orders WHERE customer = :customer ORDER BY id",
		map[string]any{"customer": "acme"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	want := []map[string]any{
		{"id": int64(1), "customer": "acme", "total": 12.5, "note": "hi"},
		{"id": int64(2), "customer": "acme", "total": 40.0, "note": nil},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_AllPlaceholderPrefixes(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(),
		"SELECT id FROM orders WHERE customer = :customer AND total > @min AND id <> $skip ORDER BY id",
		map[string]any{"customer": "acme", "min": 10, "skip": float64(2)})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	want := []map[string]any{{"id": int64(1)}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_RepeatedPlaceholder(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(),
		"SELECT :v AS a, :v AS b",
		map[string]any{"v": "x"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	want := []map[string]any{{"a": "x", "b": "x"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_NonASCIIPlaceholder(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(),
		"SELECT :café AS a, @naïve AS b",
		map[string]any{"café": "noir", "naïve": "yes"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	want := []map[string]any{{"a": "noir", "b": "yes"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_MissingParamBindsNull(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(), "SELECT :missing IS NULL AS is_null", nil)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	want := []map[string]any{{"is_null": int64(1)}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_EmptyResultIsNonNil(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(),
		"SELECT id FROM orders WHERE customer = :customer",
		map[string]any{"customer": "nobody"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %#v, want empty non-nil slice", rows)
	}
}

func TestExecute_WriteStatement(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Execute(context.Background(),
		"INSERT INTO orders (id, customer, total) VALUES (:id, :customer, :total)",
		map[string]any{"id": 10, "customer": "initech", "total": 3})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("insert returned %d rows, want 0", len(rows))
	}

	var customer string
	if err := s.db.QueryRow("SELECT customer FROM orders WHERE id = 10").Scan(&customer); err != nil {
		t.Fatalf("insert not visible: %v", err)
	}
	if customer != "initech" {
		t.Errorf("customer = %q, want initech", customer)
	}
}

func TestExecute_BindError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Execute(context.Background(),
		"SELECT * FROM orders WHERE id = :id",
		map[string]any{"id": []any{1, 2}})

	var be *querysql.BindError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *querysql.BindError", err)
	}
	if be.Param != "id" {
		t.Errorf("Param = %q, want id", be.Param)
	}
}

func TestExecute_SQLError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Execute(context.Background(), "SELECT * FROM no_such_table", nil)
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
	var be *querysql.BindError
	if errors.As(err, &be) {
		t.Errorf("SQL failure reported as bind error: %v", err)
	}
}

func TestExecute_CanceledContext(t *testing.T) {
	s := createTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Execute(ctx, "SELECT id FROM orders", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
