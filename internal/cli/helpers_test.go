package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/roach88/resql/internal/store"
	"github.com/roach88/resql/internal/testutil"
)

// shopQueries is a small but complete saved query tree.
var shopQueries = map[string]string{
	"billing/GET/Invoices.sql":    "SELECT * FROM invoices WHERE id = $id",
	"shop/GET/orders/recent.sql":  "SELECT id, customer FROM orders WHERE customer = :customer ORDER BY id LIMIT :limit",
	"shop/GET/orders/recent.cue":  "customer: string\nlimit?: int\n",
	"shop/GET/status.sql":         "SELECT 1 AS ok",
	"shop/POST/orders/create.sql": "INSERT INTO orders (id, customer) VALUES (@id, @customer)",
}

// executeCommand runs the root command with args and returns what it
// wrote to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// newShopDB creates a database with an orders table holding two rows.
func newShopDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	testutil.Exec(t, st.DB(),
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, customer TEXT NOT NULL)",
		"CREATE TABLE invoices (id INTEGER PRIMARY KEY, total REAL)",
		"INSERT INTO orders (id, customer) VALUES (1, 'acme'), (2, 'acme'), (3, 'globex')",
	)
	return path
}
