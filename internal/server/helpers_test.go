package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/resql/internal/dispatch"
	"github.com/roach88/resql/internal/registry"
	"github.com/roach88/resql/internal/store"
	"github.com/roach88/resql/internal/testutil"
)

var shopQueries = map[string]string{
	"shop/GET/orders/recent.sql":  "SELECT id, customer, total FROM orders WHERE customer = :customer ORDER BY id",
	"shop/GET/orders/count.sql":   "SELECT COUNT(*) AS n FROM orders",
	"shop/GET/orders/strict.sql":  "SELECT id FROM orders WHERE customer = :customer",
	"shop/GET/orders/strict.cue":  "customer: string\n",
	"shop/GET/boom.sql":           "SELECT * FROM missing_table",
	"shop/POST/orders/create.sql": "INSERT INTO orders (id, customer, total) VALUES (:id, :customer, :total)",
	"shop/POST/orders/byid.sql":   "SELECT id, customer FROM orders WHERE id = :id",
	"shop/POST/batch.sql":         "SELECT 'single' AS kind",
	"shop/POST/labels/batch.sql":  "SELECT :label AS label, 'single' AS kind",
	"shop/POST/labels.sql":        "SELECT :label AS label, 'batched' AS kind",
}

type testEnv struct {
	handler http.Handler
	store   *store.Store
	logs    *bytes.Buffer
}

// newTestEnv wires a registry, a seeded SQLite store and a dispatcher
// behind the server's handler chain.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	root := testutil.WriteTree(t, shopQueries)
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, _, err := registry.Load(root, registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	testutil.Exec(t, st.DB(),
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer TEXT NOT NULL, total REAL)`,
		`INSERT INTO orders VALUES (1, 'acme', 12.5)`,
		`INSERT INTO orders VALUES (2, 'acme', 40)`,
		`INSERT INTO orders VALUES (3, 'globex', 7.25)`,
	)

	d := dispatch.New(reg, st, dispatch.WithLogger(logger))
	srv := New(d, DefaultConfig(), append([]Option{WithLogger(logger)}, opts...)...)

	return &testEnv{handler: srv.Handler(), store: st, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
