package dispatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/resql/internal/registry"
	"github.com/roach88/resql/internal/savedquery"
)

type execCall struct {
	template string
	params   map[string]any
}

// fakeExecutor records calls and answers them with respond.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   []execCall
	respond func(template string, params map[string]any) ([]Row, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, template string, params map[string]any) ([]Row, error) {
	f.mu.Lock()
	f.calls = append(f.calls, execCall{template: template, params: params})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.respond == nil {
		return []Row{}, nil
	}
	return f.respond(template, params)
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type queryFixture struct {
	project string
	method  savedquery.Method
	name    string
	body    string
	schema  string
}

func newRegistry(t *testing.T, fixtures ...queryFixture) *registry.Registry {
	t.Helper()
	var defs []savedquery.Definition
	for _, f := range fixtures {
		var opts []savedquery.ParseOption
		if f.schema != "" {
			opts = append(opts, savedquery.WithSchemaSource(f.name+".cue", []byte(f.schema)))
		}
		def, err := savedquery.Parse(
			savedquery.Key{Project: f.project, Method: f.method, Name: f.name},
			f.name+".sql", []byte(f.body), opts...)
		require.NoError(t, err)
		defs = append(defs, def)
	}
	reg, err := registry.New(defs...)
	require.NoError(t, err)
	return reg
}

func shopRegistry(t *testing.T) *registry.Registry {
	return newRegistry(t,
		queryFixture{"shop", savedquery.MethodGet, "orders/recent", "SELECT * FROM orders WHERE customer = :customer", ""},
		queryFixture{"shop", savedquery.MethodGet, "orders/strict", "SELECT * FROM orders WHERE customer = :customer", "customer: string\n"},
		queryFixture{"shop", savedquery.MethodPost, "orders/create", "INSERT INTO orders (id) VALUES (:id)", ""},
		queryFixture{"acme", savedquery.MethodPost, "billing/invoice", "SELECT :id AS id", ""},
	)
}
