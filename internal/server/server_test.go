package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resql/internal/dispatch"
	"github.com/roach88/resql/internal/savedquery"
)

// stubDispatcher answers every single query with one fixed row.
type stubDispatcher struct{}

func (stubDispatcher) ExecuteSingle(context.Context, string, savedquery.Method, string, map[string]any) ([]dispatch.Row, error) {
	return []dispatch.Row{{"ok": true}}, nil
}

func (stubDispatcher) ExecuteBatch(context.Context, string, []map[string]any) ([][]dispatch.Row, error) {
	return [][]dispatch.Row{}, nil
}

func (stubDispatcher) Has(string, savedquery.Method, string) bool {
	return false
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(stubDispatcher{}, DefaultConfig(), WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	transport := &http.Transport{DisableKeepAlives: true}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}

	resp, err := client.Get("http://" + ln.Addr().String() + "/shop/anything")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"ok": true}]`, string(body))
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultConfig()
	cfg.Listen = "not-an-address"

	err := New(stubDispatcher{}, cfg, WithLogger(logger)).ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on not-an-address")
}
