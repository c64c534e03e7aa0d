package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/roach88/resql/internal/dispatch"
	"github.com/roach88/resql/internal/querysql"
	"github.com/roach88/resql/internal/route"
	"github.com/roach88/resql/internal/savedquery"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dispatcher executes saved queries. *dispatch.Dispatcher implements it.
type Dispatcher interface {
	ExecuteSingle(ctx context.Context, project string, method savedquery.Method, name string, params map[string]any) ([]dispatch.Row, error)
	ExecuteBatch(ctx context.Context, name string, batch []map[string]any) ([][]dispatch.Row, error)
	Has(project string, method savedquery.Method, name string) bool
}

// Handler routes requests to saved queries.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(d Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: d, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var method savedquery.Method
	switch r.Method {
	case http.MethodGet:
		method = savedquery.MethodGet
	case http.MethodPost:
		method = savedquery.MethodPost
	default:
		w.Header().Set("Allow", "GET, POST")
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error: fmt.Sprintf("method %s not allowed", r.Method),
			Code:  ErrCodeMethodNotAllowed,
		})
		return
	}

	if method == savedquery.MethodPost {
		if base, ok := route.ResolveBatch(r.URL.Path, h.postQueryExists); ok {
			h.handleBatch(w, r, base)
			return
		}
	}

	project, name, err := route.Resolve(r.URL.Path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var params map[string]any
	if method == savedquery.MethodGet {
		params = queryParams(r.URL.Query())
	} else {
		params, err = readParams(w, r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	rows, err := h.dispatcher.ExecuteSingle(r.Context(), project, method, name, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request, base string) {
	batch, err := readBatch(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	results, err := h.dispatcher.ExecuteBatch(r.Context(), base, batch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *Handler) postQueryExists(project, name string) bool {
	return h.dispatcher.Has(project, savedquery.MethodPost, name)
}

// queryParams keeps the first value of each query-string parameter.
func queryParams(values url.Values) map[string]any {
	params := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

// readParams decodes an optional JSON object body.
func readParams(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	v, err := decodeBody(w, r)
	if err != nil {
		return nil, err
	}
	switch body := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return body, nil
	default:
		return nil, &requestError{msg: "request body must be a JSON object"}
	}
}

// readBatch decodes a batch body: either a JSON array of objects or an
// object whose "queries" field is one.
func readBatch(w http.ResponseWriter, r *http.Request) ([]map[string]any, error) {
	v, err := decodeBody(w, r)
	if err != nil {
		return nil, err
	}

	if obj, ok := v.(map[string]any); ok {
		v = obj["queries"]
	}
	entries, ok := v.([]any)
	if !ok {
		return nil, &requestError{msg: `batch body must be a JSON array or {"queries": [...]}`}
	}

	batch := make([]map[string]any, len(entries))
	for i, entry := range entries {
		switch params := entry.(type) {
		case nil:
			batch[i] = map[string]any{}
		case map[string]any:
			batch[i] = params
		default:
			return nil, &requestError{msg: fmt.Sprintf("batch entry %d must be a JSON object", i)}
		}
	}
	return batch, nil
}

// decodeBody reads one JSON value from the body. An empty body decodes to
// nil. Numbers become int64 when integral and float64 otherwise. Bodies
// over maxBodyBytes fail with *http.MaxBytesError.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	if r.Body == nil {
		return nil, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &requestError{msg: "malformed JSON body", err: err}
	}
	if dec.More() {
		return nil, &requestError{msg: "request body must contain a single JSON value"}
	}
	return querysql.NormalizeNumbers(v), nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed writing response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err)
	} else {
		h.logger.Debug("request rejected",
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}
	h.writeJSON(w, status, resp)
}
