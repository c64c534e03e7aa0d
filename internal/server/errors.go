package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/roach88/resql/internal/dispatch"
	"github.com/roach88/resql/internal/querysql"
	"github.com/roach88/resql/internal/registry"
	"github.com/roach88/resql/internal/route"
	"github.com/roach88/resql/internal/savedquery"
)

// Error codes used only by the transport.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeBodyTooLarge     = "BODY_TOO_LARGE"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeCanceled         = "CANCELED"
	ErrCodeInternal         = "INTERNAL"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Index *int   `json:"index,omitempty"`
}

// requestError reports a malformed request body.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error {
	return e.err
}

// classify maps an error to its HTTP status and response body. Internal
// failures are reported without detail; the caller logs them.
func classify(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var be *dispatch.BatchError
	if errors.As(err, &be) {
		index := be.Index
		resp.Index = &index
	}

	var reqErr *requestError
	var bindErr *querysql.BindError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		resp.Code = ErrCodeBodyTooLarge
		resp.Error = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
		return http.StatusRequestEntityTooLarge, resp
	case registry.IsNotFound(err):
		resp.Code = registry.ErrCodeNotFound
		return http.StatusNotFound, resp
	case route.IsRouteNotFound(err):
		resp.Code = route.ErrCodeRouteNotFound
		return http.StatusNotFound, resp
	case savedquery.IsValidationError(err):
		resp.Code = savedquery.ErrCodeInvalidParams
		return http.StatusBadRequest, resp
	case errors.As(err, &bindErr):
		resp.Code = querysql.ErrCodeInvalidParams
		return http.StatusBadRequest, resp
	case errors.As(err, &reqErr):
		resp.Code = ErrCodeBadRequest
		return http.StatusBadRequest, resp
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		resp.Code = ErrCodeCanceled
		return http.StatusServiceUnavailable, resp
	default:
		resp.Code = ErrCodeInternal
		resp.Error = "internal error"
		return http.StatusInternalServerError, resp
	}
}
