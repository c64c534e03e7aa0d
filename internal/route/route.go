package route

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCodeRouteNotFound is the code carried by RouteNotFoundError.
const ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"

// BatchSuffix is the trailing segment that marks a batch request.
const BatchSuffix = "/batch"

// RouteNotFoundError reports a path that does not have the
// /<project>/<name> shape.
type RouteNotFoundError struct {
	Path   string
	Reason string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrCodeRouteNotFound, e.Path, e.Reason)
}

// IsRouteNotFound reports whether err is, or wraps, a RouteNotFoundError.
func IsRouteNotFound(err error) bool {
	var re *RouteNotFoundError
	return errors.As(err, &re)
}

// Resolve splits path into its project segment and the remainder.
//
// The project is the text between the first and second slash and must be
// non-empty. The remainder starts at the second slash and must contain at
// least one character other than '/'. Neither part is normalized.
func Resolve(path string) (project, remainder string, err error) {
	fail := func(reason string) (string, string, error) {
		return "", "", &RouteNotFoundError{Path: path, Reason: reason}
	}

	if !strings.HasPrefix(path, "/") {
		return fail("path must start with /")
	}

	rest := path[1:]
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return fail("missing query name after project")
	}
	if i == 0 {
		return fail("empty project segment")
	}

	project, remainder = rest[:i], rest[i:]
	if strings.Trim(remainder, "/") == "" {
		return fail("missing query name after project")
	}
	return project, remainder, nil
}

// SplitBatch reports whether path addresses a batch endpoint and returns
// the path of the underlying query. A path is a batch path when it ends in
// "/batch" and what precedes it still resolves, so "/shop/orders/batch" is
// the batch form of "/shop/orders" while "/shop/batch" is a plain query
// named "batch".
func SplitBatch(path string) (base string, ok bool) {
	base, found := strings.CutSuffix(path, BatchSuffix)
	if !found {
		return "", false
	}
	if _, _, err := Resolve(base); err != nil {
		return "", false
	}
	return base, true
}

// ResolveBatch is SplitBatch for a live registry. exists reports whether a
// POST query is registered under project and name; when the whole path
// names one, the path is that query rather than a batch of its prefix.
func ResolveBatch(path string, exists func(project, name string) bool) (base string, ok bool) {
	base, ok = SplitBatch(path)
	if !ok {
		return "", false
	}
	if project, name, err := Resolve(path); err == nil && exists(project, name) {
		return "", false
	}
	return base, true
}
