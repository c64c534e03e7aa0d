package savedquery

import (
	"fmt"
	"strings"
)

// Method is the HTTP verb a saved query is registered under.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Methods lists the supported methods in load order.
var Methods = []Method{MethodGet, MethodPost}

// ParseMethod converts an HTTP method name to a Method.
// Matching is case-insensitive; unsupported verbs return false.
func ParseMethod(s string) (Method, bool) {
	switch Method(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodGet:
		return MethodGet, true
	case MethodPost:
		return MethodPost, true
	default:
		return "", false
	}
}

// Key identifies a saved query. Name must already be canonical.
type Key struct {
	Project string
	Method  Method
	Name    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s::%s", k.Method, k.Project, k.Name)
}

// Definition is one parsed saved query. Values are immutable after Parse:
// slices are copied on the way in and on the way out.
type Definition struct {
	key    Key
	source string
	body   string
	params []string
	schema *Schema
}

// Key returns the registry key of the definition.
func (d Definition) Key() Key { return d.key }

// Project returns the owning project.
func (d Definition) Project() string { return d.key.Project }

// Method returns the HTTP method the query is registered under.
func (d Definition) Method() Method { return d.key.Method }

// Name returns the canonical logical name.
func (d Definition) Name() string { return d.key.Name }

// Source returns the absolute path of the template file.
func (d Definition) Source() string { return d.source }

// Body returns the raw template text.
func (d Definition) Body() string { return d.body }

// Params returns the placeholders referenced by the body, prefix included.
func (d Definition) Params() []string {
	if d.params == nil {
		return nil
	}
	out := make([]string, len(d.params))
	copy(out, d.params)
	return out
}

// Schema returns the parameter schema, or nil if the query has none.
func (d Definition) Schema() *Schema { return d.schema }

// Validate checks params against the definition's schema.
// Definitions without a schema accept any parameters.
func (d Definition) Validate(params map[string]any) error {
	if d.schema == nil {
		return nil
	}
	if err := d.schema.Validate(params); err != nil {
		return &ValidationError{Key: d.key, Err: err}
	}
	return nil
}
