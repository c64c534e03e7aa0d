package savedquery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/roach88/resql/internal/querysql"
)

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

type parseConfig struct {
	schemaPath string
	schemaSrc  []byte
}

// WithSchemaSource attaches a CUE parameter schema to the parsed definition.
func WithSchemaSource(path string, src []byte) ParseOption {
	return func(c *parseConfig) {
		c.schemaPath = path
		c.schemaSrc = src
	}
}

// Parse builds a Definition from template text. source identifies the file
// in diagnostics. Every failure is a *ParseError.
func Parse(key Key, source string, body []byte, opts ...ParseOption) (Definition, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	fail := func(code string, err error) (Definition, error) {
		return Definition{}, &ParseError{Code: code, Path: source, Err: err}
	}

	if key.Project == "" {
		return fail(ErrCodeParseFailed, fmt.Errorf("empty project"))
	}
	if _, ok := ParseMethod(string(key.Method)); !ok {
		return fail(ErrCodeParseFailed, fmt.Errorf("unsupported method %q", key.Method))
	}
	if key.Name == "" {
		return fail(ErrCodeParseFailed, fmt.Errorf("empty logical name"))
	}
	if key.Name != CanonicalName(key.Name) {
		return fail(ErrCodeParseFailed, fmt.Errorf("logical name %q is not canonical", key.Name))
	}

	if !utf8.Valid(body) {
		return fail(ErrCodeParseFailed, fmt.Errorf("template is not valid UTF-8"))
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		return fail(ErrCodeParseFailed, fmt.Errorf("template is empty"))
	}

	params, err := querysql.Placeholders(text)
	if err != nil {
		return fail(ErrCodeParseFailed, err)
	}

	def := Definition{
		key:    key,
		source: source,
		body:   text,
		params: params,
	}

	if cfg.schemaSrc != nil {
		schema, err := CompileSchema(cfg.schemaPath, cfg.schemaSrc)
		if err != nil {
			return fail(ErrCodeInvalidSchema, fmt.Errorf("schema %s: %w", cfg.schemaPath, err))
		}
		def.schema = schema
	}

	return def, nil
}

// ParseFile reads and parses a template file. schemaPath may be empty.
// The recorded source is the absolute path of the template.
func ParseFile(key Key, path, schemaPath string) (Definition, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, &ParseError{Code: ErrCodeParseFailed, Path: abs, Err: err}
	}

	var opts []ParseOption
	if schemaPath != "" {
		src, err := os.ReadFile(schemaPath)
		if err != nil {
			return Definition{}, &ParseError{Code: ErrCodeInvalidSchema, Path: abs, Err: err}
		}
		opts = append(opts, WithSchemaSource(schemaPath, src))
	}

	return Parse(key, abs, body, opts...)
}
