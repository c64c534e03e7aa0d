package savedquery

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// SchemaExt is the file extension of parameter schema sidecars.
const SchemaExt = ".cue"

// Schema is a compiled-and-checked CUE parameter schema.
//
// Only the source text is retained. Each Validate call builds its own
// cue.Context because CUE values are not safe for concurrent use, and
// requests validate in parallel.
type Schema struct {
	path   string
	source string
}

// CompileSchema checks that src is a CUE struct and returns it as a Schema.
func CompileSchema(path string, src []byte) (*Schema, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind()&cue.StructKind == 0 {
		return nil, fmt.Errorf("schema must be a struct, got %v", v.IncompleteKind())
	}
	return &Schema{path: path, source: string(src)}, nil
}

// Path returns the schema file path.
func (s *Schema) Path() string { return s.path }

// Validate unifies params with the schema and requires the result to be
// concrete. A nil map is treated as no parameters.
func (s *Schema) Validate(params map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(s.source, cue.Filename(s.path))
	if err := schema.Err(); err != nil {
		return formatCUEError(err)
	}

	if params == nil {
		params = map[string]any{}
	}
	data := ctx.Encode(params)
	if err := data.Err(); err != nil {
		return formatCUEError(err)
	}

	if err := schema.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError flattens a CUE error list into one error with every
// message on its own line.
func formatCUEError(err error) error {
	return fmt.Errorf("%s", strings.TrimSpace(cueerrors.Details(err, nil)))
}
