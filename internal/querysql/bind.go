package querysql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
)

// ErrCodeInvalidParams is reported for parameters that cannot be bound.
const ErrCodeInvalidParams = "INVALID_PARAMS"

// BindError reports a template or parameter that could not be bound.
type BindError struct {
	Param string // empty when the template itself is at fault
	Err   error
}

func (e *BindError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: bind parameter %q: %v", ErrCodeInvalidParams, e.Param, e.Err)
	}
	return fmt.Sprintf("%s: bind template: %v", ErrCodeInvalidParams, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// Bind returns the driver arguments for template, one sql.NamedArg per
// distinct placeholder. Parameters the template does not reference are
// ignored.
func Bind(template string, params map[string]any) ([]any, error) {
	placeholders, err := Placeholders(template)
	if err != nil {
		return nil, &BindError{Err: err}
	}

	args := make([]any, 0, len(placeholders))
	for _, p := range placeholders {
		name := ParamName(p)
		v, err := toParam(params[name])
		if err != nil {
			return nil, &BindError{Param: name, Err: err}
		}
		args = append(args, sql.Named(name, v))
	}
	return args, nil
}

// toParam converts a decoded request value to a driver value.
// Integral floats become int64 so JSON numbers compare as SQLite integers.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64, []byte:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float32:
		return floatParam(float64(val)), nil
	case float64:
		return floatParam(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return f, nil
	case []any:
		return nil, fmt.Errorf("arrays cannot be used as SQL parameters")
	case map[string]any:
		return nil, fmt.Errorf("objects cannot be used as SQL parameters")
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", v)
	}
}

func floatParam(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}
