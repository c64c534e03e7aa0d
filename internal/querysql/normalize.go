package querysql

import "encoding/json"

// NormalizeNumbers walks a value decoded with json.Decoder.UseNumber and
// replaces every json.Number with an int64 when it is integral and a
// float64 otherwise. Maps and slices are rewritten in place.
func NormalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = NormalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = NormalizeNumbers(item)
		}
		return val
	case []map[string]any:
		for _, item := range val {
			NormalizeNumbers(item)
		}
		return val
	default:
		return v
	}
}
