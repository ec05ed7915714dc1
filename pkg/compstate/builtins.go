package compstate

import (
	"encoding/json"
	"strings"

	"github.com/vrlcore/vrlcore/pkg/value"
)

func fnUpcase(args []value.Value) (value.Value, error) {
	s, ok := args[0].AsBytes()
	if !ok {
		return value.Null, value.NewTypeMismatch("upcase() expects a string argument")
	}
	return value.Bytes(strings.ToUpper(s)), nil
}

func fnDowncase(args []value.Value) (value.Value, error) {
	s, ok := args[0].AsBytes()
	if !ok {
		return value.Null, value.NewTypeMismatch("downcase() expects a string argument")
	}
	return value.Bytes(strings.ToLower(s)), nil
}

func fnLength(args []value.Value) (value.Value, error) {
	switch args[0].Kind() {
	case value.KindBytes:
		s, _ := args[0].AsBytes()
		return value.Integer(int64(len(s))), nil
	case value.KindArray:
		arr, _ := args[0].AsArray()
		return value.Integer(int64(len(arr))), nil
	case value.KindObject:
		obj, _ := args[0].AsObject()
		return value.Integer(int64(len(obj))), nil
	default:
		return value.Null, value.NewTypeMismatch("length() expects a string, array, or object")
	}
}

// fnParseJSON decodes a JSON-encoded string into a value.Value tree. It
// backs the canonical `x = parse_json!(...); x.field` scenario.
func fnParseJSON(args []value.Value) (value.Value, error) {
	s, ok := args[0].AsBytes()
	if !ok {
		return value.Null, value.NewTypeMismatch("parse_json() expects a string argument")
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return value.Null, value.NewUserFunctionError("parse_json", err)
	}
	return fromJSON(decoded), nil
}

func fromJSON(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null
	case bool:
		return value.Boolean(t)
	case float64:
		return value.Float(t)
	case string:
		return value.Bytes(t)
	case []any:
		items := make([]value.Value, len(t))
		for i, item := range t {
			items[i] = fromJSON(item)
		}
		return value.Array(items)
	case map[string]any:
		fields := make(map[string]value.Value, len(t))
		for k, item := range t {
			fields[k] = fromJSON(item)
		}
		return value.Object(fields)
	default:
		return value.Null
	}
}
