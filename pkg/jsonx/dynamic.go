// Package jsonx bridges typed values into the dynamic JSON shapes some
// SDK parameter types require.
package jsonx

import json "github.com/goccy/go-json"

// ToDynamic converts a value to a map[string]any by round-tripping it
// through JSON. Used where an SDK takes free-form parameter objects but
// we hold a typed schema.
func ToDynamic(val any) (map[string]any, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any)
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}
