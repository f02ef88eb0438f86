package minigebra

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes a as nested objects:
//
//	{"type":"num","value":"2"}
//	{"type":"var","name":"x"}
//	{"type":"add|sub|mul|div|pow","left":{...},"right":{...}}
//	{"type":"call","name":"sin","args":[{...}]}
func ToJSON(a Atom) (string, error) {
	b, err := json.Marshal(a.toJSON())
	return string(b), err
}

// JSONValue returns the object ToJSON would encode.
func JSONValue(a Atom) map[string]interface{} { return a.toJSON() }

func FromJSON(data map[string]interface{}) (Atom, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Atom, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		a, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return a, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		switch v := data["value"].(type) {
		case string:
			n, err := parseNumber(v)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", v)
			}
			return n, nil
		case float64:
			if v == float64(int64(v)) {
				return N(int64(v)), nil
			}
			return NFloat(v), nil
		}
		return nil, fmt.Errorf("num: 'value' must be a string or a number")

	case "var":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if !isIdentifier(name) {
			return nil, fmt.Errorf("var: invalid name %q", name)
		}
		return V(name), nil

	case "call":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		raw, ok := data["args"].([]interface{})
		if !ok || len(raw) == 0 {
			return nil, fmt.Errorf("call: %q must be a non-empty array", "args")
		}
		args := make([]Atom, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("call: args[%d] must be an object", i)
			}
			a, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("call: args[%d]: %w", i, err)
			}
			args[i] = a
		}
		if LookupBuiltin(name) != NoBuiltin && len(args) != 1 {
			return nil, &ArityError{Name: name, Want: 1, Got: len(args)}
		}
		return CallOf(name, args...), nil
	}

	if op, ok := opFromName(typ); ok {
		l, err := subObj("left")
		if err != nil {
			return nil, err
		}
		r, err := subObj("right")
		if err != nil {
			return nil, err
		}
		return Bin(op, l, r), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
