package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Kind is the declared type of a tool parameter.
type Kind string

// Parameter kinds.
const (
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
)

// Param declares one named tool parameter.
type Param struct {
	Name     string
	Kind     Kind
	Required bool

	// Default is used when the parameter is absent and not required.
	Default any

	// Enum restricts a string parameter to a closed value set.
	Enum []string

	// Aliases are alternative argument names the upstream model is known to
	// produce. They are mapped to Name before validation; the canonical name
	// wins when both are present.
	Aliases []string
}

// Params is a tool's argument schema.
type Params []Param

// Args holds resolved, typed tool arguments. After Resolve, every declared
// parameter is present with its declared type.
type Args map[string]any

// String returns the named string argument.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Bool returns the named bool argument.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// Int returns the named int argument.
func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// Resolve validates raw JSON arguments against the schema: aliases are
// mapped to canonical names first, unknown keys are rejected, defaults are
// filled, and every value is type-checked. It fails closed: an error means
// no partial Args are returned.
func (ps Params) Resolve(raw json.RawMessage) (Args, error) {
	incoming := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&incoming); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
	}

	// Alias resolution happens before validation, never after.
	canonical := map[string]any{}
	for key, value := range incoming {
		param, ok := ps.lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrBadArgs, key)
		}
		if key != param.Name {
			if _, exists := incoming[param.Name]; exists {
				continue // canonical name wins over its alias
			}
		}
		canonical[param.Name] = value
	}

	args := Args{}
	for _, p := range ps {
		value, present := canonical[p.Name]
		if !present {
			if p.Required {
				return nil, fmt.Errorf("%w: missing required parameter %q", ErrBadArgs, p.Name)
			}
			args[p.Name] = p.Default
			continue
		}

		typed, err := coerce(p, value)
		if err != nil {
			return nil, err
		}
		args[p.Name] = typed
	}

	return args, nil
}

// Schema renders the parameter set as a JSON Schema object, used when
// describing tools to the model.
func (ps Params) Schema() json.RawMessage {
	properties := map[string]any{}
	var required []string

	for _, p := range ps {
		prop := map[string]any{"type": schemaType(p.Kind)}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		slices.Sort(required)
		schema["required"] = required
	}

	data, _ := json.Marshal(schema)
	return data
}

func (ps Params) lookup(key string) (Param, bool) {
	for _, p := range ps {
		if p.Name == key {
			return p, true
		}
		if slices.Contains(p.Aliases, key) {
			return p, true
		}
	}
	return Param{}, false
}

func coerce(p Param, value any) (any, error) {
	switch p.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return nil, typeError(p, value)
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, fmt.Errorf("%w: parameter %q must be one of [%s], got %q",
				ErrBadArgs, p.Name, strings.Join(p.Enum, ", "), s)
		}
		return s, nil

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, typeError(p, value)
		}
		return b, nil

	case KindInt:
		n, ok := value.(json.Number)
		if !ok {
			return nil, typeError(p, value)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q must be an integer, got %s", ErrBadArgs, p.Name, n)
		}
		return int(i), nil

	default:
		return nil, fmt.Errorf("%w: parameter %q has unsupported kind %q", ErrBadArgs, p.Name, p.Kind)
	}
}

func typeError(p Param, value any) error {
	return fmt.Errorf("%w: parameter %q must be a %s, got %T", ErrBadArgs, p.Name, p.Kind, value)
}

func schemaType(k Kind) string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	default:
		return "string"
	}
}
