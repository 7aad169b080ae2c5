package registry

import "fmt"

// ParamType is the declared scalar type of a feature parameter.
type ParamType string

const (
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
	ParamEnum    ParamType = "enum"
)

// ParamSchema describes one parameter a feature exposes: its type, an
// optional inclusive range (Integer), an allowed-value set (Enum), an
// informational unit label, and a default.
type ParamSchema struct {
	Type    ParamType `json:"type"`
	Min     *int64    `json:"min,omitempty"`
	Max     *int64    `json:"max,omitempty"`
	Values  []string  `json:"values,omitempty"`
	Unit    string    `json:"unit,omitempty"`
	Default any       `json:"default,omitempty"`
}

// HasDefault reports whether the schema declares a default value.
func (p *ParamSchema) HasDefault() bool {
	return p.Default != nil
}

// DefaultValue converts the schema's default into a Value.
func (p *ParamSchema) DefaultValue() (Value, error) {
	if p.Default == nil {
		return Value{}, fmt.Errorf("parameter has no default")
	}
	return FromJSON(p.Default)
}

// Validate checks v against the schema: type tag, integer range, enum
// membership.
func (p *ParamSchema) Validate(v Value) error {
	switch p.Type {
	case ParamInteger:
		if v.Kind != KindInt {
			return fmt.Errorf("expected integer, got %s", v.Kind)
		}
		if p.Min != nil && v.Int < *p.Min {
			return fmt.Errorf("value %d below minimum %d", v.Int, *p.Min)
		}
		if p.Max != nil && v.Int > *p.Max {
			return fmt.Errorf("value %d above maximum %d", v.Int, *p.Max)
		}
		return nil
	case ParamBoolean:
		if v.Kind != KindBool {
			return fmt.Errorf("expected boolean, got %s", v.Kind)
		}
		return nil
	case ParamEnum:
		if v.Kind != KindString {
			return fmt.Errorf("expected string (enum), got %s", v.Kind)
		}
		for _, allowed := range p.Values {
			if allowed == v.Str {
				return nil
			}
		}
		return fmt.Errorf("value %q is not a member of enum %v", v.Str, p.Values)
	default:
		return fmt.Errorf("unknown parameter type %q", p.Type)
	}
}

// Resolve returns the effective Value for a parameter given an optional
// bound raw JSON value: the binding when present, else the schema
// default. It returns an error if neither is available, or if the
// resolved value fails Validate.
func (p *ParamSchema) Resolve(bound any, boundPresent bool) (Value, error) {
	var v Value
	var err error
	switch {
	case boundPresent:
		v, err = FromJSON(bound)
		if err != nil {
			return Value{}, fmt.Errorf("invalid bound value: %w", err)
		}
	case p.HasDefault():
		v, err = p.DefaultValue()
		if err != nil {
			return Value{}, fmt.Errorf("invalid default value: %w", err)
		}
	default:
		return Value{}, fmt.Errorf("no binding and no default")
	}
	if err := p.Validate(v); err != nil {
		return Value{}, err
	}
	return v, nil
}
