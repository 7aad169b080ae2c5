package constraint

import (
	"fmt"

	"github.com/featureforge/plvalidate/debug"
	"github.com/featureforge/plvalidate/registry"
)

// Evaluate reduces node to a registry.Value against cfg and reg.
func Evaluate(node Node, cfg *registry.Configuration, reg *registry.Registry) (registry.Value, error) {
	if debug.Eval() {
		debug.Logf("constraint.Evaluate: %T\n", node)
	}
	switch n := node.(type) {
	case *IntLit:
		return registry.IntValue(n.Value), nil
	case *BoolLit:
		return registry.BoolValue(n.Value), nil
	case *StringLit:
		return registry.StringValue(n.Value), nil

	case *ParamRef:
		feat, ok := reg.Feature(n.FeatureID)
		if !ok {
			return registry.Value{}, fmt.Errorf("unknown feature %q", n.FeatureID)
		}
		schema, ok := feat.Parameters[n.Param]
		if !ok {
			return registry.Value{}, fmt.Errorf("feature %q has no parameter %q", n.FeatureID, n.Param)
		}
		bound, present := cfg.Binding(n.FeatureID, n.Param)
		v, err := schema.Resolve(bound, present)
		if err != nil {
			return registry.Value{}, fmt.Errorf("%s.%s: %w", n.FeatureID, n.Param, err)
		}
		return v, nil

	case *FeatureSelected:
		return registry.BoolValue(cfg.IsSelected(n.FeatureID)), nil

	case *Comparison:
		return evalComparison(n, cfg, reg)

	case *Arith:
		return evalArith(n, cfg, reg)

	case *Not:
		v, err := Evaluate(n.Inner, cfg, reg)
		if err != nil {
			return registry.Value{}, err
		}
		if v.Kind != registry.KindBool {
			return registry.Value{}, fmt.Errorf("'!' requires a boolean operand, got %s", v.Kind)
		}
		return registry.BoolValue(!v.Bool), nil

	case *And:
		l, err := requireBool(n.Left, cfg, reg, "&&")
		if err != nil {
			return registry.Value{}, err
		}
		r, err := requireBool(n.Right, cfg, reg, "&&")
		if err != nil {
			return registry.Value{}, err
		}
		return registry.BoolValue(l && r), nil

	case *Or:
		l, err := requireBool(n.Left, cfg, reg, "||")
		if err != nil {
			return registry.Value{}, err
		}
		r, err := requireBool(n.Right, cfg, reg, "||")
		if err != nil {
			return registry.Value{}, err
		}
		return registry.BoolValue(l || r), nil

	case *Implication:
		l, err := requireBool(n.Left, cfg, reg, "=>")
		if err != nil {
			return registry.Value{}, err
		}
		if !l {
			// The only short-circuit in the language: a false antecedent
			// makes the implication true without evaluating Right, even
			// if Right would otherwise error.
			return registry.BoolValue(true), nil
		}
		r, err := requireBool(n.Right, cfg, reg, "=>")
		if err != nil {
			return registry.Value{}, err
		}
		return registry.BoolValue(r), nil

	default:
		return registry.Value{}, fmt.Errorf("unhandled constraint node %T", node)
	}
}

func requireBool(node Node, cfg *registry.Configuration, reg *registry.Registry, op string) (bool, error) {
	v, err := Evaluate(node, cfg, reg)
	if err != nil {
		return false, err
	}
	if v.Kind != registry.KindBool {
		return false, fmt.Errorf("%q requires a boolean operand, got %s", op, v.Kind)
	}
	return v.Bool, nil
}

func evalComparison(n *Comparison, cfg *registry.Configuration, reg *registry.Registry) (registry.Value, error) {
	l, err := Evaluate(n.Left, cfg, reg)
	if err != nil {
		return registry.Value{}, err
	}
	r, err := Evaluate(n.Right, cfg, reg)
	if err != nil {
		return registry.Value{}, err
	}
	if l.Kind != r.Kind {
		return registry.Value{}, fmt.Errorf("cannot compare %s to %s", l.Kind, r.Kind)
	}

	switch n.Op {
	case CmpEq:
		return registry.BoolValue(l.Equal(r)), nil
	case CmpNe:
		return registry.BoolValue(!l.Equal(r)), nil
	}

	if l.Kind != registry.KindInt {
		return registry.Value{}, fmt.Errorf("operator %q requires integer operands, got %s", n.Op, l.Kind)
	}
	switch n.Op {
	case CmpGe:
		return registry.BoolValue(l.Int >= r.Int), nil
	case CmpLe:
		return registry.BoolValue(l.Int <= r.Int), nil
	case CmpGt:
		return registry.BoolValue(l.Int > r.Int), nil
	case CmpLt:
		return registry.BoolValue(l.Int < r.Int), nil
	default:
		return registry.Value{}, fmt.Errorf("unknown comparison operator %q", n.Op)
	}
}

func evalArith(n *Arith, cfg *registry.Configuration, reg *registry.Registry) (registry.Value, error) {
	l, err := Evaluate(n.Left, cfg, reg)
	if err != nil {
		return registry.Value{}, err
	}
	r, err := Evaluate(n.Right, cfg, reg)
	if err != nil {
		return registry.Value{}, err
	}
	if l.Kind != registry.KindInt || r.Kind != registry.KindInt {
		return registry.Value{}, fmt.Errorf("arithmetic operator %q requires integer operands", n.Op)
	}
	switch n.Op {
	case ArithAdd:
		return registry.IntValue(l.Int + r.Int), nil
	case ArithSub:
		return registry.IntValue(l.Int - r.Int), nil
	case ArithMul:
		return registry.IntValue(l.Int * r.Int), nil
	case ArithDiv:
		if r.Int == 0 {
			return registry.Value{}, fmt.Errorf("division by zero")
		}
		// Go's integer division already truncates toward zero.
		return registry.IntValue(l.Int / r.Int), nil
	default:
		return registry.Value{}, fmt.Errorf("unknown arithmetic operator %q", n.Op)
	}
}

// EvaluateConstraint parses and evaluates src, requiring a boolean
// result.
func EvaluateConstraint(src string, cfg *registry.Configuration, reg *registry.Registry) (bool, error) {
	node, err := Parse(src)
	if err != nil {
		return false, err
	}
	v, err := Evaluate(node, cfg, reg)
	if err != nil {
		return false, err
	}
	if v.Kind != registry.KindBool {
		return false, fmt.Errorf("constraint must evaluate to a boolean, got %s", v.Kind)
	}
	return v.Bool, nil
}
