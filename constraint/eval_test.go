package constraint

import (
	"testing"

	"github.com/featureforge/plvalidate/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Parse([]byte(`{
		"F-TEST": {
			"type": "feature", "id": "F-TEST",
			"parameters": {
				"size": {"type": "integer", "min": 1, "max": 100, "default": 50},
				"enabled": {"type": "boolean", "default": false}
			}
		}
	}`))
	if err != nil {
		t.Fatalf("parse registry: %v", err)
	}
	return reg
}

func testConfig(selected []string, bindings map[string]map[string]any) *registry.Configuration {
	return &registry.Configuration{ID: "C1", Root: "ROOT", Selected: selected, Bindings: bindings}
}

func mustEval(t *testing.T, expr string, cfg *registry.Configuration, reg *registry.Registry) bool {
	t.Helper()
	v, err := EvaluateConstraint(expr, cfg, reg)
	if err != nil {
		t.Fatalf("EvaluateConstraint(%q): %v", expr, err)
	}
	return v
}

func TestComparisonAgainstBoundValue(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, map[string]map[string]any{"F-TEST": {"size": int64(75)}})

	if !mustEval(t, "F-TEST.size >= 50", cfg, reg) {
		t.Fatal("expected F-TEST.size >= 50 to be true")
	}
	if mustEval(t, "F-TEST.size < 50", cfg, reg) {
		t.Fatal("expected F-TEST.size < 50 to be false")
	}
}

func TestImplicationWithSelectedPredicate(t *testing.T) {
	reg := testRegistry(t)

	cfgTrue := testConfig(nil, map[string]map[string]any{"F-TEST": {"enabled": true, "size": int64(75)}})
	if !mustEval(t, "F-TEST.enabled => F-TEST.size >= 50", cfgTrue, reg) {
		t.Fatal("expected implication to hold when antecedent and consequent are both true")
	}

	cfgFalse := testConfig(nil, map[string]map[string]any{"F-TEST": {"enabled": false, "size": int64(10)}})
	if !mustEval(t, "F-TEST.enabled => F-TEST.size >= 50", cfgFalse, reg) {
		t.Fatal("expected implication to hold (vacuously) when the antecedent is false")
	}
}

func TestArithmeticWithHyphenatedIdentifier(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, map[string]map[string]any{"F-TEST": {"size": int64(100)}})

	if !mustEval(t, "F-TEST.size + 50 >= 140", cfg, reg) {
		t.Fatal("expected F-TEST.size + 50 >= 140 to hold (150 >= 140)")
	}
}

func TestRightAssociativeSubtraction(t *testing.T) {
	// a - b - c parses as a - (b - c): 10 - (5 - 2) = 7, not (10-5)-2 = 3.
	node, err := Parse("10 - 5 - 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := Evaluate(node, testConfig(nil, nil), testRegistry(t))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Int != 7 {
		t.Fatalf("expected right-associative result 7, got %d", v.Int)
	}
}

func TestImplicationShortCircuitsEvaluationErrors(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, nil)
	// Right side divides by zero, but the antecedent is false so it must
	// never be evaluated.
	v, err := EvaluateConstraint("false => (1 / 0 == 0)", cfg, reg)
	if err != nil {
		t.Fatalf("expected no error from short-circuited implication, got %v", err)
	}
	if !v {
		t.Fatal("expected false => anything to be true")
	}
}

func TestDivisionByZeroIsError(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, nil)
	if _, err := EvaluateConstraint("1 / 0 == 0", cfg, reg); err == nil {
		t.Fatal("expected division by zero to error")
	}
}

func TestComparisonTypeMismatchIsError(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, map[string]map[string]any{"F-TEST": {"enabled": true}})
	if _, err := EvaluateConstraint(`F-TEST.enabled == "yes"`, cfg, reg); err == nil {
		t.Fatal("expected boolean-vs-string comparison to error")
	}
}

func TestFeatureSelectedPredicate(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig([]string{"F-TEST"}, nil)
	if !mustEval(t, "F-TEST is selected", cfg, reg) {
		t.Fatal("expected F-TEST is selected to be true")
	}
	other := testConfig(nil, nil)
	if mustEval(t, "F-TEST is selected", other, reg) {
		t.Fatal("expected F-TEST is selected to be false when not in selected set")
	}
}

func TestDefaultValueFallback(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, nil)
	if !mustEval(t, "F-TEST.size == 50", cfg, reg) {
		t.Fatal("expected parameter with no binding to fall back to its schema default")
	}
}

func TestParenthesesGroupAroundOperators(t *testing.T) {
	node, err := Parse("(1 + 2) * 3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := Evaluate(node, testConfig(nil, nil), testRegistry(t))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Int != 9 {
		t.Fatalf("expected (1+2)*3 = 9, got %d", v.Int)
	}
}

func TestUnknownFeatureReferenceIsError(t *testing.T) {
	reg := testRegistry(t)
	cfg := testConfig(nil, nil)
	if _, err := EvaluateConstraint("GHOST.size == 1", cfg, reg); err == nil {
		t.Fatal("expected reference to an unregistered feature to error")
	}
}
