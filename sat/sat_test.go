package sat

import "testing"

func TestEmptyFormulaIsSat(t *testing.T) {
	if !IsSat(Formula{}, 0) {
		t.Fatal("empty formula over 0 variables must be SAT")
	}
	if !IsSat(Formula{}, 3) {
		t.Fatal("empty formula over N>0 variables must be SAT")
	}
}

func TestSingleLiteralFormulas(t *testing.T) {
	if !IsSat(Formula{{1}}, 1) {
		t.Fatal("{{+1}} over 1 variable must be SAT")
	}
	if IsSat(Formula{{1}, {-1}}, 1) {
		t.Fatal("{{+1},{-1}} must be UNSAT")
	}
}

func TestPropagationSoundness(t *testing.T) {
	f := Formula{
		{1, 2},
		{-1, 3},
		{-2, -3},
	}
	ok, model := Solve(f, 3)
	if !ok {
		t.Fatal("formula should be satisfiable")
	}
	for _, c := range f {
		if !clauseSatisfiedByModel(c, model) {
			t.Fatalf("model %v does not satisfy clause %v", model, c)
		}
	}
}

func TestDeterminism(t *testing.T) {
	f := Formula{
		{1, 2, 3},
		{-1, 2},
		{-2, 3},
		{-3, 1},
	}
	ok1, m1 := Solve(f, 3)
	ok2, m2 := Solve(f, 3)
	if ok1 != ok2 {
		t.Fatalf("non-deterministic verdict: %v vs %v", ok1, ok2)
	}
	if ok1 {
		for v := range m1 {
			if m1[v] != m2[v] {
				t.Fatalf("non-deterministic model at variable %d: %v vs %v", v, m1[v], m2[v])
			}
		}
	}
}

func TestLowestIndexBranchOrder(t *testing.T) {
	// No unit/pure-literal forcing applies; DPLL must branch on variable 1
	// first and try true before false, so the returned model sets var 1
	// true.
	f := Formula{
		{1, 2},
		{-1, -2},
	}
	ok, model := Solve(f, 2)
	if !ok {
		t.Fatal("expected SAT")
	}
	if model[1] != True {
		t.Fatalf("expected lowest-index-first, true-before-false branching to leave variable 1 true, got %v", model[1])
	}
}

func TestUnsatContradiction(t *testing.T) {
	f := Formula{
		{1},
		{-1},
	}
	if IsSat(f, 1) {
		t.Fatal("expected UNSAT")
	}
}

func TestPureLiteralEliminationLeavesDontCare(t *testing.T) {
	// Variables 1 and 2 only appear positively in a single two-literal
	// clause, so no unit clause forces them; pure-literal elimination sets
	// both without branching, and the formula is satisfiable regardless of
	// variable 3 (which never appears at all).
	f := Formula{
		{1, 2},
	}
	ok, model := Solve(f, 3)
	if !ok {
		t.Fatal("expected SAT")
	}
	if model[1] != True || model[2] != True {
		t.Fatalf("expected variables 1 and 2 true, got %v", model)
	}
}
