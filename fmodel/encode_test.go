package fmodel

import (
	"testing"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/sat"
)

func parseReg(t *testing.T, data string) *registry.Registry {
	t.Helper()
	reg, err := registry.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return reg
}

func TestSingleMandatoryChild(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT"},
		"CHILD": {"type": "feature", "id": "CHILD", "parent": "ROOT"}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()

	ok, model := sat.Solve(f, e.NumVars())
	if !ok {
		t.Fatal("expected model to be satisfiable")
	}

	rootVar := e.VarOf("ROOT")
	childVar := e.VarOf("CHILD")
	if model[rootVar] != sat.True {
		t.Fatalf("root must be forced true, got %v", model[rootVar])
	}
	if model[childVar] != sat.True {
		t.Fatalf("sole mandatory child must be forced true, got %v", model[childVar])
	}
}

func TestXORGroupOfTwo(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT", "group": "XOR"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT"},
		"B": {"type": "feature", "id": "B", "parent": "ROOT"}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()

	av := e.VarOf("A")
	bv := e.VarOf("B")

	both := append(sat.Formula{}, f...)
	both = append(both, sat.Clause{sat.Lit(av)}, sat.Clause{sat.Lit(bv)})
	if ok, _ := sat.Solve(both, e.NumVars()); ok {
		t.Fatal("selecting both XOR children together must be UNSAT")
	}

	neither := append(sat.Formula{}, f...)
	neither = append(neither, sat.Clause{sat.Lit(-av)}, sat.Clause{sat.Lit(-bv)})
	if ok, _ := sat.Solve(neither, e.NumVars()); ok {
		t.Fatal("selecting neither XOR child must be UNSAT since root forces the group")
	}

	onlyA := append(sat.Formula{}, f...)
	onlyA = append(onlyA, sat.Clause{sat.Lit(av)}, sat.Clause{sat.Lit(-bv)})
	if ok, _ := sat.Solve(onlyA, e.NumVars()); !ok {
		t.Fatal("selecting exactly one XOR child must be satisfiable")
	}
}

func TestORGroupAllowsBoth(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT", "group": "OR"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT"},
		"B": {"type": "feature", "id": "B", "parent": "ROOT"}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()
	av := e.VarOf("A")
	bv := e.VarOf("B")

	both := append(sat.Formula{}, f...)
	both = append(both, sat.Clause{sat.Lit(av)}, sat.Clause{sat.Lit(bv)})
	if ok, _ := sat.Solve(both, e.NumVars()); !ok {
		t.Fatal("OR group must allow both children selected")
	}
}

func TestContradictoryRequiresExcludesIsUnsat(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT", "requires": "B", "tags": {"mandatory": true}},
		"B": {"type": "feature", "id": "B", "parent": "ROOT", "tags": {"mandatory": true, "excludes": "A"}}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()

	if ok, _ := sat.Solve(f, e.NumVars()); ok {
		t.Fatal("A requires B together with B excludes A, both mandatory, must be UNSAT")
	}
}

func TestOnlyChildOfNonGroupParentIsMandatory(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT"},
		"CHILD": {"type": "feature", "id": "CHILD", "parent": "ROOT"}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()
	childVar := e.VarOf("CHILD")

	deselected := append(sat.Formula{}, f...)
	deselected = append(deselected, sat.Clause{sat.Lit(-childVar)})
	if ok, _ := sat.Solve(deselected, e.NumVars()); ok {
		t.Fatal("sole child of a non-group parent must be mandatory")
	}
}

func TestGroupChildIsOptionalEvenAlone(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT", "group": "OR"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT"}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()
	rootVar := e.VarOf("ROOT")
	av := e.VarOf("A")

	selectA := append(sat.Formula{}, f...)
	selectA = append(selectA, sat.Clause{sat.Lit(rootVar)}, sat.Clause{sat.Lit(av)})
	if ok, _ := sat.Solve(selectA, e.NumVars()); !ok {
		t.Fatal("group's sole child selected alongside root must be satisfiable")
	}
}

func TestEncodeConfigurationAppendsUnitClauses(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT", "group": "XOR"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT"},
		"B": {"type": "feature", "id": "B", "parent": "ROOT"},
		"CONFIG:C1": {"type": "config", "id": "C1", "root": "ROOT", "selected": ["ROOT", "A", "B"]}
	}`)
	e := NewEncoder(reg)
	cfg, ok := reg.Configuration("C1")
	if !ok {
		t.Fatal("expected configuration C1")
	}
	f := e.EncodeConfiguration(cfg)
	if ok, _ := sat.Solve(f, e.NumVars()); ok {
		t.Fatal("selecting both XOR children in a configuration must be UNSAT")
	}
}

func TestEncodeModelIsIdempotentUpToVariableNumbering(t *testing.T) {
	src := `{
		"ROOT": {"type": "feature", "id": "ROOT", "group": "XOR"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT"},
		"B": {"type": "feature", "id": "B", "parent": "ROOT", "requires": "A"}
	}`
	reg1 := parseReg(t, src)
	reg2 := parseReg(t, src)

	e1 := NewEncoder(reg1)
	f1 := e1.EncodeModel()
	e2 := NewEncoder(reg2)
	f2 := e2.EncodeModel()

	if e1.NumVars() != e2.NumVars() {
		t.Fatalf("var counts differ: %d vs %d", e1.NumVars(), e2.NumVars())
	}
	if len(f1) != len(f2) {
		t.Fatalf("clause counts differ: %d vs %d", len(f1), len(f2))
	}
	for i := range f1 {
		if len(f1[i]) != len(f2[i]) {
			t.Fatalf("clause %d length differs: %v vs %v", i, f1[i], f2[i])
		}
		for j := range f1[i] {
			if f1[i][j] != f2[i][j] {
				t.Fatalf("clause %d literal %d differs: %v vs %v", i, j, f1[i][j], f2[i][j])
			}
		}
	}
}

func TestRequiresEdgeToUnregisteredIDAllocatesStrayVariable(t *testing.T) {
	reg := parseReg(t, `{
		"ROOT": {"type": "feature", "id": "ROOT"},
		"A": {"type": "feature", "id": "A", "parent": "ROOT", "tags": {"mandatory": true}, "requires": "GHOST"}
	}`)
	e := NewEncoder(reg)
	f := e.EncodeModel()
	if e.NumVars() != 3 {
		t.Fatalf("expected 3 variables (ROOT, A, GHOST), got %d", e.NumVars())
	}
	if ok, _ := sat.Solve(f, e.NumVars()); !ok {
		t.Fatal("a requires edge to an unregistered ID must stay satisfiable")
	}
}
