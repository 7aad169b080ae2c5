// Package sat implements the propositional SAT decision procedure at the
// base of the reasoning engine: DPLL with unit propagation and
// pure-literal elimination over CNF formulas encoded as integer literals.
//
// # Representation
//
// A Lit is a signed, non-zero variable reference: variable index v >= 1,
// positive literal +v, negated literal -v. A Clause is a disjunction of
// literals. A Formula is a conjunction of clauses. Variables range over
// 1..N for a given N.
//
// # Determinism
//
// Variable selection during branching is lowest-index-first; each branch
// tries the true polarity before false. This makes verdicts and extracted
// models reproducible for identical inputs — callers that need to compare
// two runs of the same formula can rely on byte-identical models.
//
// # Non-goals
//
// No clause learning, no conflict-driven backjumping (CDCL), no
// restarts, no timeout. Recursion depth is bounded by variable count;
// each decision snapshots the assignment vector rather than maintaining
// an undo trail, which is simpler at the cost of O(N) copies per decision
// — acceptable for the problem sizes this package is designed for.
package sat

import "github.com/featureforge/plvalidate/debug"

// Lit is a signed, non-zero literal: variable index Var(l) with polarity
// Positive(l) / Negative(l).
type Lit int

// Var returns the variable index (always positive) that l refers to.
func (l Lit) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// Positive reports whether l is an unnegated literal.
func (l Lit) Positive() bool { return l > 0 }

// Negate returns the complement of l.
func (l Lit) Negate() Lit { return -l }

// Clause is a disjunction of literals.
type Clause []Lit

// Formula is a conjunction of clauses (CNF).
type Formula []Clause

// Tri is a tri-state variable assignment.
type Tri int

const (
	Unassigned Tri = iota
	True
	False
)

// Assignment is a dense 1..N mapping from variable to Tri; index 0 is
// unused so that Assignment[v] lines up with variable v directly.
type Assignment []Tri

func newAssignment(n int) Assignment {
	return make(Assignment, n+1)
}

func (a Assignment) clone() Assignment {
	c := make(Assignment, len(a))
	copy(c, a)
	return c
}

// litValue reports the tri-state value of literal l under assignment a.
func litValue(a Assignment, l Lit) Tri {
	v := a[l.Var()]
	if v == Unassigned {
		return Unassigned
	}
	if l.Positive() {
		return v
	}
	if v == True {
		return False
	}
	return True
}

// set assigns literal l to true (i.e. sets its variable so that l
// evaluates true), reporting false if that contradicts an existing
// assignment.
func set(a Assignment, l Lit) bool {
	v := a[l.Var()]
	want := True
	if !l.Positive() {
		want = False
	}
	if v == Unassigned {
		a[l.Var()] = want
		return true
	}
	return v == want
}

// IsSat decides whether f has a satisfying total assignment of 1..N. An
// empty formula is trivially satisfiable, even when N is 0.
func IsSat(f Formula, n int) bool {
	ok, _ := Solve(f, n)
	return ok
}

// Solve decides satisfiability and, when SAT, returns the assignment DPLL
// settled on. Variables left Unassigned after a pure-literal elimination
// satisfied every remaining clause should be treated by the caller as
// "don't care".
func Solve(f Formula, n int) (bool, Assignment) {
	if debug.Sat() {
		debug.Logf("sat.Solve: %d clauses, %d vars\n", len(f), n)
	}
	a := newAssignment(n)
	if dpll(f, a) {
		return true, a
	}
	return false, nil
}

// dpll runs one level of the decision procedure on a, mutating it in
// place. It returns whether f is satisfiable given a's current (possibly
// partial) assignment.
func dpll(f Formula, a Assignment) bool {
	switch propagateUnits(f, a) {
	case conflict:
		return false
	}

	eliminatePureLiterals(f, a)

	switch status(f, a) {
	case allSatisfied:
		return true
	case hasConflict:
		return false
	}

	branchVar := firstUnassigned(a)
	if branchVar == 0 {
		// Every clause satisfied already, nothing left to branch on.
		return true
	}

	snapshot := a.clone()
	a[branchVar] = True
	if dpll(f, a) {
		return true
	}
	copy(a, snapshot)

	a[branchVar] = False
	if dpll(f, a) {
		return true
	}
	copy(a, snapshot)
	return false
}

type propagationResult int

const (
	propagated propagationResult = iota
	conflict
)

// propagateUnits repeats unit propagation to a fixpoint: scan all clauses;
// any clause with zero unassigned literals that isn't satisfied is a
// conflict; any clause with exactly one unassigned literal forces that
// literal's polarity.
func propagateUnits(f Formula, a Assignment) propagationResult {
	for {
		changed := false
		for _, c := range f {
			unassignedLit := Lit(0)
			unassignedCount := 0
			satisfied := false
			for _, l := range c {
				switch litValue(a, l) {
				case True:
					satisfied = true
				case Unassigned:
					unassignedCount++
					unassignedLit = l
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return conflict
			}
			if unassignedCount == 1 {
				if !set(a, unassignedLit) {
					return conflict
				}
				changed = true
			}
		}
		if !changed {
			return propagated
		}
	}
}

// eliminatePureLiterals assigns every variable that, across clauses not
// yet satisfied, appears with only one polarity.
func eliminatePureLiterals(f Formula, a Assignment) {
	positive := make(map[int]bool)
	negative := make(map[int]bool)
	for _, c := range f {
		if clauseSatisfied(c, a) {
			continue
		}
		for _, l := range c {
			if a[l.Var()] != Unassigned {
				continue
			}
			if l.Positive() {
				positive[l.Var()] = true
			} else {
				negative[l.Var()] = true
			}
		}
	}
	for v := range positive {
		if !negative[v] {
			a[v] = True
		}
	}
	for v := range negative {
		if !positive[v] {
			a[v] = False
		}
	}
}

func clauseSatisfied(c Clause, a Assignment) bool {
	for _, l := range c {
		if litValue(a, l) == True {
			return true
		}
	}
	return false
}

type formulaStatus int

const (
	incomplete formulaStatus = iota
	allSatisfied
	hasConflict
)

func status(f Formula, a Assignment) formulaStatus {
	for _, c := range f {
		sat := false
		hasUnassigned := false
		for _, l := range c {
			switch litValue(a, l) {
			case True:
				sat = true
			case Unassigned:
				hasUnassigned = true
			}
		}
		if sat {
			continue
		}
		if !hasUnassigned {
			return hasConflict
		}
		return incomplete
	}
	return allSatisfied
}

// firstUnassigned returns the lowest-indexed unassigned variable, or 0 if
// every variable 1..len(a)-1 is assigned.
func firstUnassigned(a Assignment) int {
	for v := 1; v < len(a); v++ {
		if a[v] == Unassigned {
			return v
		}
	}
	return 0
}
