// Package fmodel translates a feature-model registry into a CNF formula
// the sat package can decide — the feature-model-to-CNF encoder (C2 in
// the design: spec.md §4.2).
//
// # Encoding rules
//
//	Root feature                          {+root}
//	Mandatory child C of parent P          {-C,+P} and {-P,+C}
//	Optional child C of parent P           {-C,+P}
//	A requires B                           {-A,+B}
//	A excludes B                           {-A,-B}
//	OR group: parent P, children C1..Cn    {-P,+C1,...,+Cn}
//	XOR group: as OR, plus pairwise        {-Ci,-Cj} for i<j
//
// A child is mandatory iff its "mandatory" tag is explicitly true, or its
// parent has no variability group and it is that parent's only child.
// Children of a variability-group parent are optional by default, even a
// sole child (though the structural rule that a group needs >=2 children
// should prevent that case from arising in practice).
//
// # Traversal and idempotence
//
// The encoder does not recurse the tree; it walks features in registry
// declaration order exactly once, allocating a SAT variable the first
// time it sees an ID — including IDs named only in a requires/excludes
// edge that do not correspond to a registered feature. Such stray
// variables stay unconstrained and trivially satisfiable (spec.md §9).
// Because variable numbering is determined solely by first-encounter
// order, encoding the same model twice produces clause-for-clause
// identical CNFs.
package fmodel

import (
	"github.com/featureforge/plvalidate/debug"
	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/sat"
)

// Encoder accumulates a variable assignment across one or more encoding
// calls against the same registry, so that a model encoding followed by
// a configuration encoding shares variable numbering.
type Encoder struct {
	reg  *registry.Registry
	vars map[string]int
	next int
}

// NewEncoder creates an encoder over reg with no variables allocated yet.
func NewEncoder(reg *registry.Registry) *Encoder {
	return &Encoder{reg: reg, vars: make(map[string]int), next: 1}
}

// NumVars returns the number of distinct variables allocated so far.
func (e *Encoder) NumVars() int {
	return e.next - 1
}

// VarOf returns the variable index for id, allocating a fresh one on
// first use.
func (e *Encoder) VarOf(id string) int {
	if v, ok := e.vars[id]; ok {
		return v
	}
	v := e.next
	e.vars[id] = v
	e.next++
	return v
}

// EncodeModel builds the CNF capturing the feature tree, variability
// groups, and cross-tree requires/excludes edges.
func (e *Encoder) EncodeModel() sat.Formula {
	features := e.reg.FeaturesInOrder()
	if debug.Encode() {
		debug.Logf("fmodel.EncodeModel: %d features\n", len(features))
	}
	children := childrenByParent(features)

	var f sat.Formula
	for _, feat := range features {
		v := e.VarOf(feat.ID)

		if parentID, hasParent := feat.ParentID(); !hasParent {
			f = append(f, sat.Clause{sat.Lit(v)})
		} else {
			pv := e.VarOf(parentID)
			if isMandatory(feat, e.reg, children[parentID]) {
				f = append(f, sat.Clause{sat.Lit(-v), sat.Lit(pv)})
				f = append(f, sat.Clause{sat.Lit(-pv), sat.Lit(v)})
			} else {
				f = append(f, sat.Clause{sat.Lit(-v), sat.Lit(pv)})
			}
		}

		for _, reqID := range feat.RequiresIDs() {
			rv := e.VarOf(reqID)
			f = append(f, sat.Clause{sat.Lit(-v), sat.Lit(rv)})
		}
		for _, excID := range feat.ExcludesIDs() {
			xv := e.VarOf(excID)
			f = append(f, sat.Clause{sat.Lit(-v), sat.Lit(-xv)})
		}

		if feat.IsGroup() {
			kids := children[feat.ID]
			if len(kids) > 0 {
				disj := make(sat.Clause, 0, len(kids)+1)
				disj = append(disj, sat.Lit(-v))
				childVars := make([]int, 0, len(kids))
				for _, c := range kids {
					cv := e.VarOf(c.ID)
					disj = append(disj, sat.Lit(cv))
					childVars = append(childVars, cv)
				}
				f = append(f, disj)
				if feat.Group == "XOR" {
					for i := 0; i < len(childVars); i++ {
						for j := i + 1; j < len(childVars); j++ {
							f = append(f, sat.Clause{sat.Lit(-childVars[i]), sat.Lit(-childVars[j])})
						}
					}
				}
			}
		}
	}
	return f
}

// EncodeConfiguration builds the model CNF plus a unit clause for every
// feature in cfg's selected set, allocating variables for any selected
// ID not already seen while encoding the model.
func (e *Encoder) EncodeConfiguration(cfg *registry.Configuration) sat.Formula {
	f := e.EncodeModel()
	for _, id := range cfg.SelectedSet() {
		v := e.VarOf(id)
		f = append(f, sat.Clause{sat.Lit(v)})
	}
	return f
}

// isMandatory implements the precise mandatoriness rule: the feature's
// "mandatory" tag is explicitly true, or its parent has no variability
// group and it is that parent's only child.
func isMandatory(feat *registry.Feature, reg *registry.Registry, siblings []*registry.Feature) bool {
	if explicitlyMandatory(feat) {
		return true
	}
	parentID, hasParent := feat.ParentID()
	if !hasParent {
		return false
	}
	parent, known := reg.Feature(parentID)
	if known && parent.IsGroup() {
		return false
	}
	return len(siblings) == 1
}

func explicitlyMandatory(f *registry.Feature) bool {
	if f.Tags == nil {
		return false
	}
	b, ok := f.Tags["mandatory"].(bool)
	return ok && b
}

// childrenByParent groups features by their declared parent ID,
// preserving registry declaration order within each group.
func childrenByParent(features []*registry.Feature) map[string][]*registry.Feature {
	out := make(map[string][]*registry.Feature)
	for _, f := range features {
		parentID, hasParent := f.ParentID()
		if !hasParent {
			continue
		}
		out[parentID] = append(out[parentID], f)
	}
	return out
}
