// Package rules implements the peripheral rule checker (C6): structural
// lints and generic link-graph trace checks that back the
// "validate_rules" entry point. These checks are explicitly outside the
// core SAT/constraint reasoning engine (sat, fmodel, constraint) — they
// never consult or affect its verdicts, per spec.md §1's framing of this
// layer as "external collaborator" plumbing.
package rules

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/featureforge/plvalidate/debug"
	"github.com/featureforge/plvalidate/registry"
)

// Kind discriminates the structural-violation taxonomy.
type Kind string

const (
	DuplicateID         Kind = "duplicate_id"
	DanglingReference   Kind = "dangling_reference"
	RegistryKeyMismatch Kind = "registry_key_mismatch"
	GroupCardinality    Kind = "group_cardinality"
	UnknownElementType  Kind = "unknown_element_type"
	TracePredicate      Kind = "trace_predicate"
)

// Violation is one collected structural or link-graph problem.
type Violation struct {
	Kind   Kind
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// Result is the outcome of Check.
type Result struct {
	Passed        bool
	TotalElements int
	Message       string
	Violations    []Violation
}

// relationPredicates maps the fixed set of recognized link relations to an
// expr-lang predicate over a single "targetType" string variable. Unlisted
// relations are not linted beyond the generic dangling-target check.
var relationPredicates = map[string]string{
	"verifies":     `targetType == "req" || targetType == "use_case"`,
	"implements":   `targetType == "feature"`,
	"derives_from": `targetType == "req" || targetType == "use_case"`,
	"traces_to":    `true`,
}

// Check runs every peripheral structural lint and link-graph predicate
// against reg. activeConfigID is optional (per spec.md §6); when
// non-empty it additionally confirms the active configuration ID resolves
// to a configuration element; whether that element sits under its
// required "CONFIG:" key is reported by the registry-key check, not by
// this lookup. extraLinks carries the host
// protocol's top-level "links" array (spec.md §6), distinct from links
// embedded in an element's own JSON body (§10) — both are checked the
// same way.
func Check(reg *registry.Registry, activeConfigID string, extraLinks []ExtraLink) Result {
	if debug.Rules() {
		debug.Logf("rules.Check: %d keys, active_config=%q\n", len(reg.Keys()), activeConfigID)
	}
	var violations []Violation

	violations = append(violations, checkDuplicateIDs(reg)...)
	violations = append(violations, checkDanglingReferences(reg)...)
	violations = append(violations, checkRegistryKeyMismatches(reg)...)
	violations = append(violations, checkGroupCardinality(reg)...)
	violations = append(violations, checkTracePredicates(reg)...)
	violations = append(violations, checkExtraLinks(reg, extraLinks)...)

	if activeConfigID != "" {
		if _, ok := reg.Configuration(activeConfigID); !ok {
			violations = append(violations, Violation{
				Kind:   DanglingReference,
				Detail: fmt.Sprintf("active_config %q does not resolve to a configuration element", activeConfigID),
			})
		}
	}

	total := len(reg.Features) + len(reg.Configurations) + len(reg.Others)
	msg := "all peripheral rule checks passed"
	if len(violations) > 0 {
		msg = violations[0].String()
	}
	return Result{
		Passed:        len(violations) == 0,
		TotalElements: total,
		Message:       msg,
		Violations:    violations,
	}
}

// checkDuplicateIDs flags two feature-like elements (features or other
// elements, never a feature/configuration pair, which is the required
// pairing) declaring the same effective ID.
func checkDuplicateIDs(reg *registry.Registry) []Violation {
	seen := make(map[string]string) // id -> first registry key seen under
	var out []Violation
	for _, key := range reg.Keys() {
		var id string
		switch {
		case reg.Features[key] != nil:
			id = reg.Features[key].ID
		case reg.Others[key] != nil:
			id = reg.Others[key].ID
		default:
			continue
		}
		if id == "" {
			continue
		}
		if firstKey, ok := seen[id]; ok {
			out = append(out, Violation{
				Kind:   DuplicateID,
				Detail: fmt.Sprintf("id %q declared by both %q and %q", id, firstKey, key),
			})
			continue
		}
		seen[id] = key
	}
	return out
}

func checkDanglingReferences(reg *registry.Registry) []Violation {
	var out []Violation
	for _, f := range reg.FeaturesInOrder() {
		if parentID, hasParent := f.ParentID(); hasParent {
			if _, ok := reg.Feature(parentID); !ok {
				out = append(out, Violation{
					Kind:   DanglingReference,
					Detail: fmt.Sprintf("feature %q has dangling parent %q", f.ID, parentID),
				})
			}
		}
		for _, reqID := range f.RequiresIDs() {
			if _, ok := reg.Feature(reqID); !ok {
				out = append(out, Violation{
					Kind:   DanglingReference,
					Detail: fmt.Sprintf("feature %q requires dangling id %q", f.ID, reqID),
				})
			}
		}
		for _, excID := range f.ExcludesIDs() {
			if _, ok := reg.Feature(excID); !ok {
				out = append(out, Violation{
					Kind:   DanglingReference,
					Detail: fmt.Sprintf("feature %q excludes dangling id %q", f.ID, excID),
				})
			}
		}
	}
	for _, key := range reg.Keys() {
		id, isConfigKey := registry.IsConfigKey(key)
		if !isConfigKey {
			continue
		}
		cfg, ok := reg.Configurations[id]
		if !ok {
			continue
		}
		if cfg.Root != "" {
			if _, ok := reg.Feature(cfg.Root); !ok {
				out = append(out, Violation{
					Kind:   DanglingReference,
					Detail: fmt.Sprintf("configuration %q has dangling root %q", cfg.ID, cfg.Root),
				})
			}
		}
		for _, sel := range cfg.SelectedSet() {
			if _, ok := reg.Feature(sel); !ok {
				out = append(out, Violation{
					Kind:   DanglingReference,
					Detail: fmt.Sprintf("configuration %q selects dangling id %q", cfg.ID, sel),
				})
			}
		}
	}
	return out
}

func checkRegistryKeyMismatches(reg *registry.Registry) []Violation {
	var out []Violation
	for _, key := range reg.Keys() {
		if _, isConfigKey := registry.IsConfigKey(key); isConfigKey {
			if _, ok := reg.Features[key]; ok {
				out = append(out, Violation{
					Kind:   RegistryKeyMismatch,
					Detail: fmt.Sprintf("feature stored under reserved configuration key %q", key),
				})
			}
			if _, ok := reg.Others[key]; ok {
				out = append(out, Violation{
					Kind:   RegistryKeyMismatch,
					Detail: fmt.Sprintf("non-configuration element stored under reserved configuration key %q", key),
				})
			}
		}
	}
	for _, id := range configIDsInOrder(reg) {
		c := reg.Configurations[id]
		expected := registry.ConfigKey(c.ID)
		if c.Key != expected {
			out = append(out, Violation{
				Kind:   RegistryKeyMismatch,
				Detail: fmt.Sprintf("configuration %q stored under key %q, expected %q", c.ID, c.Key, expected),
			})
		}
	}
	return out
}

// configIDsInOrder returns configuration bare IDs ordered by their first
// appearance in the registry, so violation messages are reproducible.
func configIDsInOrder(reg *registry.Registry) []string {
	out := make([]string, 0, len(reg.Configurations))
	seen := make(map[string]bool, len(reg.Configurations))
	for _, key := range reg.Keys() {
		id, ok := registry.IsConfigKey(key)
		if !ok {
			id = key
		}
		if _, exists := reg.Configurations[id]; !exists || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func checkGroupCardinality(reg *registry.Registry) []Violation {
	children := make(map[string]int)
	for _, f := range reg.FeaturesInOrder() {
		if parentID, ok := f.ParentID(); ok {
			children[parentID]++
		}
	}
	var out []Violation
	for _, f := range reg.FeaturesInOrder() {
		if f.IsGroup() && children[f.ID] < 2 {
			out = append(out, Violation{
				Kind:   GroupCardinality,
				Detail: fmt.Sprintf("variability group %q has %d children, need at least 2", f.ID, children[f.ID]),
			})
		}
	}
	return out
}

// checkTracePredicates walks every link carried by a non-feature element
// and, for the fixed set of recognized relations, checks the target's
// element type against a small expr-lang predicate.
func checkTracePredicates(reg *registry.Registry) []Violation {
	var out []Violation
	for _, key := range reg.Keys() {
		o, ok := reg.Others[key]
		if !ok {
			continue
		}
		for _, link := range o.Links {
			out = append(out, checkOneLink(reg, o.ID, link.Relation, link.Target)...)
		}
	}
	return out
}

// ExtraLink is one entry of the host protocol's top-level "links" array
// (spec.md §6), carrying its own source element ID rather than being
// embedded in that element's JSON body.
type ExtraLink struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

func checkExtraLinks(reg *registry.Registry, links []ExtraLink) []Violation {
	var out []Violation
	for _, link := range links {
		out = append(out, checkOneLink(reg, link.Source, link.Relation, link.Target)...)
	}
	return out
}

func checkOneLink(reg *registry.Registry, source, relation, target string) []Violation {
	targetType, found := elementType(reg, target)
	if !found {
		return []Violation{{
			Kind:   DanglingReference,
			Detail: fmt.Sprintf("%q has a %q link to dangling target %q", source, relation, target),
		}}
	}
	predicate, known := relationPredicates[relation]
	if !known {
		return nil
	}
	result, err := expr.Eval(predicate, map[string]any{"targetType": targetType})
	if err != nil {
		return []Violation{{
			Kind:   TracePredicate,
			Detail: fmt.Sprintf("evaluating %q predicate for %q -> %q: %v", relation, source, target, err),
		}}
	}
	ok, _ := result.(bool)
	if !ok {
		return []Violation{{
			Kind:   TracePredicate,
			Detail: fmt.Sprintf("%q link from %q to %q (type %q) fails relation predicate", relation, source, target, targetType),
		}}
	}
	return nil
}

// elementType resolves id's registry element type, covering features,
// configurations, and other elements.
func elementType(reg *registry.Registry, id string) (string, bool) {
	if _, ok := reg.Feature(id); ok {
		return "feature", true
	}
	if _, ok := reg.Configurations[id]; ok {
		return "config", true
	}
	if o, ok := reg.Others[id]; ok {
		return o.Type, true
	}
	return "", false
}
