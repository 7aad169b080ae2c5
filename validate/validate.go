// Package validate implements the validation orchestrator (C5): the
// three stateless entry points spec.md §4.5 describes, composing C2+C1
// for model/configuration consistency and C3+C4 for parameter-binding
// checks.
package validate

import (
	"fmt"
	"sort"

	"github.com/featureforge/plvalidate/constraint"
	"github.com/featureforge/plvalidate/debug"
	"github.com/featureforge/plvalidate/fmodel"
	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/sat"
)

// DefaultRootFeatureID is the root feature ID assumed when the host
// omits root_feature_id (spec.md §6).
const DefaultRootFeatureID = "ROOT"

// SATResult is the shared result shape for model and configuration
// consistency checks (spec.md §6's validate_feature_model_sat /
// validate_configuration_sat response shape).
type SATResult struct {
	IsConsistent bool
	Message      string
	NumFeatures  int
	NumClauses   int
	Details      string
}

// ModelConsistency implements spec.md §4.5 point 1: collect every
// feature, verify the declared root exists, encode, and decide.
func ModelConsistency(reg *registry.Registry, rootFeatureID string) SATResult {
	if debug.Orchestrate() {
		debug.Logf("validate.ModelConsistency: root=%q\n", rootFeatureID)
	}
	if rootFeatureID == "" {
		rootFeatureID = DefaultRootFeatureID
	}
	features := reg.FeaturesInOrder()
	if len(features) == 0 {
		return SATResult{IsConsistent: true, Message: "empty feature model is trivially consistent"}
	}
	if _, ok := reg.Feature(rootFeatureID); !ok {
		return SATResult{
			IsConsistent: false,
			Message:      fmt.Sprintf("declared root feature %q does not exist in the registry", rootFeatureID),
			NumFeatures:  len(features),
		}
	}

	enc := fmodel.NewEncoder(reg)
	f := enc.EncodeModel()
	ok, _ := sat.Solve(f, enc.NumVars())

	msg := "feature model is consistent"
	if !ok {
		msg = "feature model is unsatisfiable"
	}
	return SATResult{
		IsConsistent: ok,
		Message:      msg,
		NumFeatures:  len(features),
		NumClauses:   len(f),
	}
}

// ConfigurationConsistency implements spec.md §4.5 point 2: encode the
// model, append a unit clause per selected feature, decide.
func ConfigurationConsistency(reg *registry.Registry, rootFeatureID string, selectedFeatures []string) SATResult {
	if rootFeatureID == "" {
		rootFeatureID = DefaultRootFeatureID
	}
	features := reg.FeaturesInOrder()
	if _, ok := reg.Feature(rootFeatureID); len(features) > 0 && !ok {
		return SATResult{
			IsConsistent: false,
			Message:      fmt.Sprintf("declared root feature %q does not exist in the registry", rootFeatureID),
			NumFeatures:  len(features),
		}
	}

	enc := fmodel.NewEncoder(reg)
	f := enc.EncodeModel()
	for _, id := range dedupeStrings(selectedFeatures) {
		v := enc.VarOf(id)
		f = append(f, sat.Clause{sat.Lit(v)})
	}
	ok, _ := sat.Solve(f, enc.NumVars())

	msg := "configuration is consistent"
	if !ok {
		msg = "configuration is unsatisfiable under the feature model"
	}
	return SATResult{
		IsConsistent: ok,
		Message:      msg,
		NumFeatures:  len(features),
		NumClauses:   len(f),
	}
}

func dedupeStrings(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ParamError is one collected parameter-binding or constraint problem.
type ParamError struct {
	FeatureID  string
	Detail     string
	Constraint string // set only for constraint parse/eval/violation errors
}

// ParamResult is the result of ParameterBindings (spec.md §4.5 point 3).
type ParamResult struct {
	Valid                bool
	Errors               []ParamError
	NumFeaturesChecked   int
	NumParametersChecked int
}

// ParameterBindings implements spec.md §4.5 point 3: for each selected
// feature, type/range/enum-check its bound (or defaulted) parameters,
// then parse and evaluate each of its constraint expressions.
func ParameterBindings(reg *registry.Registry, configID string) (ParamResult, error) {
	cfg, ok := reg.Configuration(configID)
	if !ok {
		return ParamResult{}, fmt.Errorf("configuration %q not found", configID)
	}

	var errs []ParamError
	featuresChecked := 0
	paramsChecked := 0

	for _, id := range cfg.SelectedSet() {
		feat, ok := reg.Feature(id)
		if !ok {
			errs = append(errs, ParamError{FeatureID: id, Detail: "selected feature not found in registry"})
			continue
		}
		featuresChecked++

		paramNames := make([]string, 0, len(feat.Parameters))
		for name := range feat.Parameters {
			paramNames = append(paramNames, name)
		}
		sort.Strings(paramNames)
		for _, name := range paramNames {
			paramsChecked++
			bound, present := cfg.Binding(id, name)
			if _, err := feat.Parameters[name].Resolve(bound, present); err != nil {
				errs = append(errs, ParamError{
					FeatureID: id,
					Detail:    fmt.Sprintf("parameter %q: %v", name, err),
				})
			}
		}

		for _, expr := range feat.Constraints {
			v, err := constraint.EvaluateConstraint(expr, cfg, reg)
			if err != nil {
				errs = append(errs, ParamError{FeatureID: id, Constraint: expr, Detail: err.Error()})
				continue
			}
			if !v {
				errs = append(errs, ParamError{
					FeatureID:  id,
					Constraint: expr,
					Detail:     "constraint evaluated to false",
				})
			}
		}
	}

	return ParamResult{
		Valid:                len(errs) == 0,
		Errors:               errs,
		NumFeaturesChecked:   featuresChecked,
		NumParametersChecked: paramsChecked,
	}, nil
}
