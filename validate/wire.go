package validate

import (
	"encoding/json"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/rules"
)

// HelloGreeting is the literal response the "hello" entry point returns.
const HelloGreeting = "hello from plvalidate"

type satRequest struct {
	Registry         json.RawMessage `json:"registry"`
	RootFeatureID    string          `json:"root_feature_id,omitempty"`
	SelectedFeatures []string        `json:"selected_features,omitempty"`
}

type satResponse struct {
	IsConsistent bool   `json:"is_consistent"`
	Message      string `json:"message"`
	NumFeatures  int    `json:"num_features"`
	NumClauses   int    `json:"num_clauses"`
	Details      string `json:"details,omitempty"`
}

type rulesRequest struct {
	Registry     json.RawMessage   `json:"registry"`
	Links        []rules.ExtraLink `json:"links,omitempty"`
	ActiveConfig string            `json:"active_config,omitempty"`
}

type rulesResponse struct {
	Passed        bool              `json:"passed"`
	TotalElements int               `json:"total_elements"`
	Message       string            `json:"message"`
	Violations    []rules.Violation `json:"violations,omitempty"`
}

func parseFailure(err error) []byte {
	out, _ := json.Marshal(satResponse{
		IsConsistent: false,
		Message:      "input malformed: " + err.Error(),
	})
	return out
}

func rulesParseFailure(err error) []byte {
	out, _ := json.Marshal(rulesResponse{
		Passed:  false,
		Message: "input malformed: " + err.Error(),
	})
	return out
}

// ValidateFeatureModelSAT implements the "validate_feature_model_sat"
// entry point of spec.md §6: a pure function of its input buffer.
func ValidateFeatureModelSAT(input []byte) []byte {
	var req satRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return parseFailure(err)
	}
	reg, err := registry.Parse(req.Registry)
	if err != nil {
		return parseFailure(err)
	}
	res := ModelConsistency(reg, req.RootFeatureID)
	out, _ := json.Marshal(satResponse{
		IsConsistent: res.IsConsistent,
		Message:      res.Message,
		NumFeatures:  res.NumFeatures,
		NumClauses:   res.NumClauses,
		Details:      res.Details,
	})
	return out
}

// ValidateConfigurationSAT implements the "validate_configuration_sat"
// entry point of spec.md §6.
func ValidateConfigurationSAT(input []byte) []byte {
	var req satRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return parseFailure(err)
	}
	reg, err := registry.Parse(req.Registry)
	if err != nil {
		return parseFailure(err)
	}
	res := ConfigurationConsistency(reg, req.RootFeatureID, req.SelectedFeatures)
	out, _ := json.Marshal(satResponse{
		IsConsistent: res.IsConsistent,
		Message:      res.Message,
		NumFeatures:  res.NumFeatures,
		NumClauses:   res.NumClauses,
		Details:      res.Details,
	})
	return out
}

// ValidateRules implements the "validate_rules" entry point of
// spec.md §6, backed by the peripheral rule checker (C6).
func ValidateRules(input []byte) []byte {
	var req rulesRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return rulesParseFailure(err)
	}
	reg, err := registry.Parse(req.Registry)
	if err != nil {
		return rulesParseFailure(err)
	}
	res := rules.Check(reg, req.ActiveConfig, req.Links)
	out, _ := json.Marshal(rulesResponse{
		Passed:        res.Passed,
		TotalElements: res.TotalElements,
		Message:       res.Message,
		Violations:    res.Violations,
	})
	return out
}

// Hello implements the "hello" entry point of spec.md §6: it takes no
// input and returns the literal greeting bytes.
func Hello([]byte) []byte {
	return []byte(HelloGreeting)
}
