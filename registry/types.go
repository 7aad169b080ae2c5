// Package registry holds the element types the host passes into the
// validator: features, parameter schemas, configurations, and the
// heterogeneous registry that maps a key to one of them. It is the shared
// vocabulary every other package (sat, fmodel, constraint, rules,
// validate) builds on, the way the teacher's ir package underlies its
// own parser/evaluator/schema stack.
package registry

import "strings"

// ElementType discriminates registry elements on their "type" field.
type ElementType string

const (
	ElementFeature              ElementType = "feature"
	ElementReq                  ElementType = "req"
	ElementUseCase              ElementType = "use_case"
	ElementConfig               ElementType = "config"
	ElementBlockDefinition      ElementType = "block_definition"
	ElementInternalBlockDiagram ElementType = "internal_block_diagram"
	ElementSequenceDiagram      ElementType = "sequence_diagram"
	ElementImplementation       ElementType = "implementation"
	ElementTestCase             ElementType = "test_case"
)

// ConfigKeyPrefix disambiguates a configuration's registry key from a
// feature sharing the same bare ID.
const ConfigKeyPrefix = "CONFIG:"

// Feature is a node in the product-line variability tree.
type Feature struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title,omitempty"`
	Tags        map[string]any          `json:"tags,omitempty"`
	Parent      *string                 `json:"parent,omitempty"`
	Concrete    *bool                   `json:"concrete,omitempty"`
	Group       string                  `json:"group,omitempty"`
	Body        string                  `json:"body,omitempty"`
	Parameters  map[string]*ParamSchema `json:"parameters,omitempty"`
	Constraints []string                `json:"constraints,omitempty"`
	Requires    any                     `json:"requires,omitempty"`
}

// IsConcrete reports whether the feature may appear in a configuration's
// selected set. Concrete defaults to true when unset.
func (f *Feature) IsConcrete() bool {
	return f.Concrete == nil || *f.Concrete
}

// ParentID returns the feature's parent and whether it has one. A nil or
// empty Parent denotes a root.
func (f *Feature) ParentID() (string, bool) {
	if f.Parent == nil || *f.Parent == "" {
		return "", false
	}
	return *f.Parent, true
}

// IsGroup reports whether the feature is a variability-group parent.
func (f *Feature) IsGroup() bool {
	return f.Group == "XOR" || f.Group == "OR"
}

// RequiresIDs returns the (possibly empty) list of feature IDs this
// feature requires, gathered from both the convenience top-level
// "requires" field and tags["requires"].
func (f *Feature) RequiresIDs() []string {
	ids := idList(f.Requires)
	if f.Tags != nil {
		ids = append(ids, idList(f.Tags["requires"])...)
	}
	return dedupe(ids)
}

// ExcludesIDs returns the (possibly empty) list of feature IDs this
// feature excludes, gathered from tags["excludes"].
func (f *Feature) ExcludesIDs() []string {
	if f.Tags == nil {
		return nil
	}
	return dedupe(idList(f.Tags["excludes"]))
}

// idList normalizes a tag value that may be a single ID string or an
// ordered sequence of ID strings.
func idList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
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

// Configuration is a concrete product selection: a subset of feature IDs
// plus parameter bindings.
type Configuration struct {
	ID       string                    `json:"id"`
	Title    string                    `json:"title,omitempty"`
	Tags     map[string]any            `json:"tags,omitempty"`
	Root     string                    `json:"root"`
	Selected []string                  `json:"selected"`
	Bindings map[string]map[string]any `json:"bindings,omitempty"`

	// Key is the literal registry key this configuration was declared
	// under, preserved so the peripheral rule checker can confirm it
	// carries the required "CONFIG:" prefix. Not part of the JSON wire
	// shape of the element itself.
	Key string `json:"-"`
}

// SelectedSet returns the selected feature IDs in first-occurrence order
// with duplicates removed; duplicates in the source JSON must never
// change validation results.
func (c *Configuration) SelectedSet() []string {
	return dedupe(c.Selected)
}

// IsSelected reports whether featureID is in the configuration's selected
// set.
func (c *Configuration) IsSelected(featureID string) bool {
	for _, id := range c.Selected {
		if id == featureID {
			return true
		}
	}
	return false
}

// Binding looks up a bound value for featureID.paramName, returning
// (value, true) if present.
func (c *Configuration) Binding(featureID, paramName string) (any, bool) {
	byFeature, ok := c.Bindings[featureID]
	if !ok {
		return nil, false
	}
	v, ok := byFeature[paramName]
	return v, ok
}

// Link is a generic trace edge carried by non-feature elements (req,
// use_case, test_case, SysML-ish blocks) and consumed by the peripheral
// rule checker, never by the SAT/constraint core.
type Link struct {
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

// OtherElement covers every registry element type the core reasoning
// engine does not interpret: requirements, use cases, SysML blocks,
// implementations, test cases. They still participate in the peripheral
// structural checks (spec.md §7's "structural violation" taxonomy).
type OtherElement struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Title string         `json:"title,omitempty"`
	Tags  map[string]any `json:"tags,omitempty"`
	Body  string         `json:"body,omitempty"`
	Links []Link         `json:"links,omitempty"`
}

// Registry maps registry keys to elements, preserving the declaration
// order of a JSON/YAML document so that traversal-order guarantees
// (spec.md §5) hold. Feature lookup by ID is O(1) via the Features map.
type Registry struct {
	Features       map[string]*Feature
	Configurations map[string]*Configuration
	Others         map[string]*OtherElement

	order []string
}

// NewRegistry returns an empty, ready-to-populate registry.
func NewRegistry() *Registry {
	return &Registry{
		Features:       make(map[string]*Feature),
		Configurations: make(map[string]*Configuration),
		Others:         make(map[string]*OtherElement),
	}
}

// Keys returns every registry key in declaration order.
func (r *Registry) Keys() []string {
	return r.order
}

// FeaturesInOrder returns every feature in the order it was first
// declared in the source document — the traversal order the encoder
// (fmodel) and the parameter-binding checker (validate) both rely on.
func (r *Registry) FeaturesInOrder() []*Feature {
	out := make([]*Feature, 0, len(r.Features))
	for _, k := range r.order {
		if f, ok := r.Features[k]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Feature looks up a feature by bare ID.
func (r *Registry) Feature(id string) (*Feature, bool) {
	f, ok := r.Features[id]
	return f, ok
}

// Configuration looks up a configuration by its bare ID (without the
// CONFIG: prefix).
func (r *Registry) Configuration(id string) (*Configuration, bool) {
	c, ok := r.Configurations[id]
	return c, ok
}

// ConfigKey builds the registry key a configuration with the given bare
// ID must be stored under.
func ConfigKey(id string) string {
	return ConfigKeyPrefix + id
}

// IsConfigKey reports whether key is a well-formed configuration key and
// returns the bare ID.
func IsConfigKey(key string) (string, bool) {
	if !strings.HasPrefix(key, ConfigKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, ConfigKeyPrefix), true
}
