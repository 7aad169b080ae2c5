package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// discriminator peeks at an element's "type" field before deciding which
// concrete struct to decode it into.
type discriminator struct {
	Type string `json:"type"`
}

// Parse decodes a registry JSON object, preserving the declaration order
// of its keys. Declaration order matters beyond cosmetics: spec.md's
// encoder allocates SAT variables in first-seen order and the
// orchestrator reports parameter/constraint errors in registry-traversal
// order, so both need the true document order, not Go's randomized map
// iteration. encoding/json's map decoding throws that order away, so
// this walks the object token-by-token instead of unmarshaling into
// map[string]json.RawMessage.
func Parse(data []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("registry must be a JSON object")
	}

	reg := NewRegistry()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode registry key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("registry key must be a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode registry element %q: %w", key, err)
		}
		if err := reg.addRaw(key, raw); err != nil {
			return nil, fmt.Errorf("registry element %q: %w", key, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return reg, nil
}

func (r *Registry) addRaw(key string, raw json.RawMessage) error {
	var disc discriminator
	if err := json.Unmarshal(raw, &disc); err != nil {
		return fmt.Errorf("invalid element: %w", err)
	}

	r.order = append(r.order, key)

	switch ElementType(disc.Type) {
	case ElementFeature:
		f := &Feature{}
		if err := json.Unmarshal(raw, f); err != nil {
			return fmt.Errorf("invalid feature: %w", err)
		}
		if f.ID == "" {
			f.ID = key
		}
		r.Features[key] = f
		return nil
	case ElementConfig:
		c := &Configuration{}
		if err := json.Unmarshal(raw, c); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		bareID, _ := IsConfigKey(key)
		if bareID == "" {
			bareID = key
		}
		if c.ID == "" {
			c.ID = bareID
		}
		c.Key = key
		r.Configurations[bareID] = c
		return nil
	default:
		o := &OtherElement{}
		if err := json.Unmarshal(raw, o); err != nil {
			return fmt.Errorf("invalid element: %w", err)
		}
		if o.ID == "" {
			o.ID = key
		}
		r.Others[key] = o
		return nil
	}
}
