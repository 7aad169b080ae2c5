package registry

import "testing"

func TestParsePreservesDeclarationOrder(t *testing.T) {
	data := []byte(`{
		"ROOT": {"type": "feature", "id": "ROOT"},
		"F2": {"type": "feature", "id": "F2", "parent": "ROOT"},
		"F1": {"type": "feature", "id": "F1", "parent": "ROOT"},
		"CONFIG:C1": {"type": "config", "id": "C1", "root": "ROOT", "selected": ["ROOT"]}
	}`)

	reg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"ROOT", "F2", "F1", "CONFIG:C1"}
	got := reg.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}

	order := reg.FeaturesInOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 features in order, got %d", len(order))
	}
	if order[0].ID != "ROOT" || order[1].ID != "F2" || order[2].ID != "F1" {
		t.Fatalf("unexpected feature order: %v", []string{order[0].ID, order[1].ID, order[2].ID})
	}

	cfg, ok := reg.Configuration("C1")
	if !ok {
		t.Fatal("expected configuration C1 to be present")
	}
	if cfg.Root != "ROOT" {
		t.Fatalf("cfg.Root = %q, want ROOT", cfg.Root)
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	if _, err := Parse([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for non-object registry")
	}
}

func TestFeatureRequiresExcludesMerging(t *testing.T) {
	data := []byte(`{
		"F1": {"type": "feature", "id": "F1", "requires": "F2", "tags": {"excludes": ["F3", "F4"]}}
	}`)
	reg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f := reg.Features["F1"]
	req := f.RequiresIDs()
	if len(req) != 1 || req[0] != "F2" {
		t.Fatalf("RequiresIDs = %v, want [F2]", req)
	}
	exc := f.ExcludesIDs()
	if len(exc) != 2 || exc[0] != "F3" || exc[1] != "F4" {
		t.Fatalf("ExcludesIDs = %v, want [F3 F4]", exc)
	}
}

func TestConfigurationSelectedSetDedupe(t *testing.T) {
	c := &Configuration{Selected: []string{"A", "B", "A", "C", "B"}}
	got := c.SelectedSet()
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("SelectedSet = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SelectedSet[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
