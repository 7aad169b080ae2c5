package validate

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// modelFixtures bundles several named registry documents and their
// expected model-consistency verdict in one txtar archive, the way a
// table of golden files would be laid out on disk without needing one
// file per case.
const modelFixtures = `
-- consistent-single-child.json --
{
	"ROOT": {"type": "feature", "id": "ROOT"},
	"F1": {"type": "feature", "id": "F1", "parent": "ROOT"}
}
-- consistent-single-child.want --
consistent
-- xor-group-contradiction.json --
{
	"ROOT": {"type": "feature", "id": "ROOT", "group": "XOR"},
	"A": {"type": "feature", "id": "A", "parent": "ROOT", "tags": {"mandatory": true}},
	"B": {"type": "feature", "id": "B", "parent": "ROOT", "tags": {"mandatory": true}}
}
-- xor-group-contradiction.want --
inconsistent
`

func TestModelConsistencyFixtures(t *testing.T) {
	arc := txtar.Parse([]byte(modelFixtures))
	files := make(map[string]string, len(arc.Files))
	for _, f := range arc.Files {
		files[f.Name] = string(f.Data)
	}

	var cases []string
	for name := range files {
		if strings.HasSuffix(name, ".json") {
			cases = append(cases, strings.TrimSuffix(name, ".json"))
		}
	}

	for _, name := range cases {
		name := name
		t.Run(name, func(t *testing.T) {
			reg := parseReg(t, files[name+".json"])
			want := strings.TrimSpace(files[name+".want"])
			res := ModelConsistency(reg, "ROOT")
			got := "consistent"
			if !res.IsConsistent {
				got = "inconsistent"
			}
			if got != want {
				t.Fatalf("ModelConsistency(%s) = %s, want %s (message: %s)", name, got, want, res.Message)
			}
		})
	}
}
