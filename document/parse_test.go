package document

import (
	"errors"
	"testing"
)

const sampleDoc = `
config: egcut
keys:
  genome_dir: /data/genomes
  sample_root: ${genome_dir}/samples
subsets:
  - name: wgs
    description: whole genome samples
  - qc
classes:
  project:
    class: project
    properties:
      label: Example project
  cohort_a:
    class: cohort
    parent: project
    subsets: [wgs]
    properties:
      path: ${genome_dir}/a
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1, s2]
    parent: cohort_a
    pattern:
      name: sample__${item}
      properties:
        id: ${item}
    subsets: [wgs]
`

// TestParse_Document verifies section decoding and declaration order.
func TestParse_Document(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if doc.Config != "egcut" {
		t.Errorf("Config = %q, want %q", doc.Config, "egcut")
	}

	wantKeys := []Key{
		{Name: "genome_dir", Value: "/data/genomes"},
		{Name: "sample_root", Value: "${genome_dir}/samples"},
	}

	if len(doc.Keys) != len(wantKeys) {
		t.Fatalf("len(Keys) = %d, want %d", len(doc.Keys), len(wantKeys))
	}

	for i, want := range wantKeys {
		if doc.Keys[i] != want {
			t.Errorf("Keys[%d] = %+v, want %+v", i, doc.Keys[i], want)
		}
	}

	if len(doc.Subsets) != 2 || doc.Subsets[0].Name != "wgs" || doc.Subsets[1].Name != "qc" {
		t.Errorf("Subsets = %+v, want wgs and qc", doc.Subsets)
	}

	if len(doc.Classes) != 2 {
		t.Fatalf("len(Classes) = %d, want 2", len(doc.Classes))
	}

	root := doc.Classes[0]
	if root.Name != "project" || root.Type != "project" || !root.Root {
		t.Errorf("Classes[0] = %+v, want root class project", root)
	}

	child := doc.Classes[1]
	if child.Root || len(child.Parents) != 1 || child.Parents[0] != "project" {
		t.Errorf("Classes[1] = %+v, want single parent project", child)
	}

	if len(child.Subsets) != 1 || child.Subsets[0] != "wgs" {
		t.Errorf("Classes[1].Subsets = %v, want [wgs]", child.Subsets)
	}

	if len(doc.Templates) != 1 {
		t.Fatalf("len(Templates) = %d, want 1", len(doc.Templates))
	}

	tmpl := doc.Templates[0]
	if tmpl.Name != "make_samples" || tmpl.Class != "sample" || tmpl.Operation != OpForEachItem {
		t.Errorf("Templates[0] = %+v", tmpl)
	}

	if !tmpl.HasInput {
		t.Error("Templates[0].HasInput = false, want true")
	}

	if !tmpl.Pattern.HasName || tmpl.Pattern.Name != "sample__${item}" {
		t.Errorf("Templates[0].Pattern = %+v", tmpl.Pattern)
	}

	if len(tmpl.Pattern.Properties) != 1 || tmpl.Pattern.Properties[0].Name != "id" {
		t.Errorf("Templates[0].Pattern.Properties = %+v", tmpl.Pattern.Properties)
	}
}

// TestParse_PropertyOrder verifies that property declaration order is
// preserved, not sorted.
func TestParse_PropertyOrder(t *testing.T) {
	doc, err := Parse([]byte(`
config: x
classes:
  c:
    class: t
    properties:
      zeta: 1
      alpha: 2
      mid: 3
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	props := doc.Classes[0].Properties

	if len(props) != len(want) {
		t.Fatalf("len(Properties) = %d, want %d", len(props), len(want))
	}

	for i, name := range want {
		if props[i].Name != name {
			t.Errorf("Properties[%d].Name = %q, want %q", i, props[i].Name, name)
		}
	}
}

// TestParse_Errors verifies structural failure modes.
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "missing config",
			src:  "keys:\n  a: b\n",
			want: ErrMissingField,
		},
		{
			name: "class without type",
			src:  "config: x\nclasses:\n  c:\n    parent: p\n",
			want: ErrMissingField,
		},
		{
			name: "subsets not a list",
			src:  "config: x\nsubsets:\n  wgs: tag\n",
			want: ErrFieldType,
		},
		{
			name: "subset without name",
			src:  "config: x\nsubsets:\n  - description: d\n",
			want: ErrMissingField,
		},
		{
			name: "key with mapping value",
			src:  "config: x\nkeys:\n  a:\n    b: c\n",
			want: ErrFieldType,
		},
		{
			name: "scalar class body",
			src:  "config: x\nclasses:\n  c: 7\n",
			want: ErrFieldType,
		},
		{
			name: "not yaml",
			src:  "config: [unclosed\n",
			want: ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatalf("Parse succeeded, want error")
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}
