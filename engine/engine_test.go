package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/lang"
	"github.com/yakaboskic/meta-sanity/log"
	"github.com/yakaboskic/meta-sanity/registry"
)

func parseDoc(t *testing.T, src string) *document.Document {
	t.Helper()

	doc, err := document.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	return doc
}

func quiet() Option {
	return WithLogger(log.Make(io.Discard))
}

func expand(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()

	res, err := Expand(context.Background(), parseDoc(t, src), append(opts, quiet())...)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	return res
}

func expandErr(t *testing.T, src string, opts ...Option) error {
	t.Helper()

	_, err := Expand(context.Background(), parseDoc(t, src), append(opts, quiet())...)
	if err == nil {
		t.Fatal("Expand succeeded, want error")
	}

	return err
}

func entityNames(entities []*registry.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Name
	}

	return out
}

func property(t *testing.T, e *registry.Entity, name string) string {
	t.Helper()

	for _, p := range e.Properties {
		if p.Name == name {
			return p.Value
		}
	}

	t.Fatalf("entity %q has no property %q", e.Name, name)

	return ""
}

const docHeader = `
config: egcut
classes:
  root:
    class: project
`

// TestExpand_Range covers the inclusive sequence scenario: three items,
// ids rendered from the item value.
func TestExpand_Range(t *testing.T) {
	res := expand(t, docHeader+`
templates:
  make_items:
    class: sample
    operation: range
    input: {start: 1, end: 3, inc: 1}
    parent: root
    pattern:
      name: item__${item}
      properties:
        id: ${item}
`)

	want := []string{"root", "item__1", "item__2", "item__3"}

	got := entityNames(res.Entities)
	if len(got) != len(want) {
		t.Fatalf("entities = %v, want %v", got, want)
	}

	for i, name := range want {
		if got[i] != name {
			t.Errorf("entities[%d] = %q, want %q", i, got[i], name)
		}
	}

	for i, id := range []string{"1", "2", "3"} {
		if v := property(t, res.Entities[i+1], "id"); v != id {
			t.Errorf("entity %q id = %q, want %q", res.Entities[i+1].Name, v, id)
		}
	}
}

// TestExpand_ForEachItem covers order preservation and expression
// properties over item values.
func TestExpand_ForEachItem(t *testing.T) {
	res := expand(t, docHeader+`
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [a, bb]
    parent: root
    pattern:
      name: sample__${item}
      properties:
        length: ${len(item)}
        loud: ${item.upper()}
`)

	if len(res.Entities) != 3 {
		t.Fatalf("entities = %v, want 3", entityNames(res.Entities))
	}

	first, second := res.Entities[1], res.Entities[2]

	if first.Name != "sample__a" || second.Name != "sample__bb" {
		t.Errorf("names = %q, %q", first.Name, second.Name)
	}

	if property(t, first, "length") != "1" || property(t, second, "length") != "2" {
		t.Error("length properties wrong")
	}

	if property(t, first, "loud") != "A" || property(t, second, "loud") != "BB" {
		t.Error("loud properties wrong")
	}

	if len(first.Parents) != 1 || first.Parents[0] != "root" {
		t.Errorf("parents = %v, want [root]", first.Parents)
	}
}

// TestExpand_ForEachClass covers registry queries with subset filters.
func TestExpand_ForEachClass(t *testing.T) {
	res := expand(t, docHeader+`
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1, s2, s3]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
    subsets: [wgs]
  make_other:
    class: sample
    operation: for_each_item
    input: [x1]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
  make_analyses:
    class: analysis
    operation: for_each_class
    input:
      class_name: sample
      if_subset: [wgs]
    parent: root
    pattern:
      name: qc__${item}
      properties:
        target: ${item}
`)

	analyses := []string{}

	for _, e := range res.Entities {
		if e.Class == "analysis" {
			analyses = append(analyses, e.Name)
		}
	}

	want := []string{"qc__s1", "qc__s2", "qc__s3"}
	if strings.Join(analyses, " ") != strings.Join(want, " ") {
		t.Errorf("analyses = %v, want %v", analyses, want)
	}
}

// TestExpand_Combination covers odometer ordering with a literal list,
// a class query, and a nested range.
func TestExpand_Combination(t *testing.T) {
	res := expand(t, docHeader+`
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1, s2]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
  make_runs:
    class: run
    operation: iter.combination
    input:
      - name: sample
        class_name: sample
      - name: mode
        values: [fast, slow]
      - name: rep
        operation: range
        start: 1
        end: 2
        inc: 1
    parent: ${item:sample}
    pattern:
      name: run__${item:sample}__${item:mode}__${item:rep}
      properties:
        sample: ${item:sample}
        mode: ${item:mode}
`)

	runs := []string{}

	for _, e := range res.Entities {
		if e.Class == "run" {
			runs = append(runs, e.Name)
		}
	}

	want := []string{
		"run__s1__fast__1", "run__s1__fast__2",
		"run__s1__slow__1", "run__s1__slow__2",
		"run__s2__fast__1", "run__s2__fast__2",
		"run__s2__slow__1", "run__s2__slow__2",
	}

	if strings.Join(runs, " ") != strings.Join(want, " ") {
		t.Errorf("runs = %v, want %v", runs, want)
	}

	first, _ := findEntity(res, "run__s1__fast__1")
	if first == nil || len(first.Parents) != 1 || first.Parents[0] != "s1" {
		t.Errorf("parents of first run = %+v, want [s1]", first)
	}
}

func findEntity(res *Result, name string) (*registry.Entity, bool) {
	for _, e := range res.Entities {
		if e.Name == name {
			return e, true
		}
	}

	return nil, false
}

// TestExpand_CombinationEmptySpec verifies that an empty resolved value
// list empties the product without failing the run.
func TestExpand_CombinationEmptySpec(t *testing.T) {
	res := expand(t, docHeader+`
templates:
  make_runs:
    class: run
    operation: iter.combination
    input:
      - name: mode
        values: []
      - name: rep
        values: [1, 2]
    parent: root
    pattern:
      name: run__${item:mode}__${item:rep}
      properties:
        rep: ${item:rep}
`)

	if len(res.Entities) != 1 {
		t.Errorf("entities = %v, want only the root", entityNames(res.Entities))
	}
}

// TestExpand_KeysAvailable verifies resolved keys bind into patterns.
func TestExpand_KeysAvailable(t *testing.T) {
	res := expand(t, `
config: egcut
keys:
  base: /data
  samples: ${base}/samples
classes:
  root:
    class: project
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1]
    parent: root
    pattern:
      name: ${item}
      properties:
        path: ${samples}/${item}
`)

	if len(res.Keys) != 2 || res.Keys[1].Value != "/data/samples" {
		t.Errorf("Keys = %+v", res.Keys)
	}

	e, _ := findEntity(res, "s1")
	if v := property(t, e, "path"); v != "/data/samples/s1" {
		t.Errorf("path = %q, want /data/samples/s1", v)
	}
}

// TestExpand_Prefix verifies the prefix binding.
func TestExpand_Prefix(t *testing.T) {
	res := expand(t, docHeader+`
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1]
    parent: root
    prefix: batch1
    pattern:
      name: ${prefix}__${item}
      properties:
        id: ${item}
`)

	if _, ok := findEntity(res, "batch1__s1"); !ok {
		t.Errorf("entities = %v, want batch1__s1", entityNames(res.Entities))
	}
}

// TestExpand_DuplicateName verifies that a rendered name collision is a
// resolution error, not an overwrite.
func TestExpand_DuplicateName(t *testing.T) {
	err := expandErr(t, docHeader+`
templates:
  first:
    class: sample
    operation: for_each_item
    input: [same]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
  second:
    class: sample
    operation: for_each_item
    input: [same]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
`)

	if !errors.Is(err, registry.ErrDuplicateName) {
		t.Errorf("error = %v, want ErrDuplicateName", err)
	}
}

// TestExpand_ForwardParent verifies that parents must already exist.
func TestExpand_ForwardParent(t *testing.T) {
	err := expandErr(t, docHeader+`
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1]
    parent: defined_later
    pattern:
      name: ${item}
      properties:
        id: ${item}
`)

	if !errors.Is(err, registry.ErrUnknownParent) {
		t.Errorf("error = %v, want ErrUnknownParent", err)
	}
}

// TestExpand_UnclosedExpression verifies the unclosed segment error
// surfaces with render context regardless of which field carries it.
func TestExpand_UnclosedExpression(t *testing.T) {
	err := expandErr(t, docHeader+`
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1]
    parent: root
    pattern:
      name: sample__${item
      properties:
        id: ${item}
`)

	if !errors.Is(err, lang.ErrUnclosedExpr) {
		t.Errorf("error = %v, want ErrUnclosedExpr", err)
	}

	if !errors.Is(err, ErrRender) {
		t.Errorf("error = %v, want wrapped in ErrRender", err)
	}
}

// TestGenerate_Deterministic verifies byte-identical repeated output.
func TestGenerate_Deterministic(t *testing.T) {
	src := docHeader + `
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1, s2]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
`

	first, err := Generate(context.Background(), parseDoc(t, src), quiet())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	second, err := Generate(context.Background(), parseDoc(t, src), quiet())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if first != second {
		t.Error("repeated runs produced different output")
	}

	if !strings.HasPrefix(first, "!config egcut\n") {
		t.Errorf("output does not start with config line: %q", first)
	}
}

// TestExpand_Ignore verifies template skipping, post-pass removal, and
// parent rewriting without reordering survivors.
func TestExpand_Ignore(t *testing.T) {
	src := docHeader + `
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [s1, s2]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
  make_analyses:
    class: analysis
    operation: for_each_class
    input:
      class_name: sample
    parent: ${item}
    pattern:
      name: qc__${item}
      properties:
        target: ${item}
`

	res := expand(t, src, WithIgnoreSpecs("sample"))

	got := entityNames(res.Entities)
	want := []string{"root", "qc__s1", "qc__s2"}

	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("entities = %v, want %v", got, want)
	}

	// Analyses pointed at removed samples; the references become null.
	for _, e := range res.Entities[1:] {
		if len(e.Parents) != 0 {
			t.Errorf("entity %q parents = %v, want none", e.Name, e.Parents)
		}
	}
}

// TestExpand_IgnoreRegex verifies narrowed removal by name pattern.
func TestExpand_IgnoreRegex(t *testing.T) {
	src := docHeader + `
templates:
  make_samples:
    class: sample
    operation: for_each_item
    input: [keep_1, drop_1, keep_2]
    parent: root
    pattern:
      name: ${item}
      properties:
        id: ${item}
`

	res := expand(t, src, WithIgnoreSpecs("sample:^drop_"))

	got := entityNames(res.Entities)
	want := []string{"root", "keep_1", "keep_2"}

	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("entities = %v, want %v", got, want)
	}
}
