package engine

import (
	"log/slog"
	"math"

	"github.com/goccy/go-yaml"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/lang"
	"github.com/yakaboskic/meta-sanity/registry"
)

// itemContext holds the per-entity variable bindings produced by one
// operation step: "item" for scalar operations, "item:<spec>" for
// combinations.
type itemContext map[string]any

// itemAttr renders the context for error reporting.
func (c itemContext) itemAttr() slog.Attr {
	if v, ok := c["item"]; ok {
		return slog.String("item", lang.Normalize(v))
	}

	return slog.Any("item", c)
}

func msGet(m yaml.MapSlice, key string) (any, bool) {
	for _, item := range m {
		if k, ok := item.Key.(string); ok && k == key {
			return item.Value, true
		}
	}

	return nil, false
}

// itemContexts dispatches on the template's operation.
func itemContexts(t document.Template, reg *registry.Registry) ([]itemContext, error) {
	if t.Operation == "" {
		return nil, ErrMissingField.With(
			slog.String("template", t.Name),
			slog.String("field", "operation"),
		)
	}

	if !t.HasInput {
		return nil, ErrMissingField.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("field", "input"),
		)
	}

	switch t.Operation {
	case document.OpForEachItem:
		return forEachItemContexts(t)
	case document.OpForEachClass:
		return forEachClassContexts(t, reg)
	case document.OpRange:
		return rangeContexts(t)
	case document.OpCombination:
		return combinationContexts(t, reg)
	default:
		return nil, ErrUnsupportedOp.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
		)
	}
}

func forEachItemContexts(t document.Template) ([]itemContext, error) {
	items, ok := t.Input.([]any)
	if !ok {
		return nil, ErrFieldShape.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("field", "input"),
			slog.String("detail", "'input' must be a list"),
		)
	}

	if len(items) == 0 {
		return nil, ErrEmptyInput.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
		)
	}

	contexts := make([]itemContext, len(items))
	for i, item := range items {
		contexts[i] = itemContext{"item": item}
	}

	return contexts, nil
}

func forEachClassContexts(t document.Template, reg *registry.Registry) ([]itemContext, error) {
	input, ok := t.Input.(yaml.MapSlice)
	if !ok {
		return nil, ErrFieldShape.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("detail", "operation requires 'input' to be a dictionary"),
		)
	}

	rawClass, ok := msGet(input, "class_name")
	if !ok {
		return nil, ErrMissingField.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("field", "input.class_name"),
			slog.String("detail", "missing 'class_name' in 'input'"),
		)
	}

	class, _ := rawClass.(string)

	var tags []string

	if rawTags, ok := msGet(input, "if_subset"); ok {
		list, ok := rawTags.([]any)
		if !ok {
			return nil, ErrFieldShape.With(
				slog.String("template", t.Name),
				slog.String("field", "input.if_subset"),
				slog.String("detail", "'if_subset' must be a list"),
			)
		}

		for _, tag := range list {
			s, ok := tag.(string)
			if !ok {
				return nil, ErrFieldShape.With(
					slog.String("template", t.Name),
					slog.String("field", "input.if_subset"),
					slog.String("detail", "subset tags must be strings"),
				)
			}

			tags = append(tags, s)
		}
	}

	if !reg.HasClass(class) {
		attrs := []slog.Attr{
			slog.String("template", t.Name),
			slog.String("class_name", class),
		}

		if match := lang.ClosestMatch(class, reg.Classes()); match != "" {
			attrs = append(attrs, slog.String("did_you_mean", match))
		}

		return nil, ErrNoEntities.With(attrs...)
	}

	entities := reg.ByClass(class, tags)

	contexts := make([]itemContext, len(entities))
	for i, e := range entities {
		contexts[i] = itemContext{"item": e.Name}
	}

	return contexts, nil
}

func rangeContexts(t document.Template) ([]itemContext, error) {
	input, ok := t.Input.(yaml.MapSlice)
	if !ok {
		return nil, ErrFieldShape.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("detail", "operation requires 'input' to be a dictionary"),
		)
	}

	values, err := rangeSequence(input, slog.String("template", t.Name))
	if err != nil {
		return nil, err
	}

	contexts := make([]itemContext, len(values))
	for i, v := range values {
		contexts[i] = itemContext{"item": v}
	}

	return contexts, nil
}

// rangeSequence resolves a {start, end, inc} mapping into the inclusive
// arithmetic sequence it describes. An all-integer input yields integer
// terms; otherwise terms are computed by multiplication rather than
// accumulation to keep floating error bounded.
func rangeSequence(m yaml.MapSlice, attrs ...slog.Attr) ([]any, error) {
	bound := func(field string) (lang.Number, error) {
		raw, ok := msGet(m, field)
		if !ok {
			return lang.Number{}, ErrMissingField.With(append(attrs,
				slog.String("field", field),
				slog.String("detail", "missing '"+field+"' in range input"),
			)...)
		}

		n, err := lang.ToNumber(raw)
		if err != nil {
			return lang.Number{}, ErrRangeNumeric.Wrap(err).With(append(attrs,
				slog.String("field", field),
			)...)
		}

		return n, nil
	}

	start, err := bound("start")
	if err != nil {
		return nil, err
	}

	end, err := bound("end")
	if err != nil {
		return nil, err
	}

	inc, err := bound("inc")
	if err != nil {
		return nil, err
	}

	if inc.Float == 0 {
		return nil, ErrZeroStep.With(attrs...)
	}

	switch {
	case inc.Float > 0 && start.Float > end.Float:
		return nil, ErrRangeBounds.With(append(attrs,
			slog.String("detail", "positive 'inc' but 'start' > 'end'"),
			slog.String("start", lang.Normalize(start.Value())),
			slog.String("end", lang.Normalize(end.Value())),
		)...)

	case inc.Float < 0 && start.Float < end.Float:
		return nil, ErrRangeBounds.With(append(attrs,
			slog.String("detail", "negative 'inc' but 'start' < 'end'"),
			slog.String("start", lang.Normalize(start.Value())),
			slog.String("end", lang.Normalize(end.Value())),
		)...)
	}

	if start.IsInt && end.IsInt && inc.IsInt {
		var values []any

		if inc.Integer > 0 {
			for v := start.Integer; v <= end.Integer; v += inc.Integer {
				values = append(values, v)
			}
		} else {
			for v := start.Integer; v >= end.Integer; v += inc.Integer {
				values = append(values, v)
			}
		}

		return values, nil
	}

	const epsilon = 1e-9

	count := int(math.Floor((end.Float-start.Float)/inc.Float+epsilon)) + 1

	values := make([]any, 0, count)
	for i := 0; i < count; i++ {
		values = append(values, start.Float+float64(i)*inc.Float)
	}

	return values, nil
}

func combinationContexts(t document.Template, reg *registry.Registry) ([]itemContext, error) {
	specs, ok := t.Input.([]any)
	if !ok {
		return nil, ErrFieldShape.With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("detail", "'input' must be a list of specs"),
		)
	}

	names := make([]string, 0, len(specs))
	sets := make([][]any, 0, len(specs))

	for i, raw := range specs {
		spec, ok := raw.(yaml.MapSlice)
		if !ok {
			return nil, ErrFieldShape.With(
				slog.String("template", t.Name),
				slog.Int("spec", i),
				slog.String("detail", "each input spec must be a mapping"),
			)
		}

		rawName, ok := msGet(spec, "name")
		if !ok {
			return nil, ErrMissingField.With(
				slog.String("template", t.Name),
				slog.Int("spec", i),
				slog.String("field", "name"),
				slog.String("detail", "missing 'name' field in input spec"),
			)
		}

		name, _ := rawName.(string)

		values, err := specValues(t, name, spec, reg)
		if err != nil {
			return nil, err
		}

		names = append(names, name)
		sets = append(sets, values)
	}

	return product(names, sets), nil
}

// specValues resolves one combination input spec to its ordered value
// list.
func specValues(t document.Template, name string, spec yaml.MapSlice, reg *registry.Registry) ([]any, error) {
	if _, ok := msGet(spec, "class_name"); ok {
		sub := t
		sub.Input = spec

		contexts, err := forEachClassContexts(sub, reg)
		if err != nil {
			return nil, err
		}

		values := make([]any, len(contexts))
		for i, c := range contexts {
			values[i] = c["item"]
		}

		return values, nil
	}

	if rawValues, ok := msGet(spec, "values"); ok {
		values, ok := rawValues.([]any)
		if !ok {
			return nil, ErrFieldShape.With(
				slog.String("template", t.Name),
				slog.String("spec", name),
				slog.String("detail", "'values' must be a list"),
			)
		}

		return values, nil
	}

	if rawOp, ok := msGet(spec, "operation"); ok {
		op, _ := rawOp.(string)
		if op != document.OpRange {
			return nil, ErrUnsupportedOp.With(
				slog.String("template", t.Name),
				slog.String("spec", name),
				slog.String("operation", op),
			)
		}

		return rangeSequence(spec,
			slog.String("template", t.Name),
			slog.String("spec", name),
		)
	}

	return nil, ErrBadSpec.With(
		slog.String("template", t.Name),
		slog.String("spec", name),
	)
}

// product walks the Cartesian product of the value sets in odometer
// order: the first spec varies slowest. An empty set empties the whole
// product.
func product(names []string, sets [][]any) []itemContext {
	total := 1
	for _, set := range sets {
		total *= len(set)
	}

	if total == 0 || len(sets) == 0 {
		return nil
	}

	contexts := make([]itemContext, 0, total)
	indices := make([]int, len(sets))

	for {
		c := make(itemContext, len(names))
		for i, name := range names {
			c["item:"+name] = sets[i][indices[i]]
		}

		contexts = append(contexts, c)

		i := len(indices) - 1
		for i >= 0 {
			indices[i]++
			if indices[i] < len(sets[i]) {
				break
			}

			indices[i] = 0
			i--
		}

		if i < 0 {
			return contexts
		}
	}
}
