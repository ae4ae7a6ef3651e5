package document

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/yakaboskic/meta-sanity/lang"
)

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("path", path))
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Parse decodes a document from YAML source. Mapping order is preserved
// so that keys, classes, and templates expand in declaration order.
func Parse(data []byte) (*Document, error) {
	var root any

	if err := yaml.UnmarshalWithOptions(data, &root, yaml.UseOrderedMap()); err != nil {
		return nil, ErrParse.Wrap(err)
	}

	mapping, ok := root.(yaml.MapSlice)
	if !ok {
		return nil, ErrParse.With(
			slog.String("detail", "document root must be a mapping"),
		)
	}

	doc := &Document{}

	for _, item := range mapping {
		section, _ := item.Key.(string)

		var err error

		switch section {
		case "config":
			doc.Config, err = scalarString(item.Value, "config")

		case "keys":
			doc.Keys, err = parseKeys(item.Value)

		case "subsets":
			doc.Subsets, err = parseSubsets(item.Value)

		case "classes":
			doc.Classes, err = parseClasses(item.Value)

		case "templates":
			doc.Templates, err = parseTemplates(item.Value)
		}

		if err != nil {
			return nil, err
		}
	}

	if doc.Config == "" {
		return nil, ErrMissingField.With(slog.String("field", "config"))
	}

	return doc, nil
}

// scalarString renders a scalar value to its canonical string, rejecting
// mappings and sequences.
func scalarString(v any, field string) (string, error) {
	switch v.(type) {
	case yaml.MapSlice, []any:
		return "", ErrFieldType.With(
			slog.String("field", field),
			slog.String("detail", "expected a scalar value"),
		)
	}

	return lang.Normalize(v), nil
}

func mappingOf(v any, field string) (yaml.MapSlice, error) {
	m, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, ErrFieldType.With(
			slog.String("field", field),
			slog.String("detail", "expected a mapping"),
		)
	}

	return m, nil
}

func parseKeys(v any) ([]Key, error) {
	mapping, err := mappingOf(v, "keys")
	if err != nil {
		return nil, err
	}

	keys := make([]Key, 0, len(mapping))

	for _, item := range mapping {
		name, _ := item.Key.(string)

		val, err := scalarString(item.Value, "keys."+name)
		if err != nil {
			return nil, err
		}

		keys = append(keys, Key{Name: name, Value: val})
	}

	return keys, nil
}

func parseSubsets(v any) ([]Subset, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, ErrFieldType.With(
			slog.String("field", "subsets"),
			slog.String("detail", "must be a list"),
		)
	}

	subsets := make([]Subset, 0, len(list))

	for _, entry := range list {
		switch x := entry.(type) {
		case string:
			subsets = append(subsets, Subset{Name: x})

		case yaml.MapSlice:
			var sub Subset

			for _, item := range x {
				field, _ := item.Key.(string)

				switch field {
				case "name":
					sub.Name, _ = item.Value.(string)
				case "description":
					sub.Description, _ = item.Value.(string)
				}
			}

			if sub.Name == "" {
				return nil, ErrMissingField.With(
					slog.String("section", "subsets"),
					slog.String("field", "name"),
				)
			}

			subsets = append(subsets, sub)

		default:
			return nil, ErrFieldType.With(
				slog.String("field", "subsets"),
				slog.String("detail", "entries must be mappings or names"),
			)
		}
	}

	return subsets, nil
}

func parseClasses(v any) ([]Class, error) {
	mapping, err := mappingOf(v, "classes")
	if err != nil {
		return nil, err
	}

	classes := make([]Class, 0, len(mapping))

	for _, item := range mapping {
		name, _ := item.Key.(string)

		class, err := parseClass(name, item.Value)
		if err != nil {
			return nil, err
		}

		classes = append(classes, class)
	}

	return classes, nil
}

func parseClass(name string, v any) (Class, error) {
	def, err := mappingOf(v, "classes."+name)
	if err != nil {
		return Class{}, err
	}

	class := Class{Name: name, Root: true}

	sawType := false

	for _, item := range def {
		field, _ := item.Key.(string)

		switch field {
		case "class":
			class.Type, err = scalarString(item.Value, name+".class")
			if err != nil {
				return Class{}, err
			}

			sawType = true

		case "parent":
			parents, err := parentNames(item.Value, name)
			if err != nil {
				return Class{}, err
			}

			class.Parents = parents
			class.Root = len(parents) == 0

		case "properties":
			class.Properties, err = parseProperties(item.Value, name)
			if err != nil {
				return Class{}, err
			}

		case "subsets":
			class.Subsets, err = stringList(item.Value, name+".subsets")
			if err != nil {
				return Class{}, err
			}
		}
	}

	if !sawType {
		return Class{}, ErrMissingField.With(
			slog.String("class", name),
			slog.String("field", "class"),
		)
	}

	return class, nil
}

// parentNames accepts a single name, a list of names, or an explicit
// null. The literal string "null" also reads as no parent.
func parentNames(v any, owner string) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil

	case string:
		if x == "null" {
			return nil, nil
		}

		return []string{x}, nil

	case []any:
		names := make([]string, 0, len(x))

		for _, entry := range x {
			s, ok := entry.(string)
			if !ok {
				return nil, ErrFieldType.With(
					slog.String("class", owner),
					slog.String("field", "parent"),
					slog.String("detail", "parent names must be strings"),
				)
			}

			names = append(names, s)
		}

		return names, nil

	default:
		return nil, ErrFieldType.With(
			slog.String("class", owner),
			slog.String("field", "parent"),
			slog.String("detail", "expected a name, list of names, or null"),
		)
	}
}

func parseProperties(v any, owner string) ([]Property, error) {
	mapping, err := mappingOf(v, owner+".properties")
	if err != nil {
		return nil, err
	}

	props := make([]Property, 0, len(mapping))

	for _, item := range mapping {
		name, _ := item.Key.(string)
		props = append(props, Property{Name: name, Value: item.Value})
	}

	return props, nil
}

func stringList(v any, field string) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, ErrFieldType.With(
			slog.String("field", field),
			slog.String("detail", "must be a list"),
		)
	}

	out := make([]string, 0, len(list))

	for _, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, ErrFieldType.With(
				slog.String("field", field),
				slog.String("detail", "entries must be strings"),
			)
		}

		out = append(out, s)
	}

	return out, nil
}

func parseTemplates(v any) ([]Template, error) {
	mapping, err := mappingOf(v, "templates")
	if err != nil {
		return nil, err
	}

	templates := make([]Template, 0, len(mapping))

	for _, item := range mapping {
		name, _ := item.Key.(string)

		tmpl, err := parseTemplate(name, item.Value)
		if err != nil {
			return nil, err
		}

		templates = append(templates, tmpl)
	}

	return templates, nil
}

func parseTemplate(name string, v any) (Template, error) {
	def, err := mappingOf(v, "templates."+name)
	if err != nil {
		return Template{}, err
	}

	tmpl := Template{Name: name}

	for _, item := range def {
		field, _ := item.Key.(string)

		switch field {
		case "class":
			tmpl.Class, err = scalarString(item.Value, name+".class")
			if err != nil {
				return Template{}, err
			}

		case "operation":
			tmpl.Operation, err = scalarString(item.Value, name+".operation")
			if err != nil {
				return Template{}, err
			}

		case "input":
			tmpl.Input = item.Value
			tmpl.HasInput = true

		case "pattern":
			tmpl.Pattern, err = parsePattern(name, item.Value)
			if err != nil {
				return Template{}, err
			}

		case "parent":
			tmpl.Parent = item.Value

		case "prefix":
			tmpl.Prefix, err = scalarString(item.Value, name+".prefix")
			if err != nil {
				return Template{}, err
			}

		case "subsets":
			tmpl.Subsets, err = stringList(item.Value, name+".subsets")
			if err != nil {
				return Template{}, err
			}
		}
	}

	return tmpl, nil
}

func parsePattern(owner string, v any) (Pattern, error) {
	def, err := mappingOf(v, owner+".pattern")
	if err != nil {
		return Pattern{}, err
	}

	var pattern Pattern

	for _, item := range def {
		field, _ := item.Key.(string)

		switch field {
		case "name":
			pattern.Name, err = scalarString(item.Value, owner+".pattern.name")
			if err != nil {
				return Pattern{}, err
			}

			pattern.HasName = true

		case "parent":
			pattern.Parent = item.Value

		case "properties":
			pattern.Properties, err = parseProperties(item.Value, owner+".pattern")
			if err != nil {
				return Pattern{}, err
			}
		}
	}

	return pattern, nil
}
