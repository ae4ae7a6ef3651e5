package engine

import (
	"log/slog"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/lang"
	"github.com/yakaboskic/meta-sanity/log"
	"github.com/yakaboskic/meta-sanity/registry"
)

// expander carries the per-run state shared by every stage.
type expander struct {
	reg  *registry.Registry
	keys map[string]string
	log  log.Logger
}

// envFor builds the expression environment for one expansion step:
// resolved keys, the template prefix, and the item bindings.
func (x *expander) envFor(t document.Template, c itemContext) lang.Env {
	env := make(lang.Env, len(x.keys)+len(c)+1)

	for name, val := range x.keys {
		env[name] = val
	}

	env["prefix"] = t.Prefix

	for name, val := range c {
		env[name] = val
	}

	return env
}

// runTemplate validates one template and expands it into the registry.
func (x *expander) runTemplate(t document.Template) error {
	if t.Class == "" {
		return ErrMissingField.With(
			slog.String("template", t.Name),
			slog.String("field", "class"),
		)
	}

	if !t.Pattern.HasName {
		return ErrMissingField.With(
			slog.String("template", t.Name),
			slog.String("field", "pattern.name"),
			slog.String("detail", "missing 'name' in 'pattern'"),
		)
	}

	if t.Parent != nil && t.Pattern.Parent != nil {
		return ErrParentBoth.With(slog.String("template", t.Name))
	}

	parent := t.Parent
	if parent == nil {
		parent = t.Pattern.Parent
	}

	contexts, err := itemContexts(t, x.reg)
	if err != nil {
		return err
	}

	if len(contexts) == 0 {
		x.log.Warn("template produced no entities",
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
		)

		return nil
	}

	for _, c := range contexts {
		env := x.envFor(t, c)

		entity, err := x.renderEntity(t, parent, c, env)
		if err != nil {
			return err
		}

		if err := x.reg.Insert(entity); err != nil {
			return ErrInsert.Wrap(err).With(
				slog.String("template", t.Name),
				c.itemAttr(),
			)
		}
	}

	x.log.Debug("template expanded",
		slog.String("template", t.Name),
		slog.String("operation", t.Operation),
		slog.Int("entities", len(contexts)),
	)

	return nil
}

// renderEntity renders the pattern's name, parents, and properties for
// one item context.
func (x *expander) renderEntity(
	t document.Template, parent any, c itemContext, env lang.Env,
) (*registry.Entity, error) {
	wrap := func(err error, field string) error {
		return ErrRender.Wrap(err).With(
			slog.String("template", t.Name),
			slog.String("operation", t.Operation),
			slog.String("field", field),
			c.itemAttr(),
		)
	}

	name, err := lang.Render(t.Pattern.Name, env)
	if err != nil {
		return nil, wrap(err, "pattern.name")
	}

	parents, err := renderParents(parent, env)
	if err != nil {
		return nil, wrap(err, "parent")
	}

	props := make([]registry.Property, 0, len(t.Pattern.Properties))

	for _, p := range t.Pattern.Properties {
		val, err := renderValue(p.Value, env)
		if err != nil {
			return nil, wrap(err, "pattern.properties."+p.Name)
		}

		props = append(props, registry.Property{Name: p.Name, Value: val})
	}

	return &registry.Entity{
		Name:       name,
		Class:      t.Class,
		Parents:    parents,
		Properties: props,
		Subsets:    t.Subsets,
	}, nil
}

// renderParents resolves a parent declaration, which may be absent, a
// single name, or a list. Names may themselves contain expression
// segments bound to the current item.
func renderParents(parent any, env lang.Env) ([]string, error) {
	switch p := parent.(type) {
	case nil:
		return nil, nil

	case string:
		if p == "null" {
			return nil, nil
		}

		name, err := lang.Render(p, env)
		if err != nil {
			return nil, err
		}

		return []string{name}, nil

	case []any:
		names := make([]string, 0, len(p))

		for _, entry := range p {
			s, ok := entry.(string)
			if !ok {
				return nil, ErrFieldShape.With(
					slog.String("field", "parent"),
					slog.String("detail", "parent names must be strings"),
				)
			}

			name, err := lang.Render(s, env)
			if err != nil {
				return nil, err
			}

			names = append(names, name)
		}

		return names, nil

	default:
		return nil, ErrFieldShape.With(
			slog.String("field", "parent"),
			slog.String("detail", "expected a name, list of names, or null"),
		)
	}
}

// renderValue resolves one property value: strings pass through the
// pattern renderer, other scalars normalize directly.
func renderValue(v any, env lang.Env) (string, error) {
	if s, ok := v.(string); ok {
		return lang.Render(s, env)
	}

	return lang.Normalize(v), nil
}
