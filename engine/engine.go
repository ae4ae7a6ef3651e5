package engine

import (
	"context"
	"log/slog"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/lang"
	"github.com/yakaboskic/meta-sanity/log"
	"github.com/yakaboskic/meta-sanity/metafile"
	"github.com/yakaboskic/meta-sanity/registry"
)

// config collects the optional knobs of one expansion run.
type config struct {
	logger log.Logger
	ignore []string
}

// Option applies a configuration option to config.
type Option func(config) config

func apply(opts ...Option) config {
	cfg := config{logger: log.Default()}

	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithIgnoreSpecs excludes entities matching the given class or
// class:regex specs from the output.
func WithIgnoreSpecs(specs ...string) Option {
	return func(c config) config {
		c.ignore = append(c.ignore, specs...)

		return c
	}
}

// WithLogger routes run diagnostics to the given logger.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// Result is the fully expanded, filtered output of one run.
type Result struct {
	Config   string
	Keys     []document.Key
	Subsets  []document.Subset
	Entities []*registry.Entity
}

// Expand runs the whole pipeline over a parsed document: key
// resolution, basic classes, templates in declaration order, then the
// ignore filter.
func Expand(ctx context.Context, doc *document.Document, opts ...Option) (*Result, error) {
	cfg := apply(opts...)

	specs, err := ParseIgnoreSpecs(cfg.ignore)
	if err != nil {
		return nil, err
	}

	keys, keyVals, err := resolveKeys(doc.Keys)
	if err != nil {
		return nil, err
	}

	x := &expander{
		reg:  registry.New(),
		keys: keyVals,
		log:  cfg.logger,
	}

	if err := x.loadClasses(doc.Classes); err != nil {
		return nil, err
	}

	// A bare-ignored template may only be skipped outright when nothing
	// after it could observe its entities; otherwise it still expands
	// and the filter removes its output afterward.
	skippable := make([]bool, len(doc.Templates)+1)
	skippable[len(doc.Templates)] = true

	for i := len(doc.Templates) - 1; i >= 0; i-- {
		skippable[i] = skippable[i+1] && skipsTemplate(specs, doc.Templates[i].Class)
	}

	for i, tmpl := range doc.Templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if skippable[i] {
			x.log.Debug("skipping ignored template",
				slog.String("template", tmpl.Name),
				slog.String("class", tmpl.Class),
			)

			continue
		}

		if err := x.runTemplate(tmpl); err != nil {
			return nil, err
		}
	}

	return &Result{
		Config:   doc.Config,
		Keys:     keys,
		Subsets:  doc.Subsets,
		Entities: applyIgnore(x.reg.Entities(), specs),
	}, nil
}

// Generate expands the document and serializes the result to meta text.
func Generate(ctx context.Context, doc *document.Document, opts ...Option) (string, error) {
	res, err := Expand(ctx, doc, opts...)
	if err != nil {
		return "", err
	}

	header := metafile.Header{
		Config:  res.Config,
		Keys:    res.Keys,
		Subsets: res.Subsets,
	}

	return metafile.Render(header, res.Entities), nil
}

// loadClasses inserts the document's basic classes verbatim, resolving
// key references in property values.
func (x *expander) loadClasses(classes []document.Class) error {
	env := make(lang.Env, len(x.keys))
	for name, val := range x.keys {
		env[name] = val
	}

	roots := 0

	for _, class := range classes {
		if class.Root {
			roots++

			if roots > 1 {
				x.log.Warn("multiple root classes declared",
					slog.String("class", class.Name),
				)
			}
		}

		props := make([]registry.Property, 0, len(class.Properties))

		for _, p := range class.Properties {
			val, err := renderValue(p.Value, env)
			if err != nil {
				return ErrRender.Wrap(err).With(
					slog.String("class", class.Name),
					slog.String("field", "properties."+p.Name),
				)
			}

			props = append(props, registry.Property{Name: p.Name, Value: val})
		}

		entity := &registry.Entity{
			Name:       class.Name,
			Class:      class.Type,
			Parents:    class.Parents,
			Properties: props,
			Subsets:    class.Subsets,
		}

		if err := x.reg.Insert(entity); err != nil {
			return ErrInsert.Wrap(err).With(slog.String("class", class.Name))
		}
	}

	return nil
}
