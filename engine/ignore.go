package engine

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/yakaboskic/meta-sanity/registry"
)

// IgnoreSpec excludes entities of one class type, optionally narrowed
// to names matching a regular expression. A spec without a pattern also
// skips whole templates of its class before expansion.
type IgnoreSpec struct {
	Class   string
	Pattern *regexp.Regexp
}

// ParseIgnoreSpecs parses raw class or class:regex exclusion specs.
func ParseIgnoreSpecs(raw []string) ([]IgnoreSpec, error) {
	specs := make([]IgnoreSpec, 0, len(raw))

	for _, s := range raw {
		class, expr, hasExpr := strings.Cut(s, ":")
		if class == "" {
			return nil, ErrIgnoreSpec.With(
				slog.String("spec", s),
				slog.String("detail", "class name is empty"),
			)
		}

		spec := IgnoreSpec{Class: class}

		if hasExpr {
			pattern, err := regexp.Compile(expr)
			if err != nil {
				return nil, ErrIgnoreSpec.Wrap(err).With(slog.String("spec", s))
			}

			spec.Pattern = pattern
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// skipsTemplate reports whether a template producing the given class
// type can be skipped entirely. Only bare specs qualify; a regex spec
// must see the materialized names.
func skipsTemplate(specs []IgnoreSpec, class string) bool {
	for _, spec := range specs {
		if spec.Pattern == nil && spec.Class == class {
			return true
		}
	}

	return false
}

// ignored reports whether an entity matches any exclusion spec.
func ignored(specs []IgnoreSpec, e *registry.Entity) bool {
	for _, spec := range specs {
		if spec.Class != e.Class {
			continue
		}

		if spec.Pattern == nil || spec.Pattern.MatchString(e.Name) {
			return true
		}
	}

	return false
}

// applyIgnore removes matching entities and rewrites surviving parent
// references that pointed at removed entities. The relative order of
// survivors is unchanged. Entities are copied before modification so
// the registry stays intact.
func applyIgnore(entities []*registry.Entity, specs []IgnoreSpec) []*registry.Entity {
	if len(specs) == 0 {
		return entities
	}

	removed := make(map[string]bool)
	survivors := make([]*registry.Entity, 0, len(entities))

	for _, e := range entities {
		if ignored(specs, e) {
			removed[e.Name] = true

			continue
		}

		survivors = append(survivors, e)
	}

	if len(removed) == 0 {
		return survivors
	}

	for i, e := range survivors {
		kept := e.Parents[:0:0]

		for _, parent := range e.Parents {
			if !removed[parent] {
				kept = append(kept, parent)
			}
		}

		if len(kept) == len(e.Parents) {
			continue
		}

		clone := *e
		clone.Parents = kept
		survivors[i] = &clone
	}

	return survivors
}
