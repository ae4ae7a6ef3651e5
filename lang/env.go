package lang

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Env holds the bindings visible to an expression. Keys are plain
// identifiers, optionally qualified with a colon (for example
// "item:sample" inside a combination).
type Env map[string]any

// Lookup resolves a name against the environment.
func (e Env) Lookup(name string) (any, bool) {
	v, ok := e[name]

	return v, ok
}

// Names returns all bound names in lexical order.
func (e Env) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// suggestAttrs builds the attributes attached to an undefined-name
// error, including a fuzzy-matched suggestion when one exists.
func (e Env) suggestAttrs(name string) []slog.Attr {
	attrs := []slog.Attr{slog.String("name", name)}

	if match := ClosestMatch(name, e.Names()); match != "" {
		attrs = append(attrs, slog.String("did_you_mean", match))
	}

	return attrs
}

// ClosestMatch returns the candidate most similar to name, or the empty
// string when nothing ranks.
func ClosestMatch(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}

// Render substitutes every ${...} segment of pattern using env and
// returns the resulting string. Literal text outside segments is copied
// verbatim. Each segment's value passes through Normalize.
func Render(pattern string, env Env) (string, error) {
	var sb strings.Builder

	rest := pattern

	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			sb.WriteString(rest)

			return sb.String(), nil
		}

		sb.WriteString(rest[:start])
		rest = rest[start+2:]

		end, ok := matchBrace(rest)
		if !ok {
			return "", ErrUnclosedExpr.With(slog.String("pattern", pattern))
		}

		src := rest[:end]
		rest = rest[end+1:]

		val, err := renderSegment(src, env)
		if err != nil {
			return "", err
		}

		sb.WriteString(val)
	}
}

// matchBrace returns the offset of the brace closing a segment opened
// just before s, accounting for nested braces.
func matchBrace(s string) (int, bool) {
	depth := 1

	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}

// renderSegment evaluates one segment. A segment that is a plain
// identifier resolves directly from the environment; anything else goes
// through the expression evaluator.
func renderSegment(src string, env Env) (string, error) {
	name := strings.TrimSpace(src)

	if isIdentifier(name) {
		v, ok := env.Lookup(name)
		if !ok {
			return "", ErrUndefinedKey.With(env.suggestAttrs(name)...)
		}

		return Normalize(v), nil
	}

	v, err := Eval(src, env)
	if err != nil {
		return "", err
	}

	return Normalize(v), nil
}

// isIdentifier reports whether s is a bare name, optionally with a
// single colon qualifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	base, qual, hasQual := strings.Cut(s, ":")
	if hasQual && !isBareIdent(qual) {
		return false
	}

	return isBareIdent(base)
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if isIdentStart(s[i]) || (i > 0 && isDigit(s[i])) {
			continue
		}

		return false
	}

	return true
}
