package engine

import (
	"log/slog"
	"strings"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/lang"
)

// resolveKeys substitutes ${name} references between keys in
// declaration order, so a key may only reference keys defined before
// it. The returned slice preserves order for serialization; the map
// feeds the expression environment.
func resolveKeys(keys []document.Key) ([]document.Key, map[string]string, error) {
	resolved := make([]document.Key, 0, len(keys))
	values := make(map[string]string, len(keys))

	for _, key := range keys {
		val, err := substituteKeys(key.Value, values)
		if err != nil {
			return nil, nil, err
		}

		resolved = append(resolved, document.Key{Name: key.Name, Value: val})
		values[key.Name] = val
	}

	return resolved, values, nil
}

// substituteKeys replaces every plain ${name} segment of val with the
// named key's value. Segments that are not bare identifiers pass
// through untouched; they belong to later expansion stages.
func substituteKeys(val string, keys map[string]string) (string, error) {
	if !strings.Contains(val, "${") {
		return val, nil
	}

	var sb strings.Builder

	rest := val

	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			sb.WriteString(rest)

			return sb.String(), nil
		}

		sb.WriteString(rest[:start])

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			sb.WriteString(rest[start:])

			return sb.String(), nil
		}

		segment := rest[start : start+end+1]
		name := segment[2 : len(segment)-1]
		rest = rest[start+end+1:]

		if !isKeyName(name) {
			sb.WriteString(segment)

			continue
		}

		resolved, ok := keys[name]
		if !ok {
			attrs := []slog.Attr{
				slog.String("key", name),
				slog.String("value", val),
			}

			if match := lang.ClosestMatch(name, keyNames(keys)); match != "" {
				attrs = append(attrs, slog.String("did_you_mean", match))
			}

			return "", lang.ErrUndefinedKey.With(attrs...)
		}

		sb.WriteString(resolved)
	}
}

func isKeyName(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

func keyNames(keys map[string]string) []string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}

	return names
}
