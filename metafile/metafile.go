// Package metafile writes the meta text format: a header of !config,
// !key, and !subset directives followed by one block per entity. Blocks
// are separated by blank lines and every line is "name field value".
package metafile

import (
	"fmt"
	"strings"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/registry"
)

// Header is everything that precedes the entity blocks.
type Header struct {
	Config  string
	Keys    []document.Key
	Subsets []document.Subset
}

// Render serializes the header and entities, in order, to meta text.
func Render(h Header, entities []*registry.Entity) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "!config %s\n", h.Config)

	for _, key := range h.Keys {
		fmt.Fprintf(&sb, "!key %s %s\n", key.Name, key.Value)
	}

	for _, sub := range h.Subsets {
		if sub.Description != "" {
			fmt.Fprintf(&sb, "!subset %s %s\n", sub.Name, sub.Description)
		} else {
			fmt.Fprintf(&sb, "!subset %s\n", sub.Name)
		}
	}

	for _, e := range entities {
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "%s class %s\n", e.Name, e.Class)

		for _, parent := range e.Parents {
			fmt.Fprintf(&sb, "%s parent %s\n", e.Name, parent)
		}

		for _, p := range e.Properties {
			fmt.Fprintf(&sb, "%s %s %s\n", e.Name, p.Name, p.Value)
		}

		for _, tag := range e.Subsets {
			fmt.Fprintf(&sb, "%s subset %s\n", e.Name, tag)
		}
	}

	return sb.String()
}
