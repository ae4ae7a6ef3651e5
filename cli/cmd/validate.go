package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/engine"
	"github.com/yakaboskic/meta-sanity/log"
)

// Validate expands a document without writing anything, reporting what
// a generate run would produce.
type Validate struct {
	YAML        string   `help:"Input YAML document"                       name:"yaml"         short:"y" required:"" type:"existingfile"`
	IgnoreClass []string `help:"Exclude entities by class or class:regex"  name:"ignore-class"                       placeholder:"CLASS[:REGEX]"`
}

// Run executes the validate command.
func (v *Validate) Run(ctx context.Context) error {
	doc, err := document.Load(v.YAML)
	if err != nil {
		return err
	}

	res, err := engine.Expand(ctx, doc,
		engine.WithIgnoreSpecs(v.IgnoreClass...),
		engine.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	classes := make(map[string]int)
	for _, e := range res.Entities {
		classes[e.Class]++
	}

	log.InfoContext(ctx, "document is valid",
		slog.String("input", v.YAML),
		slog.String("config", res.Config),
		slog.Int("keys", len(res.Keys)),
		slog.Int("entities", len(res.Entities)),
		slog.Int("classes", len(classes)),
	)

	classNames := make([]string, 0, len(classes))
	for class := range classes {
		classNames = append(classNames, class)
	}
	slices.Sort(classNames)
	for _, class := range classNames {
		log.DebugContext(ctx, "class expanded",
			slog.String("class", class),
			slog.Int("entities", classes[class]),
		)
	}

	if ktx := kongContextFrom(ctx); ktx != nil {
		fmt.Fprintf(ktx.Stdout, "%s: %d entities in %d classes\n",
			v.YAML, len(res.Entities), len(classes))
	}

	return nil
}
