package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/yakaboskic/meta-sanity/document"
	"github.com/yakaboskic/meta-sanity/engine"
	"github.com/yakaboskic/meta-sanity/log"
)

// Generate expands a document and writes the resulting meta file.
type Generate struct {
	YAML        string   `help:"Input YAML document"                       name:"yaml"         short:"y" required:"" type:"existingfile"`
	Output      string   `help:"Output meta file path"                     name:"output"       short:"o" required:"" type:"path"`
	IgnoreClass []string `help:"Exclude entities by class or class:regex"  name:"ignore-class"                       placeholder:"CLASS[:REGEX]"`
}

// Run executes the generate command. The output file is only written
// after the whole expansion succeeds, so a failed run leaves no partial
// meta file behind.
func (g *Generate) Run(ctx context.Context) error {
	doc, err := document.Load(g.YAML)
	if err != nil {
		return err
	}

	text, err := engine.Generate(ctx, doc,
		engine.WithIgnoreSpecs(g.IgnoreClass...),
		engine.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	if err := os.WriteFile(g.Output, []byte(text), 0o644); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("path", g.Output))
	}

	log.InfoContext(ctx, "meta file generated",
		slog.String("input", g.YAML),
		slog.String("output", g.Output),
	)

	return nil
}
