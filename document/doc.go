// Package document loads and models the declarative input document: a
// YAML file with a config identifier, reusable keys, subset
// declarations, basic classes, and expansion templates. Parsing
// preserves declaration order throughout, since later stages depend on
// it. Structural validation of template internals is deferred to the
// expansion engine, which can name the offending template and
// operation.
package document
