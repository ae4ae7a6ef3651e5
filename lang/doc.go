// Package lang implements the restricted expression language embedded in
// pattern strings.
//
// A pattern is ordinary text with ${...} segments. A segment that is a
// plain identifier resolves directly through the bindings (resolved keys,
// prefix, and the current item). Anything else is parsed into a small
// expression AST and evaluated against a strict allow-list: numeric and
// string literals, the arithmetic operators + - * / **, string indexing
// and slicing, a handful of conversion functions (str, int, float, len,
// abs, round), and a handful of string methods (upper, lower, title,
// capitalize, strip, lstrip, rstrip, zfill, ljust, rjust). Every other
// identifier, call, or attribute access is rejected, so a pattern can
// never execute arbitrary code.
//
// Evaluation results pass through [Normalize], the single point where
// heterogeneous scalar values become canonical strings.
package lang
