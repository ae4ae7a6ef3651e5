// Package engine expands a parsed document into the flat entity list.
// Basic classes load first, then templates run in declaration order,
// each reading from and appending to the same registry. Every failure
// is fatal to the run and carries the template, operation, and field it
// occurred in.
package engine
