package lang

import (
	"github.com/yakaboskic/meta-sanity/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrUnclosedExpr  = pkg.NewError("unclosed expression")
	ErrSyntax        = pkg.NewError("invalid expression syntax")
	ErrDisallowed    = pkg.NewError("disallowed expression construct")
	ErrEvaluate      = pkg.NewError("failed to evaluate expression")
	ErrUndefinedKey  = pkg.NewError("undefined key")
	ErrUndefinedName = pkg.NewError("undefined identifier")
	ErrNotNumeric    = pkg.NewError("value is not numeric")
)
