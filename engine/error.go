package engine

import "github.com/yakaboskic/meta-sanity/pkg"

// Sentinel errors raised during expansion. Wrapped instances carry the
// template, operation, and field they refer to as attributes.
var (
	ErrMissingField  = pkg.NewError("missing required field")
	ErrFieldShape    = pkg.NewError("invalid field shape")
	ErrUnsupportedOp = pkg.NewError("unsupported operation")
	ErrParentBoth    = pkg.NewError("template specifies both 'parent' and 'pattern.parent'; use only one")
	ErrEmptyInput    = pkg.NewError("empty 'input' list")
	ErrNoEntities    = pkg.NewError("no entities of the requested class type exist")
	ErrBadSpec       = pkg.NewError("input spec must contain 'class_name', 'values', or 'operation'")
	ErrRangeNumeric  = pkg.NewError("range has invalid numeric values")
	ErrZeroStep      = pkg.NewError("range 'inc' of 0 would create an infinite loop")
	ErrRangeBounds   = pkg.NewError("range direction does not agree with bounds")
	ErrRender        = pkg.NewError("failed to render pattern")
	ErrInsert        = pkg.NewError("failed to insert entity")
	ErrIgnoreSpec    = pkg.NewError("invalid ignore spec")
)
