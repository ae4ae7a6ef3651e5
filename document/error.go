package document

import "github.com/yakaboskic/meta-sanity/pkg"

// Sentinel errors for document loading. Wrapped instances carry the
// section and field they refer to as attributes.
var (
	ErrRead         = pkg.NewError("failed to read document")
	ErrParse        = pkg.NewError("failed to parse document")
	ErrMissingField = pkg.NewError("missing required field")
	ErrFieldType    = pkg.NewError("invalid field type")
)
