package cmd

import "github.com/yakaboskic/meta-sanity/pkg"

var ErrWriteOutput = pkg.NewError("failed to write output file")
