//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They exist solely to track
// Go-based tools as explicit module dependencies so that `go generate`
// and doc generation work on a fresh checkout.
package huddle

import (
	_ "github.com/swaggo/swag/cmd/swag"
)
