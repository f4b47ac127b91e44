//go:build tools

// This file declares the tool dependencies of the module, so that go.mod
// pins their versions.
package tools

import (
	_ "github.com/vektra/mockery/v2"
)
