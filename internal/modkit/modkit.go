package modkit

import (
	"brickdump/internal/modkit/module"
)

// Module is the common surface for modules that can mount routes and expose ports
// keep this tiny so modules stay decoupled
type Module = module.Module
