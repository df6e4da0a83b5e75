// Package module holds the contract every brickdump service module satisfies
package module

import (
	phttp "brickdump/internal/platform/net/http"
)

// Module is built by a service's module package from options and deps.
// Command-only modules (fetch, load) mount no routes
type Module interface {
	Name() string
	// Ports returns the module's port bundle, usually a Ports struct of interfaces
	Ports() any
	MountRoutes(r phttp.Router)
}
