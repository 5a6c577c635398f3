package mcp

import (
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Retrieval answers queries against the library.
	Retrieval driving.RetrievalService

	// Catalog lists the library's works.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Catalog is optional; list_works is skipped without it.
	return nil
}
