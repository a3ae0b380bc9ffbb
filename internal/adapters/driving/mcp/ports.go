package mcp

import (
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Query retrieves chunks and answers questions.
	Query driving.QueryService

	// Inspect reports index statistics. Optional; the stats resource
	// is only registered when set.
	Inspect driving.InspectService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
