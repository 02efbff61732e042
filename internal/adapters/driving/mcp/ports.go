package mcp

import (
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Copilot answers questions over the document library.
	Copilot driving.CopilotService

	// Sessions manages conversations. Without it every ask runs in a
	// fresh session.
	Sessions driving.SessionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Copilot == nil {
		return ErrMissingCopilotService
	}
	return nil
}
