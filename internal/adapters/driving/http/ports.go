// Package http serves the DocPilot query surface as a JSON REST API built on
// fiber. Handlers are thin: they bind and validate requests, call the
// driving ports and map domain errors onto HTTP statuses.
package http

import (
	"errors"

	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// ErrMissingCopilotService is returned when the copilot service is not provided.
var ErrMissingCopilotService = errors.New("http: copilot service is required")

// Ports aggregates the driving ports served by the API.
type Ports struct {
	// Copilot answers questions over the document library.
	Copilot driving.CopilotService

	// Sessions manages conversations. Without it the session routes are
	// not registered.
	Sessions driving.SessionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Copilot == nil {
		return ErrMissingCopilotService
	}
	return nil
}
