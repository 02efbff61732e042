// Package tui provides an interactive terminal user interface for DocPilot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Copilot uploads documents and answers questions about them.
	Copilot driving.CopilotService

	// Sessions manages the chat conversation.
	Sessions driving.SessionService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(copilot driving.CopilotService, sessions driving.SessionService) *Ports {
	return &Ports{
		Copilot:  copilot,
		Sessions: sessions,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Copilot == nil {
		return ErrMissingCopilotService
	}
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	return nil
}
