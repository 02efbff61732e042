package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoCopilotService indicates that no copilot service was provided.
	ErrNoCopilotService = errors.New("copilot service is required")

	// ErrNoSessionService indicates that no session service was provided.
	ErrNoSessionService = errors.New("session service is required")

	// ErrBusy indicates a request is already in flight.
	ErrBusy = errors.New("still waiting for the previous answer")
)
