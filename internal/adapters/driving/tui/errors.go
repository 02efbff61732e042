package tui

import "errors"

// ErrMissingCopilotService is returned when the copilot service is not provided.
var ErrMissingCopilotService = errors.New("tui: copilot service is required")

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
