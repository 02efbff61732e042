package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errors := []error{
		ErrMissingCopilotService,
		ErrMissingSessionService,
		ErrInvalidPorts,
	}

	// Ensure all errors are unique
	seen := make(map[string]bool)
	for _, err := range errors {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrMissingCopilotService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingCopilotService.Error(), "copilot service")
}

func TestErrMissingSessionService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSessionService.Error(), "session service")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
