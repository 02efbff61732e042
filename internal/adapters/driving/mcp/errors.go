// Package mcp provides an MCP (Model Context Protocol) server adapter for DocPilot.
// It lets AI assistants upload documents to the library and ask grounded
// questions about them.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// ErrMissingCopilotService is returned when the copilot service is not provided.
var ErrMissingCopilotService = errors.New("mcp: copilot service is required")

// toolError prefixes err with its kind so clients can tell a configuration
// problem from a provider outage without parsing free text.
func toolError(op string, err error) error {
	return fmt.Errorf("%s: %s: %w", op, domain.ErrorKind(err), err)
}
