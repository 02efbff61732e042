// Package domain defines the core business entities for DocPilot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded document with its extracted text
//   - Chunk: A retrievable window of a document
//   - Turn: One message of a conversation
//   - Answer: The structured result of a question
//
// It also defines the error taxonomy shared by every layer.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
