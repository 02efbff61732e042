// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - LLMService: Generates answers from assembled prompts
//   - VectorIndex: Vector storage and cosine similarity search
//   - DocumentStore: Document and chunk persistence
//   - SessionStore: Conversation session persistence
//   - TextExtractor: Turns uploaded files into plain text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults are used.
//   - AIConfigValidator: Connectivity checks for provider settings.
//
// Providers are selected once at startup from settings; core never
// branches on which implementation it holds.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
