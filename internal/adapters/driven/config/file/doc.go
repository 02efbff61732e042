// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.docpilot.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with DOCPILOT_* overrides
//   - PromptStore: user-editable prompt templates
package file
