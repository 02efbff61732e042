package driven

// Prompt names. The system prompt has no placeholders; summary and
// comparison each take the comma-joined document names once.
const (
	PromptSystem     = "system"
	PromptSummary    = "summary"
	PromptComparison = "comparison"
)

// PromptStore hands out prompt text by name.
type PromptStore interface {
	// Load fails only for names it does not know. Anything else that goes
	// wrong falls back to the built-in text.
	Load(name string) (string, error)

	// Reload forgets cached text so edits on disk are picked up.
	Reload()
}

// PromptStoreAware is implemented by services whose prompts can be
// swapped after construction. Without a store they use built-in text.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
