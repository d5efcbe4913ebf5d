package driven

// PromptStore hands out prompt texts by name. The file-backed
// implementation lets users edit the texts on disk; others could
// embed them or fetch them remotely.
type PromptStore interface {
	// Load returns the prompt text for name. Whether a missing prompt
	// is an error or falls back to a default is the implementation's
	// choice.
	Load(name string) (string, error)

	// Reload drops any cached texts so edits are picked up.
	Reload()
}

// Prompt names shared between the store and its consumers.
const (
	// PromptAnswerSystem is the system instruction for answer synthesis.
	// It tells the model to answer strictly from the supplied notes.
	// No format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptNoResults is the canned answer returned when retrieval finds
	// nothing. No format placeholders.
	PromptNoResults = "no_results"
)

// PromptStoreAware marks services whose prompts can be swapped after
// construction. Without an injected store they run on their built-in
// texts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
