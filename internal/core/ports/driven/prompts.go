package driven

// PromptStore serves the prompt templates used to ground answers. Templates
// can be overridden by files in the config directory.
type PromptStore interface {
	// Load returns the named template, falling back to the built-in one.
	Load(name string) (string, error)

	// Reload drops cached templates so edited files are picked up.
	Reload()
}

// Template names.
const (
	// PromptGrounding wraps {context} and {question} into one prompt.
	PromptGrounding = "grounding"

	// PromptGroundingSystem is the system message for chat models. It
	// takes {context}; the question is sent as the user turn.
	PromptGroundingSystem = "grounding_system"
)
