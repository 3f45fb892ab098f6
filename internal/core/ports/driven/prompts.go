package driven

// PromptStore provides access to prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptGroundedAnswer frames retrieved context ahead of the question.
	// The template expects two %s placeholders: context, then question.
	PromptGroundedAnswer = "grounded_answer"

	// PromptBareAnswer is used when no context was retrieved.
	// The template expects one %s placeholder for the question.
	PromptBareAnswer = "bare_answer"
)
