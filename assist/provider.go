package assist

import "context"

// Role identifies who authored a message in the drafting conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation a Describer builds up when asking
// the model to draft a control description: a system prompt framing the
// catalog, user turns carrying the code excerpt and control, and prior
// assistant drafts when refining.
type Message struct {
	Role    Role
	Content string
}

// Response is the model's draft plus the token counts the describe report
// aggregates into its usage summary.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Provider abstracts the model backend the describe command talks to, so the
// drafting loop can run against OpenAI, a compatible self-hosted endpoint, or
// a test double. Implementations must be safe for concurrent use.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (*Response, error)
}
