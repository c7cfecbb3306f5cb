package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the optional language-model collaborator used for intent
// classification and prose summaries. Callers must keep a deterministic
// fallback for every use; a Client may be absent or failing at any time.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
