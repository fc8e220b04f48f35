package models

// SuggestRequest is the body of POST /api/suggestions. ContextHTML, when
// present, is a raw HTML snapshot that the server analyzes itself;
// otherwise Context carries a pre-extracted snapshot from the extension.
type SuggestRequest struct {
	Input       string      `json:"input"`
	Context     PageContext `json:"context"`
	ContextHTML string      `json:"context_html,omitempty"`
	UserID      string      `json:"userId,omitempty"`
}

// SuggestResponse is the wire shape of a successful suggestion cycle.
type SuggestResponse struct {
	Query       SmartQuery   `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	Timestamp   string       `json:"timestamp"`
}

// OmniboxRequest is the body of POST /api/omnibox.
type OmniboxRequest struct {
	Input  string `json:"input"`
	UserID string `json:"userId,omitempty"`
}

// OmniboxResponse tells the client what to do with the input.
type OmniboxResponse struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	URL    string `json:"url,omitempty"`
}

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Attachments []string      `json:"attachments,omitempty"`
}

// AskResponse carries the model's answer.
type AskResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
