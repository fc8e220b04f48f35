package deepseek

// Request models
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens"`
}

// Response models
type ChatCompletionResponse struct {
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// Answer is the reduced text-in/text-out result the rest of the
// service consumes.
type Answer struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}
