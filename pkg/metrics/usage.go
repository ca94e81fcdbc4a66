package metrics

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Observe adds the usage to the token counters.
func (u TokenUsage) Observe(model string) {
	if u.IsZero() {
		return
	}
	llmTokens.WithLabelValues(model, "prompt").Add(float64(u.PromptTokens))
	llmTokens.WithLabelValues(model, "completion").Add(float64(u.CompletionTokens))
}
