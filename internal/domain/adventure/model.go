package adventure

import (
	"time"

	"github.com/yanqian/adventure-ai/pkg/retry"
)

// MinPromptLength is the minimum trimmed prompt length, in characters.
const MinPromptLength = 5

// Request captures the payload accepted by the generation endpoint.
type Request struct {
	Prompt string `json:"prompt"`
}

// Adventure is the structured micro-adventure produced from an LLM response.
type Adventure struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	Tags            []string `json:"tags"`
	Difficulty      string   `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
	DistanceKM      float64  `json:"distance_km"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
}

// Config wires runtime dependencies for the generation pipeline.
type Config struct {
	Persona        string
	AttemptTimeout time.Duration
	Retry          retry.Backoff
}
