package adventure

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// DefaultPersona opens every generation instruction unless overridden.
const DefaultPersona = "You are an expert in micro-adventures and outdoor activities in France. " +
	"Your role is to generate personalized adventure suggestions based on user requests."

type fieldSpec struct {
	Name        string
	Type        string
	Description string
	Minimum     *float64
	Maximum     *float64
}

func bound(v float64) *float64 { return &v }

// adventureFields describes the Adventure record in prompt order.
var adventureFields = []fieldSpec{
	{Name: "title", Type: "string", Description: "A catchy title"},
	{Name: "description", Type: "string", Description: "A detailed and inspiring description"},
	{Name: "location", Type: "string", Description: "A precise location in France"},
	{Name: "tags", Type: "array", Description: "Relevant tags (activity, environment, season, etc.)"},
	{Name: "difficulty", Type: "string", Description: "A difficulty level (easy, medium, hard)"},
	{Name: "duration_minutes", Type: "integer", Description: "An estimated duration in minutes", Minimum: bound(0)},
	{Name: "distance_km", Type: "number", Description: "A distance in kilometers", Minimum: bound(0)},
	{Name: "latitude", Type: "number", Description: "Latitude of the starting point", Minimum: bound(-90), Maximum: bound(90)},
	{Name: "longitude", Type: "number", Description: "Longitude of the starting point", Minimum: bound(-180), Maximum: bound(180)},
}

var formatInstructions = sync.OnceValue(func() string {
	properties := make(map[string]any, len(adventureFields))
	required := make([]string, 0, len(adventureFields))
	for _, field := range adventureFields {
		prop := map[string]any{
			"type":        field.Type,
			"description": field.Description,
		}
		if field.Type == "array" {
			prop["items"] = map[string]string{"type": "string"}
		}
		if field.Minimum != nil {
			prop["minimum"] = *field.Minimum
		}
		if field.Maximum != nil {
			prop["maximum"] = *field.Maximum
		}
		properties[field.Name] = prop
		required = append(required, field.Name)
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("encode adventure schema: %v", err))
	}
	return "The output must be a JSON object that conforms to the JSON schema below.\n```\n" + string(encoded) + "\n```"
})

// PromptBuilder composes the instruction sent to the LLM provider.
type PromptBuilder struct {
	persona string
}

// NewPromptBuilder returns a builder using persona, or DefaultPersona when empty.
func NewPromptBuilder(persona string) PromptBuilder {
	persona = strings.TrimSpace(persona)
	if persona == "" {
		persona = DefaultPersona
	}
	return PromptBuilder{persona: persona}
}

// Build embeds the user prompt verbatim between the persona and the schema directive.
func (b PromptBuilder) Build(userPrompt string) string {
	var sb strings.Builder
	sb.WriteString(b.persona)
	sb.WriteString("\n\nHere is the user's request: ")
	sb.WriteString(userPrompt)
	sb.WriteString("\n\nAnalyze this request and generate a suitable micro-adventure with the following characteristics:\n")
	for _, field := range adventureFields {
		fmt.Fprintf(&sb, "- %s (%s)\n", field.Description, field.Name)
	}
	sb.WriteString("\nRespond ONLY with a valid JSON object following this exact format, without any additional text:\n")
	sb.WriteString(formatInstructions())
	return sb.String()
}

// BuildPrompt composes an instruction with the default persona.
func BuildPrompt(userPrompt string) string {
	return NewPromptBuilder("").Build(userPrompt)
}
