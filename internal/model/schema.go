package model

type SchemaType string

const (
	SchemaObject SchemaType = "OBJECT"
	SchemaArray  SchemaType = "ARRAY"
	SchemaString SchemaType = "STRING"
)

// ResponseSchema describes the structured answer expected from the
// completion service.
type ResponseSchema struct {
	Type       SchemaType                 `json:"type"`
	Properties map[string]*ResponseSchema `json:"properties,omitempty"`
	Items      *ResponseSchema            `json:"items,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

type CompletionRequest struct {
	Prompt string
	Schema *ResponseSchema
	// SearchGrounding lets the service consult web search before answering.
	SearchGrounding bool
}
