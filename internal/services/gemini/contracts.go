package gemini

import (
	"context"

	"google.golang.org/genai"
)

// ContentGenerator is the part of the genai client the service calls
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
