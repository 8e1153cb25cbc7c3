// Package gemini adapts the Gemini API to the narration model interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gnzdotmx/pequebum/internal/utils"
	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned by every call when GEMINI_KEY is not set
var ErrMissingAPIKey = errors.New("GEMINI_KEY is not set")

// Service produces candidate answers from a Gemini model
type Service struct {
	models ContentGenerator
	model  string
}

// NewService connects to the Gemini API with apiKey
func NewService(ctx context.Context, apiKey, model string) (*Service, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewServiceWith(client.Models, model), nil
}

// NewServiceWith wraps an existing content generator
func NewServiceWith(models ContentGenerator, model string) *Service {
	return &Service{models: models, model: model}
}

// Candidates returns the text of every candidate in the model response, in order
func (s *Service) Candidates(ctx context.Context, prompt string) ([]string, error) {
	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, describe(err)
	}
	if resp == nil {
		return nil, nil
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		utils.LogVerbose("Prompt blocked by the model: %s", resp.PromptFeedback.BlockReason)
	}

	texts := make([]string, 0, len(resp.Candidates))
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		texts = append(texts, sb.String())
	}

	utils.LogDebug("Gemini returned %d candidate(s)", len(texts))
	return texts, nil
}

func describe(err error) error {
	code, ok := apiErrorCode(err)
	if !ok {
		return fmt.Errorf("gemini request failed: %w", err)
	}
	switch code {
	case 400, 401, 403:
		return fmt.Errorf("gemini rejected the request (code %d, check GEMINI_KEY): %w", code, err)
	case 429:
		return fmt.Errorf("gemini quota exceeded: %w", err)
	default:
		return fmt.Errorf("gemini API error (code %d): %w", code, err)
	}
}

// apiErrorCode accepts the API error by value or by pointer.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}

// Unavailable is a model that always fails with Err. It stands in for the
// service when no client could be built so narration falls back.
type Unavailable struct {
	Err error
}

// Candidates always returns u.Err
func (u Unavailable) Candidates(context.Context, string) ([]string, error) {
	return nil, u.Err
}
