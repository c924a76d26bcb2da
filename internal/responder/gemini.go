package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini generates replies through Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	modelID string
}

// NewGemini creates a Gemini-backed responder.
func NewGemini(ctx context.Context, apiKey, modelID string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("responder: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("responder: failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		modelID: modelID,
	}, nil
}

// Generate asks the model for one empathetic reply.
func (g *Gemini) Generate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("responder: empty input")
	}

	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(300)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("responder: gemini generate failed: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if textPart, ok := part.(genai.Text); ok && strings.TrimSpace(string(textPart)) != "" {
				return string(textPart), nil
			}
		}
	}
	return "", errors.New("responder: gemini response had no text content")
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
