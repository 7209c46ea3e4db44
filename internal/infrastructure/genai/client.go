// Package genai adapts the Google Gemini SDK to ports.TextGenerator.
package genai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Client generates text with the Gemini API.
type Client struct {
	models *genai.Models
}

// NewClient builds a Gemini API client. An empty apiKey is rejected up front
// rather than falling back to ambient credentials.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	return newClient(ctx, apiKey, "")
}

// newClient allows pointing the SDK at another endpoint. Empty baseURL keeps
// the SDK default.
func newClient(ctx context.Context, apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Client{models: c.Models}, nil
}

// Generate sends prompt to model and returns the concatenated text parts of
// the first candidate. A reply without text is returned as "".
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return resp.Text(), nil
}
