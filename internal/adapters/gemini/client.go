// internal/adapters/gemini/client.go
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"review_radar/internal/adapters/observability"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client generates pain-point reports from assembled prompts.
type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: cl, model: model}, nil
}

// Summarize sends one prompt and returns the model's text. No retries: quota
// and auth failures surface to the caller, which degrades to an error report.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		observability.ObserveSummarizer(c.model, "error", time.Since(start))
		return "", fmt.Errorf("generate content: %w", err)
	}
	observability.ObserveSummarizer(c.model, "ok", time.Since(start))
	return resp.Text(), nil
}
