package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/archgram/archgram/internal/domain/genai"
)

type Client struct {
	*openai.Client
	DefaultModel string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), DefaultModel: model}
}

// Generate runs one chat completion with the pipeline's low-randomness
// configuration and a JSON-object response format.
func (c *Client) Generate(ctx context.Context, instructions, input string, cfg genai.SamplingConfig) (string, error) {
	model := cfg.Model
	if model == "" {
		model = c.DefaultModel
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = cfg.MaxTokens
	} else {
		req.MaxTokens = cfg.MaxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", genai.ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", genai.ErrThrottled, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: authentication rejected", genai.ErrUnavailable)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout", genai.ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", genai.ErrUnavailable, err)
}
