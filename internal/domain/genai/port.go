package genai

import "context"

// SamplingConfig controls run-to-run variance of the model. The pipeline
// always uses a near-zero temperature so the parsing layer sees stable output.
type SamplingConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

type Generator interface {
	Generate(ctx context.Context, instructions, input string, cfg SamplingConfig) (string, error)
}
