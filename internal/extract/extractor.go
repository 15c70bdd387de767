package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/archgram/archgram/internal/domain/genai"
	"github.com/archgram/archgram/internal/domain/pipeline"
	"github.com/archgram/archgram/internal/domain/schema"
	"github.com/archgram/archgram/internal/extract/prompt"
)

const (
	maxTokens = 4096
	// maxInputChars keeps the prompt inside the model's context window.
	maxInputChars = 180000
)

// Result is the discriminated outcome of an extraction: either a parsed value
// or a schema-valid fallback. Value always satisfies the target schema's
// required fields, so consumers never branch on a missing-data case.
// Err carries the upstream cause when the degradation came from the model
// call itself; parse fallbacks leave it nil. Consumers use it to fail loudly
// on an unreachable model while still absorbing malformed output.
type Result[T any] struct {
	Value    T      `json:"value"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
	Err      error  `json:"-"`
}

func fallback[T any](v T, reason string, cause error) Result[T] {
	return Result[T]{Value: v, Degraded: true, Reason: reason, Err: cause}
}

// Extractor turns free text into one of the fixed output schemas via the
// generation capability. Results are deliberately not cached: every call
// re-invokes the model so edited input is always reflected.
type Extractor struct {
	Gen genai.Generator
}

func NewExtractor(gen genai.Generator) *Extractor {
	return &Extractor{Gen: gen}
}

func (e *Extractor) sampling(p pipeline.GenerationParams) genai.SamplingConfig {
	return genai.SamplingConfig{Model: p.ModelID, Temperature: 0, MaxTokens: maxTokens}
}

func (e *Extractor) generate(ctx context.Context, system, sourceText string, p pipeline.GenerationParams) (raw, reason string, cause error) {
	if strings.TrimSpace(sourceText) == "" {
		return "", "source text is empty", nil
	}
	if len(sourceText) > maxInputChars {
		sourceText = sourceText[:maxInputChars]
	}
	raw, err := e.Gen.Generate(ctx, system, prompt.User(sourceText), e.sampling(p))
	if err != nil {
		return "", fmt.Sprintf("model call failed: %v", err), err
	}
	return raw, "", nil
}

// Summarize produces the architecture summary of the source text.
func (e *Extractor) Summarize(ctx context.Context, sourceText string, p pipeline.GenerationParams) Result[schema.Summary] {
	raw, reason, cause := e.generate(ctx, prompt.SummarySystem(), sourceText, p)
	if reason != "" {
		return fallback(fallbackSummary(reason), reason, cause)
	}
	if span, ok := FirstJSONSpan(raw); ok {
		if s, ok := decodeSummary(span); ok {
			return Result[schema.Summary]{Value: s}
		}
	}
	// Summaries are prose anyway; a response without a JSON span is still
	// usable as the summary text itself.
	if text := strings.TrimSpace(raw); text != "" {
		return Result[schema.Summary]{Value: schema.Summary{Summary: text}}
	}
	reason = "no usable text in model output"
	return fallback(fallbackSummary(reason), reason, nil)
}

// Components produces the structured component inventory of the source text.
func (e *Extractor) Components(ctx context.Context, sourceText string, p pipeline.GenerationParams) Result[schema.ComponentInventory] {
	raw, reason, cause := e.generate(ctx, prompt.InventorySystem(), sourceText, p)
	if reason != "" {
		return fallback(fallbackInventory(reason), reason, cause)
	}
	if span, ok := FirstJSONSpan(raw); ok {
		if inv, ok := decodeInventory(span); ok {
			return Result[schema.ComponentInventory]{Value: inv}
		}
	}
	reason = "no parseable component inventory in model output"
	return fallback(fallbackInventory(reason), reason, nil)
}

// Diagram produces the text-based diagram description of the source text.
func (e *Extractor) Diagram(ctx context.Context, sourceText string, p pipeline.GenerationParams) Result[schema.DiagramDescription] {
	raw, reason, cause := e.generate(ctx, prompt.DiagramSystem(), sourceText, p)
	if reason != "" {
		return fallback(fallbackDiagram(reason), reason, cause)
	}
	if span, ok := FirstJSONSpan(raw); ok {
		if d, ok := decodeDiagram(span); ok {
			return Result[schema.DiagramDescription]{Value: d}
		}
	}
	reason = "no parseable diagram syntax in model output"
	return fallback(fallbackDiagram(reason), reason, nil)
}

func fallbackSummary(reason string) schema.Summary {
	return schema.Summary{Summary: "Summary unavailable: " + reason}
}

func fallbackInventory(reason string) schema.ComponentInventory {
	return schema.ComponentInventory{Categories: []schema.Category{{
		Name: "extraction",
		Components: []schema.Component{{
			Name:          "extraction-fallback",
			Type:          schema.TypeUnrecognized,
			Description:   "Component inventory unavailable: " + reason,
			Relationships: []string{},
		}},
	}}}
}

func fallbackDiagram(reason string) schema.DiagramDescription {
	return schema.DiagramDescription{
		Format: schema.FormatMermaid,
		Syntax: "flowchart LR\n  source[Source document] --> note[\"Diagram unavailable: " + strings.ReplaceAll(reason, `"`, "'") + "\"]",
	}
}
