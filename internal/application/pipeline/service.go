package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/archgram/archgram/internal/application"
	domain "github.com/archgram/archgram/internal/domain/pipeline"
	domrender "github.com/archgram/archgram/internal/domain/render"
	"github.com/archgram/archgram/internal/extract"
	"github.com/archgram/archgram/internal/extract/prompt"
)

// Service implements the render pipeline use-cases.
// It is safe for concurrent use; independent requests share nothing but the
// injected ports.
type Service struct {
	Extractor *extract.Extractor
	Docs      domain.TextExtractor
	Renderer  domrender.Renderer
	Ledger    domain.Ledger
	Artifacts domain.ArtifactStore
	Clock     application.Clock
	Log       zerolog.Logger
}

//
// ==== USE CASES ====
//

// SummarizeCommand carries an uploaded document through text extraction and
// summarization.
type SummarizeCommand struct {
	SourceName string
	Document   []byte
	Text       string // pre-extracted text; used when Document is empty
	Params     domain.GenerationParams
}

// ApprovalHandoff is everything the caller needs to review, edit and approve
// before resuming with Generate. The server keeps no trace of it: the
// suspension between summary and render lives entirely on the caller's side.
type ApprovalHandoff struct {
	SourceName   string                  `json:"source_name,omitempty"`
	Summary      string                  `json:"summary"`
	Instructions string                  `json:"instructions"`
	Params       domain.GenerationParams `json:"params"`
	Degraded     bool                    `json:"degraded,omitempty"`
	Reason       string                  `json:"reason,omitempty"`
}

// Summarize runs the Received -> Extracted -> Summarized stages and hands the
// result back to the caller.
func (s *Service) Summarize(ctx context.Context, cmd SummarizeCommand) (ApprovalHandoff, error) {
	text, err := s.sourceText(cmd.SourceName, cmd.Document, cmd.Text)
	if err != nil {
		return ApprovalHandoff{}, err
	}

	res := s.Extractor.Summarize(ctx, text, cmd.Params)
	if res.Err != nil {
		return ApprovalHandoff{}, fmt.Errorf("summarization failed: %w", res.Err)
	}
	if res.Degraded {
		s.Log.Warn().Str("source", cmd.SourceName).Str("reason", res.Reason).Msg("summary degraded to fallback")
	}

	return ApprovalHandoff{
		SourceName:   cmd.SourceName,
		Summary:      res.Value.Summary,
		Instructions: prompt.DefaultRenderInstructions(),
		Params:       cmd.Params,
		Degraded:     res.Degraded,
		Reason:       res.Reason,
	}, nil
}

// GenerateCommand resumes the pipeline after the caller-held approval point.
// With an approved Summary the pipeline goes straight to Rendering; without
// one it runs the extraction and summarization stages first, reporting each
// transition on the stream.
type GenerateCommand struct {
	SourceName   string
	Document     []byte
	Text         string
	Summary      string
	Instructions string
	Params       domain.GenerationParams
}

// Generate drives one render request to its terminal event. It always emits
// exactly one terminal event on the stream and writes a RequestRecord only
// after a successful render. It does not retry: transient upstream failures
// surface as the terminal error and resubmission is the caller's call.
func (s *Service) Generate(ctx context.Context, cmd GenerateCommand, stream *domain.Stream) {
	summary := strings.TrimSpace(cmd.Summary)

	if summary == "" {
		text, err := s.streamedExtract(cmd, stream)
		if err != nil {
			return
		}
		stream.Info("Summarizing document for architecture", 20)
		res := s.Extractor.Summarize(ctx, text, cmd.Params)
		if res.Err != nil {
			s.Log.Error().Err(res.Err).Str("source", cmd.SourceName).Msg("summarization failed")
			stream.Fail("summarization failed: " + res.Reason)
			return
		}
		if res.Degraded {
			stream.Warn("summary degraded: " + res.Reason)
		}
		summary = res.Value.Summary
		stream.Success("Summary generated", 40)
	}

	instructions := cmd.Instructions
	if instructions == "" {
		instructions = prompt.DefaultRenderInstructions()
	}

	stream.Info("Rendering architecture diagram", 50)
	img, err := s.Renderer.Render(ctx, instructions, summary)
	if err != nil {
		s.Log.Error().Err(err).Str("source", cmd.SourceName).Msg("render failed")
		if errors.Is(err, domrender.ErrBadInstructions) {
			stream.Fail(fmt.Sprintf("diagram rendering rejected the instructions: %v", err))
		} else {
			stream.Fail(fmt.Sprintf("diagram rendering unavailable: %v", err))
		}
		return
	}
	stream.Success("Diagram rendered", 80)

	now := s.Clock.Now()
	id := domain.RequestID(uuid.New().String())
	key := fmt.Sprintf("generated-diagrams/%s_%s_diagram.png", now.UTC().Format("20060102_150405"), id)

	stream.Info("Storing rendered diagram", 90)
	url, err := s.Artifacts.Put(ctx, key, img, "image/png")
	if err != nil {
		s.Log.Error().Err(err).Str("key", key).Msg("artifact upload failed")
		stream.Fail(fmt.Sprintf("storing rendered diagram failed: %v", err))
		return
	}

	rec := &domain.RequestRecord{
		ID:          id,
		Summary:     summary,
		Params:      cmd.Params,
		SourceName:  cmd.SourceName,
		ArtifactKey: key,
		CreatedAt:   now,
	}
	if err := s.Ledger.Put(ctx, rec); err != nil {
		s.Log.Error().Err(err).Str("id", string(id)).Msg("ledger write failed")
		stream.Fail(fmt.Sprintf("recording request failed: %v", err))
		return
	}

	s.Log.Info().Str("id", string(id)).Str("source", cmd.SourceName).Msg("render complete")
	stream.Complete("Diagram generated", domain.RenderArtifact{
		RequestID:   id,
		ImageBase64: base64.StdEncoding.EncodeToString(img),
		ArtifactURL: url,
		Summary:     summary,
	})
}

// streamedExtract resolves the document text for a no-summary generate call,
// reporting the extraction stage on the stream. A nil error means text is
// usable; any failure has already been emitted as the terminal event.
func (s *Service) streamedExtract(cmd GenerateCommand, stream *domain.Stream) (string, error) {
	if text := strings.TrimSpace(cmd.Text); text != "" {
		return text, nil
	}
	if len(cmd.Document) == 0 {
		stream.Fail("invalid input: no document, text or approved summary supplied")
		return "", domain.ErrInputInvalid
	}
	stream.Info("Extracting document text", 5)
	text, err := s.Docs.Text(cmd.SourceName, cmd.Document)
	if err != nil {
		stream.Fail(fmt.Sprintf("document extraction failed: %v", err))
		return "", err
	}
	stream.Success("Document text extracted", 15)
	return text, nil
}

func (s *Service) sourceText(name string, doc []byte, text string) (string, error) {
	if t := strings.TrimSpace(text); t != "" {
		return t, nil
	}
	if len(doc) == 0 {
		return "", fmt.Errorf("%w: no document or text supplied", domain.ErrInputInvalid)
	}
	return s.Docs.Text(name, doc)
}
