package views

import (
	"context"

	domain "github.com/archgram/archgram/internal/domain/pipeline"
	"github.com/archgram/archgram/internal/domain/schema"
	"github.com/archgram/archgram/internal/extract"
)

// Service computes derived views of a completed request. Views are computed
// freshly from the ledger's stored summary on every call; nothing is cached.
type Service struct {
	Ledger    domain.Ledger
	Extractor *extract.Extractor
}

// Get returns the completed-request metadata.
func (s *Service) Get(ctx context.Context, id domain.RequestID) (*domain.RequestRecord, error) {
	return s.Ledger.Get(ctx, id)
}

// Components derives the component inventory for a completed request.
// Unparseable model output is absorbed by the fallback value; an unknown id
// or an unreachable model is an error.
func (s *Service) Components(ctx context.Context, id domain.RequestID) (extract.Result[schema.ComponentInventory], error) {
	rec, err := s.Ledger.Get(ctx, id)
	if err != nil {
		return extract.Result[schema.ComponentInventory]{}, err
	}
	res := s.Extractor.Components(ctx, rec.Summary, rec.Params)
	if res.Err != nil {
		return extract.Result[schema.ComponentInventory]{}, res.Err
	}
	return res, nil
}

// DiagramSyntax derives the text-based diagram description for a completed request.
func (s *Service) DiagramSyntax(ctx context.Context, id domain.RequestID) (extract.Result[schema.DiagramDescription], error) {
	rec, err := s.Ledger.Get(ctx, id)
	if err != nil {
		return extract.Result[schema.DiagramDescription]{}, err
	}
	res := s.Extractor.Diagram(ctx, rec.Summary, rec.Params)
	if res.Err != nil {
		return extract.Result[schema.DiagramDescription]{}, res.Err
	}
	return res, nil
}
