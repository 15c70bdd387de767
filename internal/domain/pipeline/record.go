package pipeline

import "time"

// RequestID type for completed render requests
type RequestID string

// GenerationParams are the caller-supplied knobs that derived views must be
// re-computed with, so they are stored alongside the summary.
type GenerationParams struct {
	ModelID string `json:"model_id"`
	Region  string `json:"region"`
}

// RequestRecord holds everything needed to re-derive downstream views of a
// completed render. A record exists if and only if a render completed
// successfully, and it is immutable once created.
type RequestRecord struct {
	ID          RequestID        `json:"id"`
	Summary     string           `json:"summary"`
	Params      GenerationParams `json:"params"`
	SourceName  string           `json:"source_name,omitempty"`
	ArtifactKey string           `json:"artifact_key,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
