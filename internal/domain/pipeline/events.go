package pipeline

// EventStatus enum
type EventStatus string

const (
	StatusInfo     EventStatus = "info"
	StatusSuccess  EventStatus = "success"
	StatusWarning  EventStatus = "warning"
	StatusError    EventStatus = "error"
	StatusComplete EventStatus = "complete"
)

// Terminal reports whether a status ends the stream.
func (s EventStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// RenderArtifact is carried only on the terminal complete event.
type RenderArtifact struct {
	RequestID   RequestID `json:"request_id"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	Summary     string    `json:"summary,omitempty"`
}

// ProgressEvent is one status update on a render request's stream.
// Percent, when present, is non-decreasing across a stream.
type ProgressEvent struct {
	Message string          `json:"message"`
	Status  EventStatus     `json:"status"`
	Percent *int            `json:"percent,omitempty"`
	Payload *RenderArtifact `json:"payload,omitempty"`
}
