package pipeline

import "context"

// Ledger port (interface for completed-request storage).
// Records are inserted whole; a put with an existing id fails with
// ErrDuplicateID and a lookup miss returns ErrNotFound. Implementations
// must not serialize independent requests against each other.
type Ledger interface {
	Put(ctx context.Context, rec *RequestRecord) error
	Get(ctx context.Context, id RequestID) (*RequestRecord, error)
}

// TextExtractor port (interface for document text extraction). The pipeline
// treats the actual extraction mechanics as an external capability.
type TextExtractor interface {
	Text(filename string, data []byte) (string, error)
}

// ArtifactStore port (interface for rendered-image storage).
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ArtifactInfo, error)
}

// ArtifactInfo describes one stored diagram object.
type ArtifactInfo struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
	URL          string `json:"url"`
}
