package memory

import (
	"context"
	"sync"

	"github.com/archgram/archgram/internal/domain/pipeline"
)

// Ledger is the process-lifetime request store. sync.Map gives per-key
// insertion atomicity without a lock shared across independent requests;
// records are copied on the way in and out so the stored value stays
// immutable. Contents are lost on restart, which is accepted.
type Ledger struct {
	records sync.Map // pipeline.RequestID -> pipeline.RequestRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Put(_ context.Context, rec *pipeline.RequestRecord) error {
	if _, loaded := l.records.LoadOrStore(rec.ID, *rec); loaded {
		return pipeline.ErrDuplicateID
	}
	return nil
}

func (l *Ledger) Get(_ context.Context, id pipeline.RequestID) (*pipeline.RequestRecord, error) {
	v, ok := l.records.Load(id)
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	rec := v.(pipeline.RequestRecord)
	return &rec, nil
}
