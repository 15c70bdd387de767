package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/archgram/archgram/internal/domain/pipeline"
)

type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

const duplicateEntryErrNo = 1062

// Put inserts a completed-request record. Records are immutable, so there is
// no upsert path; an existing id is a duplicate, never an update.
func (l *Ledger) Put(ctx context.Context, rec *pipeline.RequestRecord) error {
	const q = `
INSERT INTO diagram_requests
(id, summary, model_id, region, source_name, artifact_key, created_at)
VALUES (?,?,?,?,?,?,?);
`
	_, err := l.db.ExecContext(ctx, q,
		rec.ID, rec.Summary, rec.Params.ModelID, rec.Params.Region,
		rec.SourceName, rec.ArtifactKey, rec.CreatedAt,
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == duplicateEntryErrNo {
		return pipeline.ErrDuplicateID
	}
	return err
}

func (l *Ledger) Get(ctx context.Context, id pipeline.RequestID) (*pipeline.RequestRecord, error) {
	const q = `
SELECT id, summary, model_id, region, source_name, artifact_key, created_at
FROM diagram_requests
WHERE id=? LIMIT 1;
`
	row := l.db.QueryRowContext(ctx, q, id)

	var rec pipeline.RequestRecord
	if err := row.Scan(
		&rec.ID, &rec.Summary, &rec.Params.ModelID, &rec.Params.Region,
		&rec.SourceName, &rec.ArtifactKey, &rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipeline.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
