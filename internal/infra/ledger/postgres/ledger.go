package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/archgram/archgram/internal/domain/pipeline"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

const uniqueViolation = "23505"

func (l *Ledger) Put(ctx context.Context, rec *pipeline.RequestRecord) error {
	const q = `
INSERT INTO diagram_requests
(id, summary, model_id, region, source_name, artifact_key, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	_, err := l.db.ExecContext(ctx, q,
		rec.ID, rec.Summary, rec.Params.ModelID, rec.Params.Region,
		rec.SourceName, rec.ArtifactKey, rec.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return pipeline.ErrDuplicateID
	}
	return err
}

func (l *Ledger) Get(ctx context.Context, id pipeline.RequestID) (*pipeline.RequestRecord, error) {
	const q = `
SELECT id, summary, model_id, region, source_name, artifact_key, created_at
FROM diagram_requests
WHERE id=$1 LIMIT 1;
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
