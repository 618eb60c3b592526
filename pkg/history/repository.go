package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is one processed request.
type Record struct {
	ID               string    `json:"id"`
	Operation        string    `json:"operation"`
	Threshold        int       `json:"threshold"`
	Alpha            float64   `json:"alpha"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	NodeCount        int       `json:"node_count"`
	CompressionRatio float64   `json:"compression_ratio"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// Repository stores and lists processing records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

const insertRecordQuery = `
INSERT INTO processing_records
(id, operation, threshold, alpha, width, height, node_count, compression_ratio, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const recentRecordsQuery = `
SELECT id, operation, threshold, alpha, width, height, node_count, compression_ratio, duration_ms, created_at
FROM processing_records ORDER BY created_at DESC, id LIMIT ?;
`

type sqliteRepo struct {
	db *sql.DB
}

// NewRepository wraps an open history database.
func NewRepository(db *sql.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New("missing DB parameter")
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertRecordQuery,
		rec.ID, rec.Operation, rec.Threshold, rec.Alpha,
		rec.Width, rec.Height, rec.NodeCount, rec.CompressionRatio,
		rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert processing record: %w", err)
	}
	return nil
}

func (r *sqliteRepo) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, recentRecordsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query processing records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.Threshold, &rec.Alpha,
			&rec.Width, &rec.Height, &rec.NodeCount, &rec.CompressionRatio,
			&rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan processing record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
