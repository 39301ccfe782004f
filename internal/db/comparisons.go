package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Comparison is a stored comparison run.
//
// Schema:
//
//	CREATE TABLE ocr_comparisons (
//	    id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	    pdf_name      text NOT NULL,
//	    pdf_object    text,
//	    backends      text[] NOT NULL,
//	    parallel      boolean NOT NULL,
//	    total_time    double precision NOT NULL,
//	    best_overall  text,
//	    report        jsonb NOT NULL,
//	    created_at    timestamptz NOT NULL DEFAULT now()
//	);
type Comparison struct {
	ID          uuid.UUID       `json:"id"`
	PDFName     string          `json:"pdf_name"`
	PDFObject   string          `json:"pdf_object,omitempty"`
	Backends    []string        `json:"backends"`
	Parallel    bool            `json:"parallel"`
	TotalTime   float64         `json:"total_time"`
	BestOverall string          `json:"best_overall,omitempty"`
	Report      json.RawMessage `json:"report,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SaveComparison inserts a finished comparison and fills ID/CreatedAt.
func SaveComparison(ctx context.Context, c *Comparison) error {
	query := `
		INSERT INTO ocr_comparisons (
			pdf_name, pdf_object, backends, parallel,
			total_time, best_overall, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return Pool.QueryRow(ctx, query,
		c.PDFName, c.PDFObject, c.Backends, c.Parallel,
		c.TotalTime, c.BestOverall, c.Report,
	).Scan(&c.ID, &c.CreatedAt)
}

// ListComparisons returns recent runs without their full reports.
func ListComparisons(ctx context.Context, limit int) ([]Comparison, error) {
	query := `
		SELECT id, pdf_name, COALESCE(pdf_object, ''), backends, parallel,
		       total_time, COALESCE(best_overall, ''), created_at
		FROM ocr_comparisons
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comparisons []Comparison
	for rows.Next() {
		var c Comparison
		err := rows.Scan(
			&c.ID, &c.PDFName, &c.PDFObject, &c.Backends, &c.Parallel,
			&c.TotalTime, &c.BestOverall, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, c)
	}
	return comparisons, rows.Err()
}

// GetComparison returns one stored run with its full report.
func GetComparison(ctx context.Context, id uuid.UUID) (*Comparison, error) {
	query := `
		SELECT id, pdf_name, COALESCE(pdf_object, ''), backends, parallel,
		       total_time, COALESCE(best_overall, ''), report, created_at
		FROM ocr_comparisons
		WHERE id = $1
	`

	var c Comparison
	err := Pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PDFName, &c.PDFObject, &c.Backends, &c.Parallel,
		&c.TotalTime, &c.BestOverall, &c.Report, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComparison removes one stored run.
func DeleteComparison(ctx context.Context, id uuid.UUID) error {
	tag, err := Pool.Exec(ctx, `DELETE FROM ocr_comparisons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comparison %s not found", id)
	}
	return nil
}
