package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expedientes-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseArchiveRepository persists completed analyses so they outlive the
// in-memory session store. The archive is write-mostly: the live API serves
// from memory and only falls back here for history queries.
type CaseArchiveRepository struct {
	db *pgxpool.Pool
}

// NewCaseArchiveRepository creates a new case archive repository
func NewCaseArchiveRepository(db *pgxpool.Pool) *CaseArchiveRepository {
	return &CaseArchiveRepository{db: db}
}

// ArchivedCase is one archived analysis row.
type ArchivedCase struct {
	CaseID     string          `json:"caseId"`
	Rit        string          `json:"rit"`
	FileName   string          `json:"fileName"`
	UploadDate time.Time       `json:"uploadDate"`
	Analysis   models.CaseData `json:"analysis"`
	ArchivedAt time.Time       `json:"archivedAt"`
}

// Upsert writes or refreshes the archived analysis for a case.
func (r *CaseArchiveRepository) Upsert(ctx context.Context, record *models.CaseRecord) error {
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	query := `
		INSERT INTO case_archive (case_id, rit, file_name, upload_date, analysis, archived_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (case_id) DO UPDATE SET
			rit = EXCLUDED.rit,
			file_name = EXCLUDED.file_name,
			analysis = EXCLUDED.analysis,
			archived_at = NOW()`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.Analysis.Rit.Value,
		record.FileName,
		record.UploadDate,
		analysisJSON,
	)
	return err
}

// GetByCaseID retrieves one archived analysis.
func (r *CaseArchiveRepository) GetByCaseID(ctx context.Context, caseID string) (*ArchivedCase, error) {
	query := `
		SELECT case_id, rit, file_name, upload_date, analysis, archived_at
		FROM case_archive
		WHERE case_id = $1`

	var out ArchivedCase
	var analysisJSON []byte
	err := r.db.QueryRow(ctx, query, caseID).Scan(
		&out.CaseID,
		&out.Rit,
		&out.FileName,
		&out.UploadDate,
		&analysisJSON,
		&out.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(analysisJSON, &out.Analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return &out, nil
}

// ListRecent returns the newest archived analyses, most recent first.
func (r *CaseArchiveRepository) ListRecent(ctx context.Context, limit int) ([]ArchivedCase, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT case_id, rit, file_name, upload_date, analysis, archived_at
		FROM case_archive
		ORDER BY archived_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ArchivedCase, 0)
	for rows.Next() {
		var item ArchivedCase
		var analysisJSON []byte
		if err := rows.Scan(
			&item.CaseID,
			&item.Rit,
			&item.FileName,
			&item.UploadDate,
			&analysisJSON,
			&item.ArchivedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(analysisJSON, &item.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteByCaseID removes an archived analysis.
func (r *CaseArchiveRepository) DeleteByCaseID(ctx context.Context, caseID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM case_archive WHERE case_id = $1`, caseID)
	return err
}
