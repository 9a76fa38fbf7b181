package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/models"
)

type DisputeRepo struct {
	db DBTX
}

func NewDisputeRepo(pool *pgxpool.Pool) *DisputeRepo {
	return &DisputeRepo{db: pool}
}

const disputeColumns = `
	id, context_type, context_id, opened_by, reason, status, resolution,
	created_at, closed_at
`

func scanDispute(row pgx.Row) (*models.Dispute, error) {
	var d models.Dispute
	err := row.Scan(&d.ID, &d.ContextType, &d.ContextID, &d.OpenedBy, &d.Reason,
		&d.Status, &d.Resolution, &d.CreatedAt, &d.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO disputes (context_type, context_id, opened_by, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, d.ContextType, d.ContextID, d.OpenedBy, d.Reason, d.Status).Scan(&d.ID, &d.CreatedAt)
}

func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return scanDispute(r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id))
}

// HasOpenDispute enforces at most one open/in_review dispute per
// (user, context_type, context_id).
func (r *DisputeRepo) HasOpenDispute(ctx context.Context, userID uuid.UUID, contextType string, contextID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM disputes
			WHERE opened_by = $1 AND context_type = $2 AND context_id = $3
			  AND status IN ($4, $5))
	`, userID, contextType, contextID, models.DisputeStatusOpen, models.DisputeStatusInReview).Scan(&exists)
	return exists, err
}

func (r *DisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE disputes SET status = $1 WHERE id = $2`, status, id)
	return err
}

// Close finalizes a dispute with its resolution payload and closed_at stamp.
func (r *DisputeRepo) Close(ctx context.Context, id uuid.UUID, status string, resolution []byte) error {
	_, err := r.db.Exec(ctx, `
		UPDATE disputes SET status = $1, resolution = $2, closed_at = now() WHERE id = $3
	`, status, resolution, id)
	return err
}

type DisputeFilter struct {
	OpenedBy    *uuid.UUID
	ContextType *string
	Status      *string
	Limit       int
	Offset      int
}

func (r *DisputeRepo) List(ctx context.Context, f DisputeFilter) ([]models.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.OpenedBy != nil {
		where = append(where, fmt.Sprintf("opened_by = $%d", argIdx))
		args = append(args, *f.OpenedBy)
		argIdx++
	}
	if f.ContextType != nil {
		where = append(where, fmt.Sprintf("context_type = $%d", argIdx))
		args = append(args, *f.ContextType)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []models.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, rows.Err()
}
