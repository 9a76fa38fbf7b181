package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/models"
)

type AssignmentRepo struct {
	db DBTX
}

func NewAssignmentRepo(pool *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{db: pool}
}

func (r *AssignmentRepo) WithTx(tx pgx.Tx) *AssignmentRepo {
	return &AssignmentRepo{db: tx}
}

func (r *AssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO assignments (campaign_need_id, campaign_feed_id, offer_id, deed_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, a.CampaignNeedID, a.CampaignFeedID, a.OfferID, a.DeedID, a.CreatedBy).Scan(&a.ID, &a.CreatedAt)
}

func (r *AssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_need_id, campaign_feed_id, offer_id, deed_id, created_by, created_at
		FROM assignments WHERE id = $1
	`, id).Scan(&a.ID, &a.CampaignNeedID, &a.CampaignFeedID, &a.OfferID, &a.DeedID, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByFeedCampaign backs the at-most-one-assignment-per-feed-campaign check;
// the unique index on campaign_feed_id is the atomic backstop.
func (r *AssignmentRepo) GetByFeedCampaign(ctx context.Context, feedCampaignID uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_need_id, campaign_feed_id, offer_id, deed_id, created_by, created_at
		FROM assignments WHERE campaign_feed_id = $1
	`, feedCampaignID).Scan(&a.ID, &a.CampaignNeedID, &a.CampaignFeedID, &a.OfferID, &a.DeedID, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepo) GetByDeedID(ctx context.Context, deedID uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_need_id, campaign_feed_id, offer_id, deed_id, created_by, created_at
		FROM assignments WHERE deed_id = $1
	`, deedID).Scan(&a.ID, &a.CampaignNeedID, &a.CampaignFeedID, &a.OfferID, &a.DeedID, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LinkNeedDeed records the idempotent many-to-many linkage used to count the
// backers of an assignment without re-deriving from need deeds.
func (r *AssignmentRepo) LinkNeedDeed(ctx context.Context, assignmentID, deedID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO assignment_need_deeds (assignment_id, deed_id)
		VALUES ($1, $2)
		ON CONFLICT (assignment_id, deed_id) DO NOTHING
	`, assignmentID, deedID)
	return err
}

func (r *AssignmentRepo) ListNeedDeedIDs(ctx context.Context, assignmentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT deed_id FROM assignment_need_deeds WHERE assignment_id = $1
	`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AssignmentRepo) CountNeedDeeds(ctx context.Context, assignmentID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM assignment_need_deeds WHERE assignment_id = $1
	`, assignmentID).Scan(&n)
	return n, err
}
