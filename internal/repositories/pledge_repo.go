package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/models"
)

type PledgeRepo struct {
	db DBTX
}

func NewPledgeRepo(pool *pgxpool.Pool) *PledgeRepo {
	return &PledgeRepo{db: pool}
}

func (r *PledgeRepo) WithTx(tx pgx.Tx) *PledgeRepo {
	return &PledgeRepo{db: tx}
}

func (r *PledgeRepo) Create(ctx context.Context, p *models.Pledge) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO need_pledges (campaign_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.CampaignID, p.UserID, p.Status).Scan(&p.ID, &p.CreatedAt)
}

func (r *PledgeRepo) CreateRow(ctx context.Context, row *models.PledgeRow) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO need_pledge_rows (pledge_id, item_id, quantity, unit_price, row_total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, row.PledgeID, row.ItemID, row.Quantity, row.UnitPrice, row.RowTotal).Scan(&row.ID)
}

func (r *PledgeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Pledge, error) {
	var p models.Pledge
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_id, user_id, status, created_at
		FROM need_pledges WHERE id = $1
	`, id).Scan(&p.ID, &p.CampaignID, &p.UserID, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PledgeRepo) ListRows(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, pledge_id, item_id, quantity, unit_price, row_total
		FROM need_pledge_rows WHERE pledge_id = $1
	`, pledgeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PledgeRow
	for rows.Next() {
		var pr models.PledgeRow
		if err := rows.Scan(&pr.ID, &pr.PledgeID, &pr.ItemID, &pr.Quantity, &pr.UnitPrice, &pr.RowTotal); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// UserHasPledge supports the campaign-context dispute access rule.
func (r *PledgeRepo) UserHasPledge(ctx context.Context, campaignID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM need_pledges WHERE campaign_id = $1 AND user_id = $2)
	`, campaignID, userID).Scan(&exists)
	return exists, err
}

func (r *PledgeRepo) CreateParticipation(ctx context.Context, p *models.Participation) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO participations (user_id, campaign_id, kind, ref_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.UserID, p.CampaignID, p.Kind, p.RefID).Scan(&p.ID, &p.CreatedAt)
}
