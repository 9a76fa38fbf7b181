package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/models"
)

type CampaignRepo struct {
	db DBTX
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{db: pool}
}

func (r *CampaignRepo) WithTx(tx pgx.Tx) *CampaignRepo {
	return &CampaignRepo{db: tx}
}

const campaignColumns = `
	id, kind, created_by, title, description, currency,
	threshold_type, threshold_quantity, threshold_value, deadline,
	delivery_json, payment_json, deposit_json, cancellation_json,
	status_need, status_feed, source_campaign_id, created_at, updated_at
`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.Kind, &c.CreatedBy, &c.Title, &c.Description, &c.Currency,
		&c.ThresholdType, &c.ThresholdQuantity, &c.ThresholdValue, &c.Deadline,
		&c.DeliveryJSON, &c.PaymentJSON, &c.DepositJSON, &c.CancellationJSON,
		&c.StatusNeed, &c.StatusFeed, &c.SourceCampaignID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO campaigns (kind, created_by, title, description, currency,
			threshold_type, threshold_quantity, threshold_value, deadline,
			delivery_json, payment_json, deposit_json, cancellation_json,
			status_need, status_feed, source_campaign_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`, c.Kind, c.CreatedBy, c.Title, c.Description, c.Currency,
		c.ThresholdType, c.ThresholdQuantity, c.ThresholdValue, c.Deadline,
		c.DeliveryJSON, c.PaymentJSON, c.DepositJSON, c.CancellationJSON,
		c.StatusNeed, c.StatusFeed, c.SourceCampaignID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(r.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

func (r *CampaignRepo) UpdateNeedStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE campaigns SET status_need = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *CampaignRepo) UpdateFeedStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE campaigns SET status_feed = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

type CampaignFilter struct {
	Kind      *string
	CreatedBy *uuid.UUID
	Status    *string
	Limit     int
	Offset    int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Kind != nil {
		where = append(where, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *f.Kind)
		argIdx++
	}
	if f.CreatedBy != nil {
		where = append(where, fmt.Sprintf("created_by = $%d", argIdx))
		args = append(args, *f.CreatedBy)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("(status_need = $%d OR status_feed = $%d)", argIdx, argIdx))
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

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// ---- Items ----

func (r *CampaignRepo) CreateItem(ctx context.Context, it *models.CampaignItem) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO campaign_items (campaign_id, title, description, unit, variant_json)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, it.CampaignID, it.Title, it.Description, it.Unit, it.VariantJSON).Scan(&it.ID)
}

func (r *CampaignRepo) ListItems(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, title, description, unit, variant_json
		FROM campaign_items WHERE campaign_id = $1 ORDER BY title
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CampaignItem
	for rows.Next() {
		var it models.CampaignItem
		if err := rows.Scan(&it.ID, &it.CampaignID, &it.Title, &it.Description, &it.Unit, &it.VariantJSON); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItems resolves specific item ids belonging to a campaign; the map is
// keyed by item id so callers can detect ids that did not resolve.
func (r *CampaignRepo) GetItems(ctx context.Context, campaignID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*models.CampaignItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, title, description, unit, variant_json
		FROM campaign_items WHERE campaign_id = $1 AND id = ANY($2)
	`, campaignID, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID]*models.CampaignItem, len(itemIDs))
	for rows.Next() {
		var it models.CampaignItem
		if err := rows.Scan(&it.ID, &it.CampaignID, &it.Title, &it.Description, &it.Unit, &it.VariantJSON); err != nil {
			return nil, err
		}
		items[it.ID] = &it
	}
	return items, rows.Err()
}
