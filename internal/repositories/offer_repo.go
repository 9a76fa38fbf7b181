package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/models"
)

type OfferRepo struct {
	db DBTX
}

func NewOfferRepo(pool *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{db: pool}
}

func (r *OfferRepo) WithTx(tx pgx.Tx) *OfferRepo {
	return &OfferRepo{db: tx}
}

const offerColumns = `
	id, campaign_id, supplier_id, status, payment_terms, delivery_terms,
	warranty, deed_id, created_at, signed_at
`

func scanOffer(row pgx.Row) (*models.SupplierOffer, error) {
	var o models.SupplierOffer
	err := row.Scan(&o.ID, &o.CampaignID, &o.SupplierID, &o.Status, &o.PaymentTerms,
		&o.DeliveryTerms, &o.Warranty, &o.DeedID, &o.CreatedAt, &o.SignedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepo) Create(ctx context.Context, o *models.SupplierOffer) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO supplier_offers (campaign_id, supplier_id, status, payment_terms, delivery_terms, warranty)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, o.CampaignID, o.SupplierID, o.Status, o.PaymentTerms, o.DeliveryTerms, o.Warranty,
	).Scan(&o.ID, &o.CreatedAt)
}

func (r *OfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error) {
	return scanOffer(r.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM supplier_offers WHERE id = $1`, id))
}

func (r *OfferRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE supplier_offers SET status = $1 WHERE id = $2`, status, id)
	return err
}

// MarkSigned stamps signed_at along with the status; at this point the offer
// is a binding feed deed.
func (r *OfferRepo) MarkSigned(ctx context.Context, id uuid.UUID, deedID *uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE supplier_offers SET status = $1, signed_at = now(), deed_id = $2 WHERE id = $3
	`, models.OfferStatusSigned, deedID, id)
	return err
}

func (r *OfferRepo) CreateRow(ctx context.Context, row *models.SupplierOfferRow) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO supplier_offer_rows (offer_id, item_id, unit_price, min_qty, lead_time_days, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, row.OfferID, row.ItemID, row.UnitPrice, row.MinQty, row.LeadTimeDays, row.Notes).Scan(&row.ID)
}

func (r *OfferRepo) ListRows(ctx context.Context, offerID uuid.UUID) ([]models.SupplierOfferRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, offer_id, item_id, unit_price, min_qty, lead_time_days, notes
		FROM supplier_offer_rows WHERE offer_id = $1
	`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SupplierOfferRow
	for rows.Next() {
		var or models.SupplierOfferRow
		if err := rows.Scan(&or.ID, &or.OfferID, &or.ItemID, &or.UnitPrice, &or.MinQty, &or.LeadTimeDays, &or.Notes); err != nil {
			return nil, err
		}
		out = append(out, or)
	}
	return out, rows.Err()
}

type OfferFilter struct {
	CampaignID *uuid.UUID
	SupplierID *uuid.UUID
	Status     *string
	Limit      int
	Offset     int
}

func (r *OfferRepo) List(ctx context.Context, f OfferFilter) ([]models.SupplierOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM supplier_offers`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.SupplierID != nil {
		where = append(where, fmt.Sprintf("supplier_id = $%d", argIdx))
		args = append(args, *f.SupplierID)
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

	var offers []models.SupplierOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// HasSignedOffer enforces at most one signed offer per (campaign, supplier);
// the partial unique index is the hard guarantee, this gives the friendly
// error first.
func (r *OfferRepo) HasSignedOffer(ctx context.Context, campaignID, supplierID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM supplier_offers
			WHERE campaign_id = $1 AND supplier_id = $2 AND status IN ($3, $4))
	`, campaignID, supplierID, models.OfferStatusSigned, models.OfferStatusSelected).Scan(&exists)
	return exists, err
}
