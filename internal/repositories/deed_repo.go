package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mishmeshmosh/backend/internal/models"
)

type DeedRepo struct {
	db DBTX
}

func NewDeedRepo(pool *pgxpool.Pool) *DeedRepo {
	return &DeedRepo{db: pool}
}

func (r *DeedRepo) WithTx(tx pgx.Tx) *DeedRepo {
	return &DeedRepo{db: tx}
}

const deedColumns = `
	id, deed_kind, status, version, doc_json, doc_hash, campaign_id,
	created_by, created_at, opened_for_signature_at, executed_at
`

func scanDeed(row pgx.Row) (*models.Deed, error) {
	var d models.Deed
	err := row.Scan(&d.ID, &d.DeedKind, &d.Status, &d.Version, &d.DocJSON, &d.DocHash,
		&d.CampaignID, &d.CreatedBy, &d.CreatedAt, &d.OpenedForSignatureAt, &d.ExecutedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeedRepo) Create(ctx context.Context, d *models.Deed) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO deeds (deed_kind, status, version, doc_json, doc_hash, campaign_id,
			created_by, opened_for_signature_at, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, d.DeedKind, d.Status, d.Version, string(d.DocJSON), d.DocHash, d.CampaignID,
		d.CreatedBy, d.OpenedForSignatureAt, d.ExecutedAt,
	).Scan(&d.ID, &d.CreatedAt)
}

func (r *DeedRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deed, error) {
	return scanDeed(r.db.QueryRow(ctx, `SELECT `+deedColumns+` FROM deeds WHERE id = $1`, id))
}

// UpdateDocJSON is the narrow post-insert backfill of the deed's own id and
// verify_url inside doc_json. The content hash is not recomputed.
func (r *DeedRepo) UpdateDocJSON(ctx context.Context, id uuid.UUID, docJSON []byte) error {
	_, err := r.db.Exec(ctx, `UPDATE deeds SET doc_json = $1 WHERE id = $2`, string(docJSON), id)
	return err
}

func (r *DeedRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE deeds SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (r *DeedRepo) MarkExecuted(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE deeds SET status = $1, executed_at = now() WHERE id = $2
	`, models.DeedStatusExecuted, id)
	return err
}

// ListSignedNeedDeeds returns all signed need deeds for a need campaign, the
// input set of the assignment builder.
func (r *DeedRepo) ListSignedNeedDeeds(ctx context.Context, campaignID uuid.UUID) ([]models.Deed, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+deedColumns+` FROM deeds
		WHERE campaign_id = $1 AND deed_kind = $2 AND status = $3
		ORDER BY created_at
	`, campaignID, models.DeedKindNeed, models.DeedStatusSigned)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeeds(rows)
}

type DeedFilter struct {
	CampaignID *uuid.UUID
	CreatedBy  *uuid.UUID
	DeedKind   *string
	Status     *string
	Limit      int
	Offset     int
}

func (r *DeedRepo) List(ctx context.Context, f DeedFilter) ([]models.Deed, error) {
	query := `SELECT ` + deedColumns + ` FROM deeds`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.CreatedBy != nil {
		where = append(where, fmt.Sprintf("created_by = $%d", argIdx))
		args = append(args, *f.CreatedBy)
		argIdx++
	}
	if f.DeedKind != nil {
		where = append(where, fmt.Sprintf("deed_kind = $%d", argIdx))
		args = append(args, *f.DeedKind)
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
	return collectDeeds(rows)
}

func collectDeeds(rows pgx.Rows) ([]models.Deed, error) {
	var deeds []models.Deed
	for rows.Next() {
		d, err := scanDeed(rows)
		if err != nil {
			return nil, err
		}
		deeds = append(deeds, *d)
	}
	return deeds, rows.Err()
}

// ---- Signers ----

func (r *DeedRepo) InviteSigners(ctx context.Context, signers []models.DeedSigner) error {
	for i := range signers {
		s := &signers[i]
		metaBytes, err := json.Marshal(s.SignatureMeta)
		if err != nil {
			return err
		}
		err = r.db.QueryRow(ctx, `
			INSERT INTO deed_signers (deed_id, user_id, signer_kind, status, signed_at, signature_meta)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, invited_at
		`, s.DeedID, s.UserID, s.SignerKind, s.Status, s.SignedAt, metaBytes).Scan(&s.ID, &s.InvitedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *DeedRepo) GetSigner(ctx context.Context, deedID, userID uuid.UUID) (*models.DeedSigner, error) {
	var s models.DeedSigner
	var metaBytes []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, deed_id, user_id, signer_kind, status, invited_at, signed_at, signature_meta
		FROM deed_signers WHERE deed_id = $1 AND user_id = $2
	`, deedID, userID).Scan(&s.ID, &s.DeedID, &s.UserID, &s.SignerKind, &s.Status, &s.InvitedAt, &s.SignedAt, &metaBytes)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(metaBytes, &s.SignatureMeta)
	return &s, nil
}

// MarkSigned transitions exactly one invited signer row to signed. The
// returned bool reports whether a row was updated; callers distinguish
// not-found from already-signed with GetSigner.
func (r *DeedRepo) MarkSigned(ctx context.Context, deedID, userID uuid.UUID, meta models.SignatureMeta) (bool, error) {
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE deed_signers SET status = $1, signed_at = now(), signature_meta = $2
		WHERE deed_id = $3 AND user_id = $4 AND status = $5
	`, models.SignerStatusSigned, metaBytes, deedID, userID, models.SignerStatusInvited)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DeedRepo) ListSigners(ctx context.Context, deedID uuid.UUID) ([]models.DeedSigner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, deed_id, user_id, signer_kind, status, invited_at, signed_at, signature_meta
		FROM deed_signers WHERE deed_id = $1 ORDER BY invited_at, signer_kind
	`, deedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signers []models.DeedSigner
	for rows.Next() {
		var s models.DeedSigner
		var metaBytes []byte
		if err := rows.Scan(&s.ID, &s.DeedID, &s.UserID, &s.SignerKind, &s.Status, &s.InvitedAt, &s.SignedAt, &metaBytes); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(metaBytes, &s.SignatureMeta)
		signers = append(signers, s)
	}
	return signers, rows.Err()
}

// SignerProgress derives signed/total counts; there is no stored counter.
func (r *DeedRepo) SignerProgress(ctx context.Context, deedID uuid.UUID) (models.SignerProgress, error) {
	var p models.SignerProgress
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = $1), count(*)
		FROM deed_signers WHERE deed_id = $2
	`, models.SignerStatusSigned, deedID).Scan(&p.Signed, &p.Total)
	return p, err
}

// GetBackerSigner resolves the backer party of a need deed: the signer row
// with signer_kind = backer.
func (r *DeedRepo) GetBackerSigner(ctx context.Context, deedID uuid.UUID) (*models.DeedSigner, error) {
	var s models.DeedSigner
	var metaBytes []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, deed_id, user_id, signer_kind, status, invited_at, signed_at, signature_meta
		FROM deed_signers WHERE deed_id = $1 AND signer_kind = $2
	`, deedID, models.SignerKindBacker).Scan(&s.ID, &s.DeedID, &s.UserID, &s.SignerKind, &s.Status, &s.InvitedAt, &s.SignedAt, &metaBytes)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(metaBytes, &s.SignatureMeta)
	return &s, nil
}

// ---- Worker sweeps ----

func (r *DeedRepo) ListStaleInvitedSigners(ctx context.Context, olderThanSeconds int) ([]models.DeedSigner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, deed_id, user_id, signer_kind, status, invited_at, signed_at, signature_meta
		FROM deed_signers
		WHERE status = $1 AND invited_at < now() - ($2 || ' seconds')::interval
	`, models.SignerStatusInvited, fmt.Sprintf("%d", olderThanSeconds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signers []models.DeedSigner
	for rows.Next() {
		var s models.DeedSigner
		var metaBytes []byte
		if err := rows.Scan(&s.ID, &s.DeedID, &s.UserID, &s.SignerKind, &s.Status, &s.InvitedAt, &s.SignedAt, &metaBytes); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(metaBytes, &s.SignatureMeta)
		signers = append(signers, s)
	}
	return signers, rows.Err()
}

// ListOrphanDraftAssignmentDeeds finds draft assignment deeds with no owning
// assignment row, the partial-failure window documented for the builder.
func (r *DeedRepo) ListOrphanDraftAssignmentDeeds(ctx context.Context, olderThanSeconds int) ([]models.Deed, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+deedColumns+` FROM deeds d
		WHERE d.deed_kind = $1 AND d.status = $2
		  AND d.created_at < now() - ($3 || ' seconds')::interval
		  AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.deed_id = d.id)
	`, models.DeedKindAssignment, models.DeedStatusDraft, fmt.Sprintf("%d", olderThanSeconds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeeds(rows)
}

// ListRecentDeeds feeds the stored-hash spot check.
func (r *DeedRepo) ListRecentDeeds(ctx context.Context, limit int) ([]models.Deed, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+deedColumns+` FROM deeds
		WHERE deed_kind != $1
		ORDER BY created_at DESC LIMIT $2
	`, models.DeedKindFeed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeeds(rows)
}
