package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	pgpkg "github.com/Ban68/LePret-sub001/pkg/postgres"
)

const offerColumns = `id, company_id, request_id, status, annual_rate, advance_pct, fees,
	advance_amount, net_amount, valid_until, created_by, accepted_by, accepted_at,
	created_at, updated_at`

// OfferRepo implements port.OfferRepository.
type OfferRepo struct {
	q pgpkg.Querier
}

// FindByID retrieves one offer of the company.
func (r *OfferRepo) FindByID(ctx context.Context, companyID, id string) (model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE company_id = $1 AND id = $2`
	o, err := scanOffer(r.q.QueryRow(ctx, query, companyID, id))
	if isNoRows(err) {
		return model.Offer{}, apperr.OfferNotFound()
	}
	return o, err
}

// ListByRequest returns the offers of a request, newest first. Offers created
// in the same instant keep insertion order through the seq column.
func (r *OfferRepo) ListByRequest(ctx context.Context, companyID, requestID string) ([]model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers
		WHERE company_id = $1 AND request_id = $2
		ORDER BY created_at DESC, seq DESC`
	rows, err := r.q.Query(ctx, query, companyID, requestID)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var out []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Insert stores a new offer.
func (r *OfferRepo) Insert(ctx context.Context, o model.Offer) error {
	terms := o.Terms()
	fees, err := json.Marshal(terms.Fees)
	if err != nil {
		return fmt.Errorf("marshal offer fees: %w", err)
	}
	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.q.Exec(ctx, query,
		o.ID(), o.CompanyID(), o.RequestID(), o.Status().String(),
		terms.AnnualRate, terms.AdvancePct, fees,
		terms.AdvanceAmount, terms.NetAmount, terms.ValidUntil.UTC(),
		o.CreatedBy(), o.AcceptedBy(), utcPtr(o.AcceptedAt()),
		o.CreatedAt().UTC(), o.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

// Update writes the decision columns. Terms never change after creation.
func (r *OfferRepo) Update(ctx context.Context, o model.Offer) error {
	query := `
		UPDATE offers SET
			status      = $3,
			accepted_by = $4,
			accepted_at = $5,
			updated_at  = $6
		WHERE company_id = $1 AND id = $2
	`
	tag, err := r.q.Exec(ctx, query,
		o.CompanyID(), o.ID(), o.Status().String(),
		o.AcceptedBy(), utcPtr(o.AcceptedAt()), o.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.OfferNotFound()
	}
	return nil
}

func scanOffer(s scannable) (model.Offer, error) {
	var (
		id, companyID, requestID, statusStr string
		rate, advancePct                    decimal.Decimal
		feesJSON                            []byte
		advanceAmount, netAmount            decimal.Decimal
		validUntil                          time.Time
		createdBy, acceptedBy               string
		acceptedAt                          *time.Time
		createdAt, updatedAt                time.Time
	)
	err := s.Scan(
		&id, &companyID, &requestID, &statusStr, &rate, &advancePct, &feesJSON,
		&advanceAmount, &netAmount, &validUntil, &createdBy, &acceptedBy, &acceptedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.Offer{}, fmt.Errorf("scan offer: %w", err)
	}

	status, err := valueobject.NewOfferStatus(statusStr)
	if err != nil {
		return model.Offer{}, fmt.Errorf("parse offer status: %w", err)
	}
	fees := map[string]decimal.Decimal{}
	if len(feesJSON) > 0 {
		if err := json.Unmarshal(feesJSON, &fees); err != nil {
			return model.Offer{}, fmt.Errorf("unmarshal offer fees: %w", err)
		}
	}

	terms := model.OfferTerms{
		AnnualRate:    rate,
		AdvancePct:    advancePct,
		Fees:          fees,
		AdvanceAmount: advanceAmount,
		NetAmount:     netAmount,
		ValidUntil:    validUntil,
	}
	return model.ReconstructOffer(
		id, companyID, requestID, terms, status,
		createdBy, acceptedBy, acceptedAt, createdAt, updatedAt,
	), nil
}
