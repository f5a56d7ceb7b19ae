package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/money"
	pgpkg "github.com/Ban68/LePret-sub001/pkg/postgres"
)

const requestColumns = `id, company_id, status, requested_amount, currency, invoice_id,
	disbursement_account_id, disbursed_at, version, created_at, updated_at`

// RequestRepo implements port.FundingRequestRepository.
type RequestRepo struct {
	q pgpkg.Querier
}

// FindByID returns the request with its linked invoices.
func (r *RequestRepo) FindByID(ctx context.Context, companyID, id string) (model.FundingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM funding_requests WHERE company_id = $1 AND id = $2`
	req, err := scanRequest(r.q.QueryRow(ctx, query, companyID, id))
	if isNoRows(err) {
		return model.FundingRequest{}, apperr.RequestNotFound()
	}
	if err != nil {
		return model.FundingRequest{}, err
	}
	linked, err := r.loadInvoiceIDs(ctx, []string{req.ID()})
	if err != nil {
		return model.FundingRequest{}, err
	}
	return withLinkedInvoices(req, linked[req.ID()]), nil
}

// ListByCompany returns requests ordered by creation, optionally filtered by
// status.
func (r *RequestRepo) ListByCompany(ctx context.Context, companyID string, statuses []valueobject.RequestStatus) ([]model.FundingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM funding_requests WHERE company_id = $1`
	args := []any{companyID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = s.String()
		}
		query += ` AND status = ANY($2)`
		args = append(args, names)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query funding requests: %w", err)
	}
	var (
		out []model.FundingRequest
		ids []string
	)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, req)
		ids = append(ids, req.ID())
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funding requests: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	// A transaction connection cannot run a second query while rows are
	// open, so linked invoices load after the first result set is closed.
	linked, err := r.loadInvoiceIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, req := range out {
		out[i] = withLinkedInvoices(req, linked[req.ID()])
	}
	return out, nil
}

// Insert stores a new request and its linked invoices.
func (r *RequestRepo) Insert(ctx context.Context, req model.FundingRequest) error {
	query := `
		INSERT INTO funding_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	amount := req.RequestedAmount()
	_, err := r.q.Exec(ctx, query,
		req.ID(), req.CompanyID(), req.Status().String(),
		amount.Amount(), amount.Currency().Code(), req.InvoiceID(),
		req.DisbursementAccountID(), utcPtr(req.DisbursedAt()),
		req.Version(), req.CreatedAt().UTC(), req.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert funding request: %w", err)
	}
	for i, invoiceID := range req.LinkedInvoiceIDs() {
		_, err := r.q.Exec(ctx,
			`INSERT INTO funding_request_invoices (request_id, invoice_id, position) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			req.ID(), invoiceID, i,
		)
		if err != nil {
			return fmt.Errorf("link invoice %s: %w", invoiceID, err)
		}
	}
	return nil
}

// Update writes the mutable columns if the stored version is the previous
// one.
func (r *RequestRepo) Update(ctx context.Context, req model.FundingRequest) error {
	query := `
		UPDATE funding_requests SET
			status                  = $3,
			disbursement_account_id = $4,
			disbursed_at            = $5,
			version                 = $6,
			updated_at              = $7
		WHERE company_id = $1 AND id = $2 AND version = $8
	`
	tag, err := r.q.Exec(ctx, query,
		req.CompanyID(), req.ID(), req.Status().String(),
		req.DisbursementAccountID(), utcPtr(req.DisbursedAt()),
		req.Version(), req.UpdatedAt().UTC(), req.Version()-1,
	)
	if err != nil {
		return fmt.Errorf("update funding request: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM funding_requests WHERE company_id = $1 AND id = $2)`,
		req.CompanyID(), req.ID(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check funding request: %w", err)
	}
	if !exists {
		return apperr.RequestNotFound()
	}
	return apperr.StaleRequest()
}

func (r *RequestRepo) loadInvoiceIDs(ctx context.Context, requestIDs []string) (map[string][]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT request_id, invoice_id
		FROM funding_request_invoices
		WHERE request_id = ANY($1)
		ORDER BY request_id, position
	`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("query linked invoices: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string, len(requestIDs))
	for rows.Next() {
		var requestID, invoiceID string
		if err := rows.Scan(&requestID, &invoiceID); err != nil {
			return nil, fmt.Errorf("scan linked invoice: %w", err)
		}
		out[requestID] = append(out[requestID], invoiceID)
	}
	return out, rows.Err()
}

func scanRequest(s scannable) (model.FundingRequest, error) {
	var (
		id, companyID, statusStr string
		amount                   decimal.Decimal
		currencyCode, invoiceID  string
		accountID                string
		disbursedAt              *time.Time
		version                  int
		createdAt, updatedAt     time.Time
	)
	err := s.Scan(
		&id, &companyID, &statusStr, &amount, &currencyCode, &invoiceID,
		&accountID, &disbursedAt, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.FundingRequest{}, fmt.Errorf("scan funding request: %w", err)
	}

	status, err := valueobject.NewRequestStatus(statusStr)
	if err != nil {
		return model.FundingRequest{}, fmt.Errorf("parse request status: %w", err)
	}
	currency, err := money.NewCurrency(strings.TrimSpace(currencyCode))
	if err != nil {
		return model.FundingRequest{}, fmt.Errorf("parse request currency: %w", err)
	}

	return model.ReconstructFundingRequest(
		id, companyID, status, money.New(amount, currency), invoiceID, nil,
		accountID, disbursedAt, version, createdAt, updatedAt,
	), nil
}

func withLinkedInvoices(req model.FundingRequest, linked []string) model.FundingRequest {
	if len(linked) == 0 {
		return req
	}
	return model.ReconstructFundingRequest(
		req.ID(), req.CompanyID(), req.Status(), req.RequestedAmount(), req.InvoiceID(), linked,
		req.DisbursementAccountID(), req.DisbursedAt(), req.Version(),
		req.CreatedAt(), req.UpdatedAt(),
	)
}
