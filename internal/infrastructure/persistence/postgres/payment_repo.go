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

// uniquePaymentIndex backs the one-payment-per-direction rule.
const uniquePaymentIndex = "uq_payments_request_direction"

const paymentColumns = `id, company_id, request_id, direction, bank_account_id, amount, currency,
	status, note, created_at, updated_at`

// PaymentRepo implements port.PaymentRepository.
type PaymentRepo struct {
	q pgpkg.Querier
}

// FindOutbound returns the disbursement of a request, if any.
func (r *PaymentRepo) FindOutbound(ctx context.Context, companyID, requestID string) (model.Payment, bool, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE company_id = $1 AND request_id = $2 AND direction = $3`
	p, err := scanPayment(r.q.QueryRow(ctx, query,
		companyID, requestID, valueobject.PaymentDirectionOutbound.String(),
	))
	if isNoRows(err) {
		return model.Payment{}, false, nil
	}
	if err != nil {
		return model.Payment{}, false, err
	}
	return p, true, nil
}

// Insert stores a new payment. The unique index turns a concurrent second
// disbursement into apperr.DuplicatePayment.
func (r *PaymentRepo) Insert(ctx context.Context, p model.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	amount := p.Amount()
	_, err := r.q.Exec(ctx, query,
		p.ID(), p.CompanyID(), p.RequestID(), p.Direction().String(), p.BankAccountID(),
		amount.Amount(), amount.Currency().Code(), p.Status().String(), p.Note(),
		p.CreatedAt().UTC(), p.UpdatedAt().UTC(),
	)
	if pgpkg.IsUniqueViolation(err, uniquePaymentIndex) {
		return apperr.DuplicatePayment(err)
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Update writes the account, amount and status of an existing payment.
func (r *PaymentRepo) Update(ctx context.Context, p model.Payment) error {
	query := `
		UPDATE payments SET
			bank_account_id = $3,
			amount          = $4,
			currency        = $5,
			status          = $6,
			updated_at      = $7
		WHERE company_id = $1 AND id = $2
	`
	amount := p.Amount()
	tag, err := r.q.Exec(ctx, query,
		p.CompanyID(), p.ID(), p.BankAccountID(),
		amount.Amount(), amount.Currency().Code(), p.Status().String(), p.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Internal(fmt.Errorf("payment %s not found", p.ID()))
	}
	return nil
}

func scanPayment(s scannable) (model.Payment, error) {
	var (
		id, companyID, requestID string
		directionStr, accountID  string
		amount                   decimal.Decimal
		currencyCode, statusStr  string
		note                     string
		createdAt, updatedAt     time.Time
	)
	err := s.Scan(
		&id, &companyID, &requestID, &directionStr, &accountID, &amount, &currencyCode,
		&statusStr, &note, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Payment{}, fmt.Errorf("scan payment: %w", err)
	}

	direction, err := valueobject.NewPaymentDirection(directionStr)
	if err != nil {
		return model.Payment{}, fmt.Errorf("parse payment direction: %w", err)
	}
	status, err := valueobject.NewPaymentStatus(statusStr)
	if err != nil {
		return model.Payment{}, fmt.Errorf("parse payment status: %w", err)
	}
	currency, err := money.NewCurrency(strings.TrimSpace(currencyCode))
	if err != nil {
		return model.Payment{}, fmt.Errorf("parse payment currency: %w", err)
	}

	return model.ReconstructPayment(
		id, companyID, requestID, direction, accountID,
		money.New(amount, currency), status, note, createdAt, updatedAt,
	), nil
}
