package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/money"
)

// DisbursementNote is the default note stored on a new outbound payment.
func DisbursementNote(requestID string) string {
	return fmt.Sprintf("Desembolso solicitud %s", requestID)
}

// Payment is one transfer tied to a funding request. Only one outbound
// payment may exist per (company, request).
type Payment struct {
	id            string
	companyID     string
	requestID     string
	direction     valueobject.PaymentDirection
	bankAccountID string
	amount        money.Money
	status        valueobject.PaymentStatus
	note          string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewOutboundPayment creates a pending disbursement.
func NewOutboundPayment(companyID, requestID, bankAccountID string, amount money.Money, now time.Time) (Payment, error) {
	if companyID == "" || requestID == "" {
		return Payment{}, errors.New("company ID and request ID are required")
	}
	if bankAccountID == "" {
		return Payment{}, errors.New("bank account ID is required")
	}
	if !amount.IsPositive() {
		return Payment{}, errors.New("payment amount must be positive")
	}
	return Payment{
		id:            uuid.New().String(),
		companyID:     companyID,
		requestID:     requestID,
		direction:     valueobject.PaymentDirectionOutbound,
		bankAccountID: bankAccountID,
		amount:        amount,
		status:        valueobject.PaymentStatusPending,
		note:          DisbursementNote(requestID),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(
	id, companyID, requestID string,
	direction valueobject.PaymentDirection,
	bankAccountID string,
	amount money.Money,
	status valueobject.PaymentStatus,
	note string,
	createdAt, updatedAt time.Time,
) Payment {
	return Payment{
		id:            id,
		companyID:     companyID,
		requestID:     requestID,
		direction:     direction,
		bankAccountID: bankAccountID,
		amount:        amount,
		status:        status,
		note:          note,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Refresh re-targets an existing payment on a disbursement retry. A pending
// payment stays pending and a failed one goes back to pending; once the
// payment is processing or paid it can no longer be changed. The note is kept.
func (p Payment) Refresh(bankAccountID string, amount money.Money, now time.Time) (Payment, error) {
	if p.Settling() {
		return Payment{}, apperr.PaymentAlreadyProcessed()
	}
	next := p
	next.bankAccountID = bankAccountID
	next.amount = amount
	next.status = valueobject.PaymentStatusPending
	next.updatedAt = now
	return next, nil
}

// Settling reports whether the transfer has left the engine's hands.
func (p Payment) Settling() bool {
	return p.status.Equal(valueobject.PaymentStatusProcessing) || p.status.Equal(valueobject.PaymentStatusPaid)
}

func (p Payment) ID() string                              { return p.id }
func (p Payment) CompanyID() string                       { return p.companyID }
func (p Payment) RequestID() string                       { return p.requestID }
func (p Payment) Direction() valueobject.PaymentDirection { return p.direction }
func (p Payment) BankAccountID() string                   { return p.bankAccountID }
func (p Payment) Amount() money.Money                     { return p.amount }
func (p Payment) Status() valueobject.PaymentStatus       { return p.status }
func (p Payment) Note() string                            { return p.note }
func (p Payment) CreatedAt() time.Time                    { return p.createdAt }
func (p Payment) UpdatedAt() time.Time                    { return p.updatedAt }
