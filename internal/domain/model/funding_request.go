package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/money"
)

// ---------------------------------------------------------------------------
// FundingRequest aggregate root
// ---------------------------------------------------------------------------

// FundingRequest is one factoring operation of a company. It is immutable;
// every mutation returns a new copy with the version advanced by one, and the
// repository persists it only if the stored version is the previous one.
type FundingRequest struct {
	id                    string
	companyID             string
	status                valueobject.RequestStatus
	requestedAmount       money.Money
	invoiceID             string
	linkedInvoiceIDs      []string
	disbursementAccountID string
	disbursedAt           *time.Time
	version               int
	createdAt             time.Time
	updatedAt             time.Time
	domainEvents          []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewFundingRequest creates a request in review. Intake itself happens
// outside this module; the constructor backs seeding and tests.
func NewFundingRequest(
	companyID string,
	amount money.Money,
	invoiceID string,
	linkedInvoiceIDs []string,
	now time.Time,
) (FundingRequest, error) {
	if companyID == "" {
		return FundingRequest{}, errors.New("company ID is required")
	}
	if !amount.IsPositive() {
		return FundingRequest{}, errors.New("requested amount must be positive")
	}
	if amount.Currency().IsZero() {
		return FundingRequest{}, errors.New("currency is required")
	}

	return FundingRequest{
		id:               uuid.New().String(),
		companyID:        companyID,
		status:           valueobject.RequestStatusReview,
		requestedAmount:  amount,
		invoiceID:        invoiceID,
		linkedInvoiceIDs: copyStrings(linkedInvoiceIDs),
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructFundingRequest rebuilds a FundingRequest from persistence.
func ReconstructFundingRequest(
	id, companyID string,
	status valueobject.RequestStatus,
	requestedAmount money.Money,
	invoiceID string,
	linkedInvoiceIDs []string,
	disbursementAccountID string,
	disbursedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) FundingRequest {
	return FundingRequest{
		id:                    id,
		companyID:             companyID,
		status:                status,
		requestedAmount:       requestedAmount,
		invoiceID:             invoiceID,
		linkedInvoiceIDs:      linkedInvoiceIDs,
		disbursementAccountID: disbursementAccountID,
		disbursedAt:           disbursedAt,
		version:               version,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// TransitionTo moves the request to target if the lifecycle graph allows it
// and records RequestStatusChanged. Illegal targets leave r untouched.
func (r FundingRequest) TransitionTo(target valueobject.RequestStatus, actor Actor, now time.Time) (FundingRequest, error) {
	if !r.status.CanTransitionTo(target) {
		return r, apperr.InvalidTransition(r.status.String(), target.String())
	}
	next := r.bump(now)
	next.status = target
	next.domainEvents = append(next.domainEvents, event.NewRequestStatusChanged(
		r.id, r.companyID, r.status.String(), target.String(), actor.UserID, next.version, now,
	))
	return next, nil
}

// MarkFunded records the disbursement. From accepted or signed it transitions
// to funded; on an already funded request it only refreshes the destination
// account, keeping the original disbursed_at and emitting no status event.
func (r FundingRequest) MarkFunded(bankAccountID string, actor Actor, now time.Time) (FundingRequest, error) {
	if bankAccountID == "" {
		return r, errors.New("bank account ID is required")
	}
	if r.status.Equal(valueobject.RequestStatusFunded) {
		next := r.bump(now)
		next.disbursementAccountID = bankAccountID
		if next.disbursedAt == nil {
			next.disbursedAt = &now
		}
		return next, nil
	}

	next, err := r.TransitionTo(valueobject.RequestStatusFunded, actor, now)
	if err != nil {
		return r, err
	}
	next.disbursementAccountID = bankAccountID
	next.disbursedAt = &now
	return next, nil
}

// ReadyForDisbursement reports whether Disburse may run, including the
// idempotent retry on a funded request.
func (r FundingRequest) ReadyForDisbursement() bool {
	return r.status.Equal(valueobject.RequestStatusAccepted) ||
		r.status.Equal(valueobject.RequestStatusSigned) ||
		r.status.Equal(valueobject.RequestStatusFunded)
}

func (r FundingRequest) bump(now time.Time) FundingRequest {
	next := r
	next.version = r.version + 1
	next.updatedAt = now
	next.domainEvents = copyEvents(r.domainEvents)
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (r FundingRequest) ID() string                        { return r.id }
func (r FundingRequest) CompanyID() string                 { return r.companyID }
func (r FundingRequest) Status() valueobject.RequestStatus { return r.status }
func (r FundingRequest) RequestedAmount() money.Money      { return r.requestedAmount }
func (r FundingRequest) InvoiceID() string                 { return r.invoiceID }
func (r FundingRequest) DisbursementAccountID() string     { return r.disbursementAccountID }
func (r FundingRequest) DisbursedAt() *time.Time           { return r.disbursedAt }
func (r FundingRequest) Version() int                      { return r.version }
func (r FundingRequest) CreatedAt() time.Time              { return r.createdAt }
func (r FundingRequest) UpdatedAt() time.Time              { return r.updatedAt }
func (r FundingRequest) DomainEvents() []event.DomainEvent { return r.domainEvents }

// LinkedInvoiceIDs returns a defensive copy of the join-table links.
func (r FundingRequest) LinkedInvoiceIDs() []string { return copyStrings(r.linkedInvoiceIDs) }

// InvoiceIDs returns the direct invoice followed by the linked ones, without
// duplicates.
func (r FundingRequest) InvoiceIDs() []string {
	seen := make(map[string]struct{}, len(r.linkedInvoiceIDs)+1)
	var out []string
	for _, id := range append([]string{r.invoiceID}, r.linkedInvoiceIDs...) {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ClearEvents returns a copy with an empty event list.
func (r FundingRequest) ClearEvents() FundingRequest {
	next := r
	next.domainEvents = nil
	return next
}
