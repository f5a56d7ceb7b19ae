package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Event type names as they appear on the broker.
const (
	TypeRequestStatusChanged     = "factoring.request.status_changed"
	TypeOfferCreated             = "factoring.offer.created"
	TypeOfferAccepted            = "factoring.offer.accepted"
	TypeOfferCancelled           = "factoring.offer.cancelled"
	TypeDisbursementRequested    = "factoring.payment.disbursement_requested"
	TypeCollectionCaseOpened     = "factoring.collection.case_opened"
	TypeCollectionActionRecorded = "factoring.collection.action_recorded"
	TypeCollectionPromiseUpdated = "factoring.collection.promise_updated"
	TypeCollectionCaseClosed     = "factoring.collection.case_closed"
	TypeParameterOverrideChanged = "factoring.parameters.override_changed"
	TypeGlobalSettingsUpdated    = "factoring.parameters.settings_updated"
)

// ---------------------------------------------------------------------------
// Funding request events
// ---------------------------------------------------------------------------

// RequestStatusChanged is raised on every committed lifecycle transition.
type RequestStatusChanged struct {
	events.BaseEvent
	From      string `json:"from_status"`
	To        string `json:"to_status"`
	ActorID   string `json:"actor_id"`
	EntityID  string `json:"entity_id"`
	CompanyID string `json:"company_id"`
	Version   int    `json:"version"`
}

func NewRequestStatusChanged(
	requestID, companyID, from, to, actorID string, version int, now time.Time,
) RequestStatusChanged {
	return RequestStatusChanged{
		BaseEvent: events.NewBaseEvent(TypeRequestStatusChanged, requestID, "FundingRequest", companyID, now),
		From:      from,
		To:        to,
		ActorID:   actorID,
		EntityID:  requestID,
		CompanyID: companyID,
		Version:   version,
	}
}

// ---------------------------------------------------------------------------
// Offer events
// ---------------------------------------------------------------------------

// OfferCreated is raised when an offer is inserted, manually or by the
// auto-approval gate.
type OfferCreated struct {
	events.BaseEvent
	RequestID  string          `json:"request_id"`
	Status     string          `json:"status"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	AdvancePct decimal.Decimal `json:"advance_pct"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	ValidUntil time.Time       `json:"valid_until"`
	CreatedBy  string          `json:"created_by"`
}

func NewOfferCreated(
	offerID, companyID, requestID, status string,
	annualRate, advancePct, netAmount decimal.Decimal,
	validUntil time.Time, createdBy string, now time.Time,
) OfferCreated {
	return OfferCreated{
		BaseEvent:  events.NewBaseEvent(TypeOfferCreated, offerID, "Offer", companyID, now),
		RequestID:  requestID,
		Status:     status,
		AnnualRate: annualRate,
		AdvancePct: advancePct,
		NetAmount:  netAmount,
		ValidUntil: validUntil,
		CreatedBy:  createdBy,
	}
}

// OfferAccepted is raised when a client accepts an offer.
type OfferAccepted struct {
	events.BaseEvent
	RequestID  string `json:"request_id"`
	AcceptedBy string `json:"accepted_by"`
}

func NewOfferAccepted(offerID, companyID, requestID, acceptedBy string, now time.Time) OfferAccepted {
	return OfferAccepted{
		BaseEvent:  events.NewBaseEvent(TypeOfferAccepted, offerID, "Offer", companyID, now),
		RequestID:  requestID,
		AcceptedBy: acceptedBy,
	}
}

// OfferCancelled is raised when an offer is rejected, superseded or the
// request is cancelled.
type OfferCancelled struct {
	events.BaseEvent
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}

func NewOfferCancelled(offerID, companyID, requestID, reason string, now time.Time) OfferCancelled {
	return OfferCancelled{
		BaseEvent: events.NewBaseEvent(TypeOfferCancelled, offerID, "Offer", companyID, now),
		RequestID: requestID,
		Reason:    reason,
	}
}

// ---------------------------------------------------------------------------
// Payment events
// ---------------------------------------------------------------------------

// DisbursementRequested notifies staff that an outbound payment is pending.
// It is keyed by payment id.
type DisbursementRequested struct {
	events.BaseEvent
	PaymentID     string          `json:"payment_id"`
	RequestID     string          `json:"request_id"`
	BankAccountID string          `json:"bank_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Retry         bool            `json:"retry"`
}

func NewDisbursementRequested(
	paymentID, companyID, requestID, bankAccountID string,
	amount decimal.Decimal, currency string, retry bool, now time.Time,
) DisbursementRequested {
	return DisbursementRequested{
		BaseEvent:     events.NewBaseEvent(TypeDisbursementRequested, paymentID, "Payment", companyID, now),
		PaymentID:     paymentID,
		RequestID:     requestID,
		BankAccountID: bankAccountID,
		Amount:        amount,
		Currency:      currency,
		Retry:         retry,
	}
}

// ---------------------------------------------------------------------------
// Collection events
// ---------------------------------------------------------------------------

// CollectionCaseOpened is raised when a delinquent request gets a case.
type CollectionCaseOpened struct {
	events.BaseEvent
	RequestID string `json:"request_id"`
	Priority  string `json:"priority"`
	Reason    string `json:"reason,omitempty"`
}

func NewCollectionCaseOpened(caseID, companyID, requestID, priority, reason string, now time.Time) CollectionCaseOpened {
	return CollectionCaseOpened{
		BaseEvent: events.NewBaseEvent(TypeCollectionCaseOpened, caseID, "CollectionCase", companyID, now),
		RequestID: requestID,
		Priority:  priority,
		Reason:    reason,
	}
}

// CollectionActionRecorded is raised for every appended action.
type CollectionActionRecorded struct {
	events.BaseEvent
	ActionID string     `json:"action_id"`
	Kind     string     `json:"kind"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

func NewCollectionActionRecorded(caseID, companyID, actionID, kind string, dueAt *time.Time, now time.Time) CollectionActionRecorded {
	return CollectionActionRecorded{
		BaseEvent: events.NewBaseEvent(TypeCollectionActionRecorded, caseID, "CollectionCase", companyID, now),
		ActionID:  actionID,
		Kind:      kind,
		DueAt:     dueAt,
	}
}

// CollectionPromiseUpdated carries the new promised figures.
type CollectionPromiseUpdated struct {
	events.BaseEvent
	RequestID     string          `json:"request_id"`
	PromiseAmount decimal.Decimal `json:"promise_amount"`
	PromiseDate   time.Time       `json:"promise_date"`
	UpdatedBy     string          `json:"updated_by"`
}

func NewCollectionPromiseUpdated(
	caseID, companyID, requestID string,
	amount decimal.Decimal, date time.Time, updatedBy string, now time.Time,
) CollectionPromiseUpdated {
	return CollectionPromiseUpdated{
		BaseEvent:     events.NewBaseEvent(TypeCollectionPromiseUpdated, caseID, "CollectionCase", companyID, now),
		RequestID:     requestID,
		PromiseAmount: amount,
		PromiseDate:   date,
		UpdatedBy:     updatedBy,
	}
}

// CollectionCaseClosed is raised when a case is resolved.
type CollectionCaseClosed struct {
	events.BaseEvent
	RequestID  string `json:"request_id"`
	Resolution string `json:"resolution"`
}

func NewCollectionCaseClosed(caseID, companyID, requestID, resolution string, now time.Time) CollectionCaseClosed {
	return CollectionCaseClosed{
		BaseEvent:  events.NewBaseEvent(TypeCollectionCaseClosed, caseID, "CollectionCase", companyID, now),
		RequestID:  requestID,
		Resolution: resolution,
	}
}

// ---------------------------------------------------------------------------
// Parameter events
// ---------------------------------------------------------------------------

// ParameterOverrideChanged is raised when staff upsert or reset a company's
// overrides.
type ParameterOverrideChanged struct {
	events.BaseEvent
	Reset     bool   `json:"reset"`
	UpdatedBy string `json:"updated_by"`
}

func NewParameterOverrideChanged(companyID string, reset bool, updatedBy string, now time.Time) ParameterOverrideChanged {
	return ParameterOverrideChanged{
		BaseEvent: events.NewBaseEvent(TypeParameterOverrideChanged, companyID, "Company", companyID, now),
		Reset:     reset,
		UpdatedBy: updatedBy,
	}
}

// GlobalSettingsUpdated is raised when the settings singleton is replaced.
type GlobalSettingsUpdated struct {
	events.BaseEvent
	UpdatedBy string `json:"updated_by"`
}

func NewGlobalSettingsUpdated(updatedBy string, now time.Time) GlobalSettingsUpdated {
	return GlobalSettingsUpdated{
		BaseEvent: events.NewBaseEvent(TypeGlobalSettingsUpdated, "global", "GlobalSettings", "", now),
		UpdatedBy: updatedBy,
	}
}
