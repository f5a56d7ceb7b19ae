package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// Fee names used in OfferTerms.Fees.
const (
	FeeProcessing = "processing"
	FeeWire       = "wire"
)

// OfferTerms is the priced output of the offer calculator.
type OfferTerms struct {
	AnnualRate    decimal.Decimal            // fraction, 0.30 = 30% a year
	AdvancePct    decimal.Decimal            // 0–100
	Fees          map[string]decimal.Decimal // non-negative whole amounts
	AdvanceAmount decimal.Decimal
	NetAmount     decimal.Decimal // whole amount, never negative
	ValidUntil    time.Time
}

// TotalFees sums every fee.
func (t OfferTerms) TotalFees() decimal.Decimal {
	total := decimal.Zero
	for _, f := range t.Fees {
		total = total.Add(f)
	}
	return total
}

// ---------------------------------------------------------------------------
// Offer entity
// ---------------------------------------------------------------------------

// Offer is a priced proposal for a funding request. At most one offer per
// request is in the offered status; older offers are kept as history.
type Offer struct {
	id         string
	companyID  string
	requestID  string
	terms      OfferTerms
	status     valueobject.OfferStatus
	createdBy  string
	acceptedBy string
	acceptedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	events     []event.DomainEvent
}

// NewOffer creates an offer in the offered status.
func NewOffer(companyID, requestID string, terms OfferTerms, createdBy Actor, now time.Time) (Offer, error) {
	if companyID == "" || requestID == "" {
		return Offer{}, errors.New("company ID and request ID are required")
	}
	o := Offer{
		id:        uuid.New().String(),
		companyID: companyID,
		requestID: requestID,
		terms:     cloneTerms(terms),
		status:    valueobject.OfferStatusOffered,
		createdBy: createdBy.UserID,
		createdAt: now,
		updatedAt: now,
	}
	o.events = append(o.events, o.createdEvent(now))
	return o, nil
}

// NewAcceptedOffer creates an offer that is accepted on creation, as done by
// the auto-approval gate.
func NewAcceptedOffer(companyID, requestID string, terms OfferTerms, actor Actor, now time.Time) (Offer, error) {
	o, err := NewOffer(companyID, requestID, terms, actor, now)
	if err != nil {
		return Offer{}, err
	}
	o.status = valueobject.OfferStatusAccepted
	o.acceptedBy = actor.UserID
	o.acceptedAt = &now
	o.events = []event.DomainEvent{o.createdEvent(now)}
	return o, nil
}

// ReconstructOffer rebuilds an Offer from persistence.
func ReconstructOffer(
	id, companyID, requestID string,
	terms OfferTerms,
	status valueobject.OfferStatus,
	createdBy, acceptedBy string,
	acceptedAt *time.Time,
	createdAt, updatedAt time.Time,
) Offer {
	return Offer{
		id:         id,
		companyID:  companyID,
		requestID:  requestID,
		terms:      terms,
		status:     status,
		createdBy:  createdBy,
		acceptedBy: acceptedBy,
		acceptedAt: acceptedAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Mutations (return new copies)
// ---------------------------------------------------------------------------

// Accept marks an offered, unexpired offer as accepted.
func (o Offer) Accept(actor Actor, now time.Time) (Offer, error) {
	if !o.status.Equal(valueobject.OfferStatusOffered) {
		return o, apperr.OfferNotActive()
	}
	if o.IsExpired(now) {
		return o, apperr.OfferExpired()
	}
	next := o
	next.status = valueobject.OfferStatusAccepted
	next.acceptedBy = actor.UserID
	next.acceptedAt = &now
	next.updatedAt = now
	next.events = append(copyEvents(o.events), event.NewOfferAccepted(o.id, o.companyID, o.requestID, actor.UserID, now))
	return next, nil
}

// Cancel marks an offered offer as cancelled.
func (o Offer) Cancel(reason string, now time.Time) (Offer, error) {
	if !o.status.Equal(valueobject.OfferStatusOffered) {
		return o, apperr.OfferNotActive()
	}
	next := o
	next.status = valueobject.OfferStatusCancelled
	next.updatedAt = now
	next.events = append(copyEvents(o.events), event.NewOfferCancelled(o.id, o.companyID, o.requestID, reason, now))
	return next, nil
}

// IsExpired reports whether valid_until has passed. Expiry is only checked by
// readers; nothing flips the status on a timer.
func (o Offer) IsExpired(now time.Time) bool {
	return now.After(o.terms.ValidUntil)
}

func (o Offer) createdEvent(now time.Time) event.DomainEvent {
	return event.NewOfferCreated(
		o.id, o.companyID, o.requestID, o.status.String(),
		o.terms.AnnualRate, o.terms.AdvancePct, o.terms.NetAmount,
		o.terms.ValidUntil, o.createdBy, now,
	)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (o Offer) ID() string                        { return o.id }
func (o Offer) CompanyID() string                 { return o.companyID }
func (o Offer) RequestID() string                 { return o.requestID }
func (o Offer) Terms() OfferTerms                 { return cloneTerms(o.terms) }
func (o Offer) Status() valueobject.OfferStatus   { return o.status }
func (o Offer) CreatedBy() string                 { return o.createdBy }
func (o Offer) AcceptedBy() string                { return o.acceptedBy }
func (o Offer) AcceptedAt() *time.Time            { return o.acceptedAt }
func (o Offer) CreatedAt() time.Time              { return o.createdAt }
func (o Offer) UpdatedAt() time.Time              { return o.updatedAt }
func (o Offer) DomainEvents() []event.DomainEvent { return o.events }

// ClearEvents returns a copy with an empty event list.
func (o Offer) ClearEvents() Offer {
	next := o
	next.events = nil
	return next
}

func cloneTerms(t OfferTerms) OfferTerms {
	out := t
	if t.Fees != nil {
		out.Fees = make(map[string]decimal.Decimal, len(t.Fees))
		for k, v := range t.Fees {
			out.Fees[k] = v
		}
	}
	return out
}
