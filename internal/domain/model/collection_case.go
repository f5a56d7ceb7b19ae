package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// CollectionCase entity
// ---------------------------------------------------------------------------

// CollectionCase tracks follow-up on a delinquent funded request. At most one
// case per request is not closed.
type CollectionCase struct {
	id            string
	companyID     string
	requestID     string
	status        valueobject.CollectionCaseStatus
	priority      valueobject.Priority
	promiseAmount *decimal.Decimal
	promiseDate   *time.Time
	nextActionAt  *time.Time
	closedAt      *time.Time
	resolution    string
	createdAt     time.Time
	updatedAt     time.Time
	events        []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructor
// ---------------------------------------------------------------------------

// NewCollectionCase creates a new case in open status.
func NewCollectionCase(companyID, requestID string, priority valueobject.Priority, reason string, now time.Time) (CollectionCase, error) {
	if requestID == "" {
		return CollectionCase{}, errors.New("request ID is required")
	}
	if companyID == "" {
		return CollectionCase{}, errors.New("company ID is required")
	}
	c := CollectionCase{
		id:        uuid.New().String(),
		companyID: companyID,
		requestID: requestID,
		status:    valueobject.CollectionCaseStatusOpen,
		priority:  priority,
		createdAt: now,
		updatedAt: now,
	}
	c.events = append(c.events, event.NewCollectionCaseOpened(c.id, companyID, requestID, priority.String(), reason, now))
	return c, nil
}

// ReconstructCollectionCase rebuilds from persistence.
func ReconstructCollectionCase(
	id, companyID, requestID string,
	status valueobject.CollectionCaseStatus,
	priority valueobject.Priority,
	promiseAmount *decimal.Decimal,
	promiseDate, nextActionAt, closedAt *time.Time,
	resolution string,
	createdAt, updatedAt time.Time,
) CollectionCase {
	return CollectionCase{
		id:            id,
		companyID:     companyID,
		requestID:     requestID,
		status:        status,
		priority:      priority,
		promiseAmount: promiseAmount,
		promiseDate:   promiseDate,
		nextActionAt:  nextActionAt,
		closedAt:      closedAt,
		resolution:    resolution,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Mutations (return new copies)
// ---------------------------------------------------------------------------

// ApplyAction updates the case for a newly appended action: the first action
// moves open to in_progress and a pending action's due date becomes the next
// action date.
func (c CollectionCase) ApplyAction(a CollectionAction, now time.Time) (CollectionCase, error) {
	if !c.IsOpen() {
		return c, apperr.CollectionCaseClosed()
	}
	next := c
	next.updatedAt = now
	if c.status.Equal(valueobject.CollectionCaseStatusOpen) {
		next.status = valueobject.CollectionCaseStatusInProgress
	}
	if a.IsPending() {
		due := *a.DueAt()
		next.nextActionAt = &due
	}
	next.events = append(copyEvents(c.events), event.NewCollectionActionRecorded(
		c.id, c.companyID, a.ID(), a.Kind().String(), a.DueAt(), now,
	))
	return next, nil
}

// UpdatePromise records a payment promise and moves the case to promise.
func (c CollectionCase) UpdatePromise(amount decimal.Decimal, date time.Time, actor Actor, now time.Time) (CollectionCase, error) {
	if !c.IsOpen() {
		return c, apperr.CollectionCaseClosed()
	}
	if !amount.IsPositive() {
		return c, apperr.InvalidField("promise_amount", "must be greater than zero")
	}
	if date.IsZero() {
		return c, apperr.InvalidField("promise_date", "is required")
	}
	next := c
	next.status = valueobject.CollectionCaseStatusPromise
	next.promiseAmount = &amount
	next.promiseDate = &date
	next.updatedAt = now
	next.events = append(copyEvents(c.events), event.NewCollectionPromiseUpdated(
		c.id, c.companyID, c.requestID, amount, date, actor.UserID, now,
	))
	return next, nil
}

// Close resolves the case.
func (c CollectionCase) Close(resolution string, now time.Time) (CollectionCase, error) {
	if !c.IsOpen() {
		return c, apperr.CollectionCaseClosed()
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return c, apperr.InvalidField("resolution", "is required")
	}
	next := c
	next.status = valueobject.CollectionCaseStatusClosed
	next.resolution = resolution
	next.closedAt = &now
	next.updatedAt = now
	next.events = append(copyEvents(c.events), event.NewCollectionCaseClosed(c.id, c.companyID, c.requestID, resolution, now))
	return next, nil
}

// IsOpen reports whether the case is anything but closed.
func (c CollectionCase) IsOpen() bool {
	return !c.status.Equal(valueobject.CollectionCaseStatusClosed)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c CollectionCase) ID() string                               { return c.id }
func (c CollectionCase) CompanyID() string                        { return c.companyID }
func (c CollectionCase) RequestID() string                        { return c.requestID }
func (c CollectionCase) Status() valueobject.CollectionCaseStatus { return c.status }
func (c CollectionCase) Priority() valueobject.Priority           { return c.priority }
func (c CollectionCase) PromiseAmount() *decimal.Decimal          { return c.promiseAmount }
func (c CollectionCase) PromiseDate() *time.Time                  { return c.promiseDate }
func (c CollectionCase) NextActionAt() *time.Time                 { return c.nextActionAt }
func (c CollectionCase) ClosedAt() *time.Time                     { return c.closedAt }
func (c CollectionCase) Resolution() string                       { return c.resolution }
func (c CollectionCase) CreatedAt() time.Time                     { return c.createdAt }
func (c CollectionCase) UpdatedAt() time.Time                     { return c.updatedAt }
func (c CollectionCase) DomainEvents() []event.DomainEvent        { return c.events }

// ClearEvents returns a copy with an empty event list.
func (c CollectionCase) ClearEvents() CollectionCase {
	next := c
	next.events = nil
	return next
}

// ---------------------------------------------------------------------------
// CollectionAction entity (append-only)
// ---------------------------------------------------------------------------

// CollectionAction is one logged step of collection work.
type CollectionAction struct {
	id          string
	caseID      string
	companyID   string
	kind        valueobject.ActionKind
	notes       string
	dueAt       *time.Time
	completedAt *time.Time
	createdBy   string
	createdAt   time.Time
}

// NewCollectionAction creates an action under caseID.
func NewCollectionAction(
	caseID, companyID string,
	kind valueobject.ActionKind,
	notes string,
	dueAt, completedAt *time.Time,
	createdBy Actor,
	now time.Time,
) (CollectionAction, error) {
	if caseID == "" {
		return CollectionAction{}, errors.New("case ID is required")
	}
	return CollectionAction{
		id:          uuid.New().String(),
		caseID:      caseID,
		companyID:   companyID,
		kind:        kind,
		notes:       strings.TrimSpace(notes),
		dueAt:       dueAt,
		completedAt: completedAt,
		createdBy:   createdBy.UserID,
		createdAt:   now,
	}, nil
}

// ReconstructCollectionAction rebuilds from persistence.
func ReconstructCollectionAction(
	id, caseID, companyID string,
	kind valueobject.ActionKind,
	notes string,
	dueAt, completedAt *time.Time,
	createdBy string,
	createdAt time.Time,
) CollectionAction {
	return CollectionAction{
		id:          id,
		caseID:      caseID,
		companyID:   companyID,
		kind:        kind,
		notes:       notes,
		dueAt:       dueAt,
		completedAt: completedAt,
		createdBy:   createdBy,
		createdAt:   createdAt,
	}
}

// IsPending reports whether the action is scheduled and not yet done.
func (a CollectionAction) IsPending() bool {
	return a.dueAt != nil && a.completedAt == nil
}

func (a CollectionAction) ID() string                   { return a.id }
func (a CollectionAction) CaseID() string               { return a.caseID }
func (a CollectionAction) CompanyID() string            { return a.companyID }
func (a CollectionAction) Kind() valueobject.ActionKind { return a.kind }
func (a CollectionAction) Notes() string                { return a.notes }
func (a CollectionAction) DueAt() *time.Time            { return a.dueAt }
func (a CollectionAction) CompletedAt() *time.Time      { return a.completedAt }
func (a CollectionAction) CreatedBy() string            { return a.createdBy }
func (a CollectionAction) CreatedAt() time.Time         { return a.createdAt }
