package valueobject

import (
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
)

// ---------------------------------------------------------------------------
// RequestStatus – immutable value object
// ---------------------------------------------------------------------------

// RequestStatus is the lifecycle stage of a funding request.
type RequestStatus struct {
	value string
}

const (
	requestStatusReview    = "review"
	requestStatusOffered   = "offered"
	requestStatusAccepted  = "accepted"
	requestStatusSigned    = "signed"
	requestStatusFunded    = "funded"
	requestStatusCancelled = "cancelled"
	requestStatusRejected  = "rejected"
	requestStatusArchived  = "archived"
)

var (
	RequestStatusReview    = RequestStatus{value: requestStatusReview}
	RequestStatusOffered   = RequestStatus{value: requestStatusOffered}
	RequestStatusAccepted  = RequestStatus{value: requestStatusAccepted}
	RequestStatusSigned    = RequestStatus{value: requestStatusSigned}
	RequestStatusFunded    = RequestStatus{value: requestStatusFunded}
	RequestStatusCancelled = RequestStatus{value: requestStatusCancelled}
	RequestStatusRejected  = RequestStatus{value: requestStatusRejected}
	RequestStatusArchived  = RequestStatus{value: requestStatusArchived}
)

var validRequestStatuses = map[string]RequestStatus{
	requestStatusReview:    RequestStatusReview,
	requestStatusOffered:   RequestStatusOffered,
	requestStatusAccepted:  RequestStatusAccepted,
	requestStatusSigned:    RequestStatusSigned,
	requestStatusFunded:    RequestStatusFunded,
	requestStatusCancelled: RequestStatusCancelled,
	requestStatusRejected:  RequestStatusRejected,
	requestStatusArchived:  RequestStatusArchived,
}

// requestTransitions is the legal transition graph. offered -> review is the
// reopen path taken when the client rejects an offer.
var requestTransitions = map[string][]string{
	requestStatusReview:    {requestStatusOffered, requestStatusAccepted, requestStatusCancelled, requestStatusRejected},
	requestStatusOffered:   {requestStatusAccepted, requestStatusReview, requestStatusCancelled, requestStatusRejected},
	requestStatusAccepted:  {requestStatusSigned, requestStatusFunded},
	requestStatusSigned:    {requestStatusFunded},
	requestStatusFunded:    {requestStatusArchived},
	requestStatusCancelled: {requestStatusArchived},
	requestStatusRejected:  {requestStatusArchived},
}

// activeRequestStatuses count towards a company's exposure.
var activeRequestStatuses = []RequestStatus{
	RequestStatusReview,
	RequestStatusOffered,
	RequestStatusAccepted,
	RequestStatusSigned,
	RequestStatusFunded,
}

// NewRequestStatus parses a raw status. Unknown values are validation errors.
func NewRequestStatus(s string) (RequestStatus, error) {
	v, ok := validRequestStatuses[s]
	if !ok {
		return RequestStatus{}, apperr.InvalidStatus(s)
	}
	return v, nil
}

// ActiveRequestStatuses returns the statuses included in exposure accounting.
func ActiveRequestStatuses() []RequestStatus {
	out := make([]RequestStatus, len(activeRequestStatuses))
	copy(out, activeRequestStatuses)
	return out
}

// CanTransitionTo reports whether target is directly reachable from s.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	for _, next := range requestTransitions[s.value] {
		if next == target.value {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts towards exposure.
func (s RequestStatus) IsActive() bool {
	for _, a := range activeRequestStatuses {
		if a.value == s.value {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s RequestStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s RequestStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s RequestStatus) Equal(other RequestStatus) bool { return s.value == other.value }
