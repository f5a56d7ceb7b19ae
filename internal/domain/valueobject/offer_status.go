package valueobject

import (
	"fmt"
)

// OfferStatus is the lifecycle stage of an offer.
type OfferStatus struct {
	value string
}

var (
	OfferStatusOffered   = OfferStatus{value: "offered"}
	OfferStatusAccepted  = OfferStatus{value: "accepted"}
	OfferStatusCancelled = OfferStatus{value: "cancelled"}
)

// NewOfferStatus parses a raw offer status.
func NewOfferStatus(s string) (OfferStatus, error) {
	for _, v := range []OfferStatus{OfferStatusOffered, OfferStatusAccepted, OfferStatusCancelled} {
		if v.value == s {
			return v, nil
		}
	}
	return OfferStatus{}, fmt.Errorf("invalid offer status: %q", s)
}

func (s OfferStatus) String() string               { return s.value }
func (s OfferStatus) IsZero() bool                 { return s.value == "" }
func (s OfferStatus) Equal(other OfferStatus) bool { return s.value == other.value }

// OfferMode selects how offer terms are computed.
type OfferMode struct {
	value string
}

var (
	OfferModeStandard = OfferMode{value: "standard"}
	OfferModeCustom   = OfferMode{value: "custom"}
)

// NewOfferMode parses a raw mode; empty means standard.
func NewOfferMode(s string) (OfferMode, error) {
	switch s {
	case "", OfferModeStandard.value:
		return OfferModeStandard, nil
	case OfferModeCustom.value:
		return OfferModeCustom, nil
	}
	return OfferMode{}, fmt.Errorf("invalid offer mode: %q", s)
}

func (m OfferMode) String() string             { return m.value }
func (m OfferMode) Equal(other OfferMode) bool { return m.value == other.value }
