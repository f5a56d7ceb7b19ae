package valueobject

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// PaymentDirection
// ---------------------------------------------------------------------------

// PaymentDirection tells disbursements (outbound) from collections (inbound).
type PaymentDirection struct {
	value string
}

var (
	PaymentDirectionOutbound = PaymentDirection{value: "outbound"}
	PaymentDirectionInbound  = PaymentDirection{value: "inbound"}
)

// NewPaymentDirection parses a raw direction.
func NewPaymentDirection(s string) (PaymentDirection, error) {
	switch s {
	case PaymentDirectionOutbound.value:
		return PaymentDirectionOutbound, nil
	case PaymentDirectionInbound.value:
		return PaymentDirectionInbound, nil
	}
	return PaymentDirection{}, fmt.Errorf("invalid payment direction: %q", s)
}

func (d PaymentDirection) String() string                    { return d.value }
func (d PaymentDirection) Equal(other PaymentDirection) bool { return d.value == other.value }

// ---------------------------------------------------------------------------
// PaymentStatus
// ---------------------------------------------------------------------------

// PaymentStatus is the processing state of a payment.
type PaymentStatus struct {
	value string
}

var (
	PaymentStatusPending    = PaymentStatus{value: "pending"}
	PaymentStatusProcessing = PaymentStatus{value: "processing"}
	PaymentStatusPaid       = PaymentStatus{value: "paid"}
	PaymentStatusFailed     = PaymentStatus{value: "failed"}
)

// NewPaymentStatus parses a raw payment status.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	for _, v := range []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusPaid, PaymentStatusFailed} {
		if v.value == s {
			return v, nil
		}
	}
	return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
}

func (s PaymentStatus) String() string                 { return s.value }
func (s PaymentStatus) Equal(other PaymentStatus) bool { return s.value == other.value }
