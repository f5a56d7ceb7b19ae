package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// The entities in this file are owned by other parts of the platform and are
// only read by the lifecycle engine.

// Company is a tenant.
type Company struct {
	ID   string
	Name string
	// Type is free text entered at onboarding; it drives the segment.
	Type string
}

// Segment derives the customer segment from the company type.
func (c Company) Segment() valueobject.Segment {
	return valueobject.SegmentFromCompanyType(c.Type)
}

// BankAccount is a company's destination account for disbursements.
type BankAccount struct {
	ID            string
	CompanyID     string
	BankName      string
	AccountNumber string
	AccountType   string
	IsDefault     bool
	CreatedAt     time.Time
}

// Invoice is a receivable backing a funding request. DueDate is nil when the
// stored date could not be parsed.
type Invoice struct {
	ID        string
	CompanyID string
	Number    string
	Amount    decimal.Decimal
	DueDate   *time.Time
}

// TenorDays returns round((due − now) / 24h), and false without a due date.
func (i Invoice) TenorDays(now time.Time) (int, bool) {
	if i.DueDate == nil {
		return 0, false
	}
	days := i.DueDate.Sub(now).Hours() / 24
	return int(math.Round(days)), true
}
