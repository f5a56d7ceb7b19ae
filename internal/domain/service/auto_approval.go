package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// AutoApprovalGate – exposure and tenor checks for review requests
// ---------------------------------------------------------------------------

// AutoApprovalResult holds the figures behind the decision.
type AutoApprovalResult struct {
	TotalExposure  decimal.Decimal
	CreditLimit    decimal.Decimal
	ExposureLimit  decimal.Decimal
	MaxTenorDays   *int
	TenorLimitDays int
	Approved       bool
	// Reason is the apperr code of the failed check, empty when approved.
	Reason string
}

// AutoApprovalGate decides whether a review request may be accepted without
// manual review.
type AutoApprovalGate struct{}

// NewAutoApprovalGate returns a new gate.
func NewAutoApprovalGate() *AutoApprovalGate {
	return &AutoApprovalGate{}
}

// Evaluate runs the checks in order:
//
//	status != review                                  -> NOT_IN_REVIEW
//	limit > 0 and exposure > limit × ratio            -> EXPOSURE_EXCEEDED
//	max invoice tenor > tenor limit + tenor buffer    -> TENOR_EXCEEDED
//
// companyRequests are the company's requests; only active ones count towards
// exposure and req is always counted. A zero credit limit disables the
// exposure check. On rejection the result is returned with the error.
func (g *AutoApprovalGate) Evaluate(
	req model.FundingRequest,
	companyRequests []model.FundingRequest,
	invoices []model.Invoice,
	params EffectiveParameters,
	now time.Time,
) (AutoApprovalResult, error) {
	result := AutoApprovalResult{
		CreditLimit:    params.CreditLimit,
		ExposureLimit:  params.ExposureLimit(),
		TenorLimitDays: params.TenorLimitDays,
	}

	if !req.Status().Equal(valueobject.RequestStatusReview) {
		result.Reason = apperr.CodeNotInReview
		return result, apperr.NotInReview()
	}

	result.TotalExposure = TotalExposure(req, companyRequests)
	if params.CreditLimit.IsPositive() && result.TotalExposure.GreaterThan(result.ExposureLimit) {
		result.Reason = apperr.CodeExposureExceeded
		return result, apperr.ExposureExceeded()
	}

	result.MaxTenorDays = MaxTenorDays(invoices, now)
	if result.MaxTenorDays != nil && *result.MaxTenorDays > params.TenorLimitDays+params.TenorBufferDays {
		result.Reason = apperr.CodeTenorExceeded
		return result, apperr.TenorExceeded()
	}

	result.Approved = true
	return result, nil
}

// TotalExposure sums requested amounts over active requests, counting req
// even when it is missing from requests.
func TotalExposure(req model.FundingRequest, requests []model.FundingRequest) decimal.Decimal {
	total := decimal.Zero
	seen := false
	for _, r := range requests {
		if r.ID() == req.ID() {
			seen = true
			r = req
		}
		if r.Status().IsActive() {
			total = total.Add(r.RequestedAmount().Amount())
		}
	}
	if !seen && req.Status().IsActive() {
		total = total.Add(req.RequestedAmount().Amount())
	}
	return total
}

// MaxTenorDays returns the longest tenor among invoices with a due date, or
// nil when none has one.
func MaxTenorDays(invoices []model.Invoice, now time.Time) *int {
	var out *int
	for _, inv := range invoices {
		days, ok := inv.TenorDays(now)
		if !ok {
			continue
		}
		if out == nil || days > *out {
			d := days
			out = &d
		}
	}
	return out
}
