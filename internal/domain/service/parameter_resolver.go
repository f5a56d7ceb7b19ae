package service

import (
	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

var hundred = decimal.NewFromInt(100)

// ---------------------------------------------------------------------------
// ParameterResolver – merges global, segment and company parameters
// ---------------------------------------------------------------------------

// EffectiveParameters are the pricing and risk values that apply to one
// company. DiscountRatePct is an annual percentage.
type EffectiveParameters struct {
	CompanyID        string
	Segment          valueobject.Segment
	DiscountRatePct  decimal.Decimal
	AdvancePct       decimal.Decimal
	CreditLimit      decimal.Decimal
	TenorLimitDays   int
	MaxExposureRatio decimal.Decimal
	TenorBufferDays  int
	Overridden       bool
}

// AnnualRate returns the discount rate as a fraction (30% -> 0.30).
func (p EffectiveParameters) AnnualRate() decimal.Decimal {
	return p.DiscountRatePct.Div(hundred)
}

// ExposureLimit is credit_limit × max_exposure_ratio.
func (p EffectiveParameters) ExposureLimit() decimal.Decimal {
	return p.CreditLimit.Mul(p.MaxExposureRatio)
}

// ParameterResolver resolves EffectiveParameters. Precedence for each value
// is company override, then segment default, then global default.
type ParameterResolver struct{}

// NewParameterResolver returns a new resolver.
func NewParameterResolver() *ParameterResolver {
	return &ParameterResolver{}
}

// Resolve merges settings and the optional override for company.
func (r *ParameterResolver) Resolve(
	company model.Company,
	settings model.GlobalSettings,
	override *model.ParameterOverride,
) EffectiveParameters {
	seg := company.Segment()
	segSettings := settings.Segment(seg)

	p := EffectiveParameters{
		CompanyID:        company.ID,
		Segment:          seg,
		DiscountRatePct:  settings.BaseDiscountRate,
		AdvancePct:       settings.DefaultAdvancePct,
		CreditLimit:      segSettings.CreditLimit,
		TenorLimitDays:   segSettings.TermsDays,
		MaxExposureRatio: settings.AutoApproval.MaxExposureRatio,
		TenorBufferDays:  settings.AutoApproval.MaxTenorBufferDays,
	}
	if segSettings.DiscountRate != nil {
		p.DiscountRatePct = *segSettings.DiscountRate
	}
	if segSettings.AdvancePct != nil {
		p.AdvancePct = *segSettings.AdvancePct
	}

	if override == nil {
		return p
	}
	p.Overridden = true
	if override.DiscountRate != nil {
		p.DiscountRatePct = *override.DiscountRate
	}
	if override.AdvancePct != nil {
		p.AdvancePct = *override.AdvancePct
	}
	if override.OperationDays != nil {
		p.TenorLimitDays = *override.OperationDays
	}
	return p
}
