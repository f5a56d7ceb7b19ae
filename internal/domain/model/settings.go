package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

var (
	maxRatePct    = decimal.NewFromInt(200)
	maxAdvancePct = decimal.NewFromInt(100)
)

// SegmentSettings are the per-segment defaults. Nil rate or advance means the
// global value applies.
type SegmentSettings struct {
	CreditLimit  decimal.Decimal  `json:"credit_limit"`
	TermsDays    int              `json:"terms"`
	DiscountRate *decimal.Decimal `json:"discount_rate,omitempty"`
	AdvancePct   *decimal.Decimal `json:"advance_pct,omitempty"`
}

// AutoApprovalThresholds bound the auto-approval gate.
type AutoApprovalThresholds struct {
	MaxExposureRatio   decimal.Decimal `json:"max_exposure_ratio"`
	MaxTenorBufferDays int             `json:"max_tenor_buffer_days"`
}

// GlobalSettings is the process-wide pricing and risk configuration. Rates are
// annual percentages (30 = 30% a year). The record is a singleton with
// last-write-wins semantics.
type GlobalSettings struct {
	BaseDiscountRate  decimal.Decimal                         `json:"base_discount_rate"`
	DefaultAdvancePct decimal.Decimal                         `json:"default_advance_pct"`
	Segments          map[valueobject.Segment]SegmentSettings `json:"segments"`
	AutoApproval      AutoApprovalThresholds                  `json:"auto_approval"`
	UpdatedAt         time.Time                               `json:"updated_at"`
	UpdatedBy         string                                  `json:"updated_by"`
}

// DefaultGlobalSettings is used until staff store their own settings.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		BaseDiscountRate:  decimal.NewFromInt(30),
		DefaultAdvancePct: decimal.NewFromInt(85),
		Segments: map[valueobject.Segment]SegmentSettings{
			valueobject.SegmentCorporativo: {CreditLimit: decimal.NewFromInt(2_000_000_000), TermsDays: 120},
			valueobject.SegmentPyme:        {CreditLimit: decimal.NewFromInt(300_000_000), TermsDays: 90},
			valueobject.SegmentStartup:     {CreditLimit: decimal.NewFromInt(100_000_000), TermsDays: 60},
			valueobject.SegmentDefault:     {CreditLimit: decimal.NewFromInt(50_000_000), TermsDays: 60},
		},
		AutoApproval: AutoApprovalThresholds{
			MaxExposureRatio:   decimal.NewFromInt(1),
			MaxTenorBufferDays: 15,
		},
	}
}

// Segment returns the settings for seg, falling back to the default segment.
func (s GlobalSettings) Segment(seg valueobject.Segment) SegmentSettings {
	if v, ok := s.Segments[seg]; ok {
		return v
	}
	return s.Segments[valueobject.SegmentDefault]
}

// Validate checks every bound and reports all offending fields at once.
func (s GlobalSettings) Validate() error {
	fields := map[string]string{}
	checkPct(fields, "base_discount_rate", s.BaseDiscountRate, maxRatePct)
	checkPct(fields, "default_advance_pct", s.DefaultAdvancePct, maxAdvancePct)
	for seg, v := range s.Segments {
		if _, ok := valueobject.ParseSegment(string(seg)); !ok {
			fields[fmt.Sprintf("segments.%s", seg)] = "unknown segment"
			continue
		}
		if v.CreditLimit.IsNegative() {
			fields[fmt.Sprintf("segments.%s.credit_limit", seg)] = "must be >= 0"
		}
		if v.TermsDays < 0 {
			fields[fmt.Sprintf("segments.%s.terms", seg)] = "must be >= 0"
		}
		if v.DiscountRate != nil {
			checkPct(fields, fmt.Sprintf("segments.%s.discount_rate", seg), *v.DiscountRate, maxRatePct)
		}
		if v.AdvancePct != nil {
			checkPct(fields, fmt.Sprintf("segments.%s.advance_pct", seg), *v.AdvancePct, maxAdvancePct)
		}
	}
	if !s.AutoApproval.MaxExposureRatio.IsPositive() {
		fields["auto_approval.max_exposure_ratio"] = "must be > 0"
	}
	if s.AutoApproval.MaxTenorBufferDays < 0 {
		fields["auto_approval.max_tenor_buffer_days"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ParameterOverride
// ---------------------------------------------------------------------------

// ParameterOverride holds per-company overrides; nil fields fall back to the
// segment and global defaults. OperationDays overrides the tenor limit.
type ParameterOverride struct {
	CompanyID     string
	DiscountRate  *decimal.Decimal
	AdvancePct    *decimal.Decimal
	OperationDays *int
	UpdatedAt     time.Time
	UpdatedBy     string
}

// Validate checks the non-nil fields.
func (o ParameterOverride) Validate() error {
	fields := map[string]string{}
	if o.CompanyID == "" {
		fields["company_id"] = "required"
	}
	if o.DiscountRate != nil {
		checkPct(fields, "discount_rate", *o.DiscountRate, maxRatePct)
	}
	if o.AdvancePct != nil {
		checkPct(fields, "advance_pct", *o.AdvancePct, maxAdvancePct)
	}
	if o.OperationDays != nil && *o.OperationDays < 0 {
		fields["operation_days"] = "must be >= 0"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func checkPct(fields map[string]string, name string, v, upper decimal.Decimal) {
	if v.IsNegative() || v.GreaterThan(upper) {
		fields[name] = fmt.Sprintf("must be between 0 and %s", upper.String())
	}
}
