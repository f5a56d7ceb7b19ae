package service

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
)

// ---------------------------------------------------------------------------
// OfferCalculator – prices funding requests
// ---------------------------------------------------------------------------

// OfferPolicy holds the fee schedule and term defaults.
type OfferPolicy struct {
	ProcessingFeeRate decimal.Decimal // fraction of the requested amount
	MinProcessingFee  decimal.Decimal
	MaxProcessingFee  decimal.Decimal
	WireFee           decimal.Decimal
	ValidForDays      int
	DefaultAnnualRate decimal.Decimal // fraction
	DefaultAdvancePct decimal.Decimal
}

// DefaultOfferPolicy returns the standard fee schedule.
func DefaultOfferPolicy() OfferPolicy {
	return OfferPolicy{
		ProcessingFeeRate: decimal.RequireFromString("0.005"),
		MinProcessingFee:  decimal.NewFromInt(50_000),
		MaxProcessingFee:  decimal.NewFromInt(200_000),
		WireFee:           decimal.NewFromInt(5_000),
		ValidForDays:      7,
		DefaultAnnualRate: decimal.RequireFromString("0.30"),
		DefaultAdvancePct: decimal.NewFromInt(85),
	}
}

// Validate rejects inconsistent policies.
func (p OfferPolicy) Validate() error {
	var errs []error
	if p.ProcessingFeeRate.IsNegative() {
		errs = append(errs, errors.New("processing fee rate must be >= 0"))
	}
	if p.MinProcessingFee.IsNegative() || p.MaxProcessingFee.LessThan(p.MinProcessingFee) {
		errs = append(errs, errors.New("processing fee bounds must satisfy 0 <= min <= max"))
	}
	if p.WireFee.IsNegative() {
		errs = append(errs, errors.New("wire fee must be >= 0"))
	}
	if p.ValidForDays < minValidDays || p.ValidForDays > maxValidDays {
		errs = append(errs, errors.New("offer validity must be between 1 and 90 days"))
	}
	if p.DefaultAnnualRate.IsNegative() || p.DefaultAnnualRate.GreaterThan(maxAnnualRatePct.Div(hundred)) {
		errs = append(errs, errors.New("default annual rate must be between 0 and 2"))
	}
	if p.DefaultAdvancePct.IsNegative() || p.DefaultAdvancePct.GreaterThan(hundred) {
		errs = append(errs, errors.New("default advance must be between 0 and 100"))
	}
	return errors.Join(errs...)
}

const (
	minValidDays = 1
	maxValidDays = 90
)

var maxAnnualRatePct = decimal.NewFromInt(200)

// StandardParams override the policy defaults for a standard offer. Nil
// fields use the policy.
type StandardParams struct {
	AnnualRate *decimal.Decimal // fraction
	AdvancePct *decimal.Decimal
}

// CustomInputs are the staff-entered terms of a custom offer. Fields are
// floats because they come straight from form input; nil, NaN and ±Inf fall
// back to the standard value.
type CustomInputs struct {
	AnnualRatePct *float64
	AdvancePct    *float64
	ProcessingFee *float64
	WireFee       *float64
	ValidForDays  *float64
}

// OfferCalculator turns a requested amount into offer terms. It is pure; the
// current time is an explicit input.
type OfferCalculator struct {
	policy OfferPolicy
}

// NewOfferCalculator returns a calculator using policy.
func NewOfferCalculator(policy OfferPolicy) *OfferCalculator {
	return &OfferCalculator{policy: policy}
}

// Policy returns the calculator's fee schedule.
func (c *OfferCalculator) Policy() OfferPolicy { return c.policy }

// Standard prices amount with the policy fee schedule.
func (c *OfferCalculator) Standard(amount decimal.Decimal, params StandardParams, now time.Time) model.OfferTerms {
	rate := c.policy.DefaultAnnualRate
	if params.AnnualRate != nil {
		rate = *params.AnnualRate
	}
	advancePct := c.policy.DefaultAdvancePct
	if params.AdvancePct != nil {
		advancePct = *params.AdvancePct
	}
	fees := map[string]decimal.Decimal{
		model.FeeProcessing: c.processingFee(amount),
		model.FeeWire:       c.policy.WireFee.Round(0),
	}
	return buildTerms(amount, rate, advancePct, fees, now.AddDate(0, 0, c.policy.ValidForDays))
}

// Custom prices amount with staff inputs, clamping each to its bounds: rate
// to [0, 200] percent, advance to [0, 100], fees to >= 0 and validity to
// [1, 90] days. Missing inputs take the value Standard would use.
func (c *OfferCalculator) Custom(amount decimal.Decimal, params StandardParams, in CustomInputs, now time.Time) model.OfferTerms {
	base := c.Standard(amount, params, now)

	ratePct := clamp(orDefault(in.AnnualRatePct, base.AnnualRate.Mul(hundred)), decimal.Zero, maxAnnualRatePct)
	advancePct := clamp(orDefault(in.AdvancePct, base.AdvancePct), decimal.Zero, hundred)
	processing := decimal.Max(decimal.Zero, orDefault(in.ProcessingFee, base.Fees[model.FeeProcessing]).Round(0))
	wire := decimal.Max(decimal.Zero, orDefault(in.WireFee, base.Fees[model.FeeWire]).Round(0))

	days := c.policy.ValidForDays
	if in.ValidForDays != nil && finite(*in.ValidForDays) {
		days = int(math.Round(*in.ValidForDays))
	}
	days = min(max(days, minValidDays), maxValidDays)

	fees := map[string]decimal.Decimal{
		model.FeeProcessing: processing,
		model.FeeWire:       wire,
	}
	return buildTerms(amount, ratePct.Div(hundred), advancePct, fees, now.AddDate(0, 0, days))
}

// processingFee is clamp(amount × rate, min, max), rounded to a whole amount.
func (c *OfferCalculator) processingFee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(c.policy.ProcessingFeeRate)
	return clamp(fee, c.policy.MinProcessingFee, c.policy.MaxProcessingFee).Round(0)
}

// buildTerms computes the advance and net. Fees above the advance clamp the
// net to zero.
func buildTerms(amount, rate, advancePct decimal.Decimal, fees map[string]decimal.Decimal, validUntil time.Time) model.OfferTerms {
	advance := amount.Mul(advancePct).Div(hundred).Round(2)
	terms := model.OfferTerms{
		AnnualRate:    rate,
		AdvancePct:    advancePct,
		Fees:          fees,
		AdvanceAmount: advance,
		ValidUntil:    validUntil,
	}
	terms.NetAmount = decimal.Max(decimal.Zero, advance.Sub(terms.TotalFees()).Round(0))
	return terms
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func orDefault(v *float64, def decimal.Decimal) decimal.Decimal {
	if v == nil || !finite(*v) {
		return def
	}
	return decimal.NewFromFloat(*v)
}
