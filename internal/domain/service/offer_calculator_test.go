package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
)

var now = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func f(v float64) *float64 { return &v }

func TestOfferCalculator_StandardTenMillion(t *testing.T) {
	calc := service.NewOfferCalculator(service.DefaultOfferPolicy())
	terms := calc.Standard(dec(10_000_000), service.StandardParams{}, now)

	assert.True(t, terms.AdvancePct.Equal(dec(85)))
	assert.True(t, terms.AnnualRate.Equal(decimal.RequireFromString("0.30")))
	assert.True(t, terms.Fees[model.FeeProcessing].Equal(dec(50_000)))
	assert.True(t, terms.Fees[model.FeeWire].Equal(dec(5_000)))
	assert.True(t, terms.AdvanceAmount.Equal(dec(8_500_000)))
	assert.True(t, terms.NetAmount.Equal(dec(8_445_000)))
	assert.Equal(t, now.Add(7*24*time.Hour), terms.ValidUntil)
}

func TestOfferCalculator_ProcessingFeeBounds(t *testing.T) {
	calc := service.NewOfferCalculator(service.DefaultOfferPolicy())

	tests := []struct {
		name   string
		amount int64
		want   int64
	}{
		{"small amounts pay the minimum", 1_000_000, 50_000},
		{"mid amounts pay half a percent", 20_000_000, 100_000},
		{"large amounts pay the maximum", 100_000_000, 200_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := calc.Standard(dec(tt.amount), service.StandardParams{}, now)
			assert.True(t, terms.Fees[model.FeeProcessing].Equal(dec(tt.want)), terms.Fees[model.FeeProcessing].String())
		})
	}
}

func TestOfferCalculator_StandardUsesResolvedParameters(t *testing.T) {
	calc := service.NewOfferCalculator(service.DefaultOfferPolicy())
	rate := decimal.RequireFromString("0.24")
	adv := dec(90)

	terms := calc.Standard(dec(10_000_000), service.StandardParams{AnnualRate: &rate, AdvancePct: &adv}, now)

	assert.True(t, terms.AnnualRate.Equal(rate))
	assert.True(t, terms.NetAmount.Equal(dec(8_945_000)))
}

func TestOfferCalculator_FeesAboveAdvanceClampNetToZero(t *testing.T) {
	calc := service.NewOfferCalculator(service.DefaultOfferPolicy())
	terms := calc.Standard(dec(40_000), service.StandardParams{}, now)

	assert.True(t, terms.NetAmount.IsZero())
}

func TestOfferCalculator_CustomClamping(t *testing.T) {
	calc := service.NewOfferCalculator(service.DefaultOfferPolicy())

	terms := calc.Custom(dec(10_000_000), service.StandardParams{}, service.CustomInputs{
		AnnualRatePct: f(250),
		AdvancePct:    f(150),
		ProcessingFee: f(-5),
		WireFee:       f(1_234.6),
		ValidForDays:  f(400),
	}, now)

	assert.True(t, terms.AnnualRate.Equal(dec(2)))
	assert.True(t, terms.AdvancePct.Equal(dec(100)))
	assert.True(t, terms.Fees[model.FeeProcessing].IsZero())
	assert.True(t, terms.Fees[model.FeeWire].Equal(dec(1_235)))
	assert.Equal(t, now.AddDate(0, 0, 90), terms.ValidUntil)
	assert.True(t, terms.NetAmount.Equal(dec(9_998_765)))
}

func TestOfferCalculator_CustomDefaultsNonFiniteInputs(t *testing.T) {
	calc := service.NewOfferCalculator(service.DefaultOfferPolicy())
	standard := calc.Standard(dec(10_000_000), service.StandardParams{}, now)

	custom := calc.Custom(dec(10_000_000), service.StandardParams{}, service.CustomInputs{
		AnnualRatePct: f(math.NaN()),
		AdvancePct:    f(math.Inf(1)),
		ValidForDays:  f(0.2),
	}, now)

	assert.True(t, custom.AnnualRate.Equal(standard.AnnualRate))
	assert.True(t, custom.AdvancePct.Equal(standard.AdvancePct))
	assert.True(t, custom.NetAmount.Equal(standard.NetAmount))
	assert.Equal(t, now.AddDate(0, 0, 1), custom.ValidUntil, "validity rounds to 0 and clamps to 1 day")
}

func TestOfferPolicy_Validate(t *testing.T) {
	assert.NoError(t, service.DefaultOfferPolicy().Validate())

	p := service.DefaultOfferPolicy()
	p.MaxProcessingFee = dec(1)
	p.ValidForDays = 0
	assert.Error(t, p.Validate())
}
