package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// ComputeOfferUseCase prices an amount with the company's effective
// parameters without writing anything.
type ComputeOfferUseCase struct {
	uow        port.UnitOfWork
	resolver   *service.ParameterResolver
	calculator *service.OfferCalculator
	clock      port.Clock
}

// NewComputeOfferUseCase wires dependencies.
func NewComputeOfferUseCase(
	uow port.UnitOfWork,
	resolver *service.ParameterResolver,
	calculator *service.OfferCalculator,
	clock port.Clock,
) *ComputeOfferUseCase {
	return &ComputeOfferUseCase{uow: uow, resolver: resolver, calculator: calculator, clock: clock}
}

// Execute returns the priced terms.
func (uc *ComputeOfferUseCase) Execute(ctx context.Context, req dto.ComputeOfferRequest) (dto.OfferTermsResponse, error) {
	// 1. Validate input.
	if err := validation.Struct(req); err != nil {
		return dto.OfferTermsResponse{}, err
	}
	mode, err := valueobject.NewOfferMode(req.Mode)
	if err != nil {
		return dto.OfferTermsResponse{}, apperr.InvalidField("mode", err.Error())
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.OfferTermsResponse{}, err
	}
	if mode.Equal(valueobject.OfferModeCustom) {
		if err := requireStaff(req.Actor); err != nil {
			return dto.OfferTermsResponse{}, err
		}
	}

	repos := uc.uow.Repositories()

	// 2. Determine the amount.
	amount := req.Amount
	if req.RequestID != "" {
		fr, err := repos.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return dto.OfferTermsResponse{}, fmt.Errorf("find request: %w", err)
		}
		amount = fr.RequestedAmount().Amount()
	}
	if !amount.IsPositive() {
		return dto.OfferTermsResponse{}, apperr.InvalidField("amount", "must be greater than 0")
	}

	// 3. Resolve parameters and price.
	params, err := resolveParameters(ctx, repos, uc.resolver, req.CompanyID)
	if err != nil {
		return dto.OfferTermsResponse{}, err
	}
	terms := priceOffer(uc.calculator, amount, params, mode, req.Custom, uc.clock)
	return toOfferTermsResponse(terms), nil
}

// priceOffer runs the calculator in the requested mode.
func priceOffer(
	calc *service.OfferCalculator,
	amount decimal.Decimal,
	params service.EffectiveParameters,
	mode valueobject.OfferMode,
	custom *dto.CustomOfferInput,
	clock port.Clock,
) model.OfferTerms {
	now := clock.Now()
	if !mode.Equal(valueobject.OfferModeCustom) {
		return calc.Standard(amount, standardParams(params), now)
	}
	var in service.CustomInputs
	if custom != nil {
		in = service.CustomInputs{
			AnnualRatePct: custom.AnnualRatePct,
			AdvancePct:    custom.AdvancePct,
			ProcessingFee: custom.ProcessingFee,
			WireFee:       custom.WireFee,
			ValidForDays:  custom.ValidForDays,
		}
	}
	return calc.Custom(amount, standardParams(params), in, now)
}
