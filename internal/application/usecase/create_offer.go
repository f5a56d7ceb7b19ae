package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// OfferSupersededReason is recorded on offers cancelled by a newer one.
const OfferSupersededReason = "superseded"

// CreateOfferUseCase issues a staff offer for a review request.
type CreateOfferUseCase struct {
	uow        port.UnitOfWork
	publisher  port.EventPublisher
	resolver   *service.ParameterResolver
	calculator *service.OfferCalculator
	clock      port.Clock
}

// NewCreateOfferUseCase wires dependencies.
func NewCreateOfferUseCase(
	uow port.UnitOfWork,
	publisher port.EventPublisher,
	resolver *service.ParameterResolver,
	calculator *service.OfferCalculator,
	clock port.Clock,
) *CreateOfferUseCase {
	return &CreateOfferUseCase{uow: uow, publisher: publisher, resolver: resolver, calculator: calculator, clock: clock}
}

// Execute cancels any offer still open on the request, inserts the new one
// and moves the request from review to offered.
func (uc *CreateOfferUseCase) Execute(ctx context.Context, req dto.CreateOfferRequest) (dto.OfferWithRequestResponse, error) {
	// 1. Validate input.
	if err := validation.Struct(req); err != nil {
		return dto.OfferWithRequestResponse{}, err
	}
	mode, err := valueobject.NewOfferMode(req.Mode)
	if err != nil {
		return dto.OfferWithRequestResponse{}, apperr.InvalidField("mode", err.Error())
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.OfferWithRequestResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		resp      dto.OfferWithRequestResponse
	)

	err = uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		// 2. The request must be in review.
		fr, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		if !fr.Status().Equal(valueobject.RequestStatusReview) {
			return apperr.NotInReview()
		}

		// 3. Supersede older offers.
		if err := cancelOfferedOffers(ctx, r, req.CompanyID, fr.ID(), OfferSupersededReason, &collected, now); err != nil {
			return err
		}

		// 4. Price and insert.
		params, err := resolveParameters(ctx, r, uc.resolver, req.CompanyID)
		if err != nil {
			return err
		}
		terms := priceOffer(uc.calculator, fr.RequestedAmount().Amount(), params, mode, req.Custom, uc.clock)
		offer, err := model.NewOffer(req.CompanyID, fr.ID(), terms, req.Actor, now)
		if err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		if err := r.Offers.Insert(ctx, offer); err != nil {
			return fmt.Errorf("insert offer: %w", err)
		}

		// 5. Move the request to offered.
		fr, err = fr.TransitionTo(valueobject.RequestStatusOffered, req.Actor, now)
		if err != nil {
			return fmt.Errorf("offer request: %w", err)
		}
		if err := r.Requests.Update(ctx, fr); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		collected.Record(offer.DomainEvents()...)
		collected.Record(fr.DomainEvents()...)
		resp = dto.OfferWithRequestResponse{Offer: toOfferResponse(offer), Request: toFundingRequestResponse(fr)}
		return nil
	})
	if err != nil {
		return dto.OfferWithRequestResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return resp, nil
}
