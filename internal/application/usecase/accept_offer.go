package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// AcceptOfferUseCase records the client's acceptance of an offer.
type AcceptOfferUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewAcceptOfferUseCase wires dependencies.
func NewAcceptOfferUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *AcceptOfferUseCase {
	return &AcceptOfferUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute accepts an unexpired offered offer and moves the request to
// accepted.
func (uc *AcceptOfferUseCase) Execute(ctx context.Context, req dto.OfferDecisionRequest) (dto.OfferWithRequestResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.OfferWithRequestResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.OfferWithRequestResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		resp      dto.OfferWithRequestResponse
	)

	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		fr, offer, err := loadOfferedPair(ctx, r, req)
		if err != nil {
			return err
		}

		// Offer first: an expired offer leaves the request untouched.
		offer, err = offer.Accept(req.Actor, now)
		if err != nil {
			return fmt.Errorf("accept offer: %w", err)
		}
		if err := r.Offers.Update(ctx, offer); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}
		fr, err = fr.TransitionTo(valueobject.RequestStatusAccepted, req.Actor, now)
		if err != nil {
			return fmt.Errorf("accept request: %w", err)
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

// loadOfferedPair loads the request and the offer and checks the request is
// in offered and owns the offer.
func loadOfferedPair(
	ctx context.Context,
	r port.Repositories,
	req dto.OfferDecisionRequest,
) (model.FundingRequest, model.Offer, error) {
	fr, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
	if err != nil {
		return model.FundingRequest{}, model.Offer{}, fmt.Errorf("find request: %w", err)
	}
	offer, err := r.Offers.FindByID(ctx, req.CompanyID, req.OfferID)
	if err != nil {
		return model.FundingRequest{}, model.Offer{}, fmt.Errorf("find offer: %w", err)
	}
	if offer.RequestID() != fr.ID() {
		return model.FundingRequest{}, model.Offer{}, apperr.OfferNotFound()
	}
	if !fr.Status().Equal(valueobject.RequestStatusOffered) {
		return model.FundingRequest{}, model.Offer{}, apperr.OfferNotActive()
	}
	return fr, offer, nil
}
