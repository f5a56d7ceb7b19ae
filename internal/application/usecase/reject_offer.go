package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// OfferRejectedReason is recorded on offers the client turned down.
const OfferRejectedReason = "rejected_by_client"

// RejectOfferUseCase records the client's rejection of an offer.
type RejectOfferUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewRejectOfferUseCase wires dependencies.
func NewRejectOfferUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *RejectOfferUseCase {
	return &RejectOfferUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute cancels the offer and returns the request to review.
func (uc *RejectOfferUseCase) Execute(ctx context.Context, req dto.OfferDecisionRequest) (dto.OfferWithRequestResponse, error) {
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
		offer, err = offer.Cancel(OfferRejectedReason, now)
		if err != nil {
			return fmt.Errorf("cancel offer: %w", err)
		}
		if err := r.Offers.Update(ctx, offer); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}
		fr, err = fr.TransitionTo(valueobject.RequestStatusReview, req.Actor, now)
		if err != nil {
			return fmt.Errorf("reopen request: %w", err)
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
