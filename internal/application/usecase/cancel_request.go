package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// RequestCancelledReason is recorded on offers of a cancelled request.
const RequestCancelledReason = "request_cancelled"

// CancelRequestUseCase cancels a request that is still in review or offered.
type CancelRequestUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewCancelRequestUseCase wires dependencies.
func NewCancelRequestUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *CancelRequestUseCase {
	return &CancelRequestUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute moves the request to cancelled and cancels its open offers.
func (uc *CancelRequestUseCase) Execute(ctx context.Context, req dto.CancelRequestRequest) (dto.FundingRequestResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.FundingRequestResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.FundingRequestResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		updated   model.FundingRequest
	)

	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		fr, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		fr, err = fr.TransitionTo(valueobject.RequestStatusCancelled, req.Actor, now)
		if err != nil {
			return fmt.Errorf("cancel request: %w", err)
		}
		if err := cancelOfferedOffers(ctx, r, req.CompanyID, fr.ID(), RequestCancelledReason, &collected, now); err != nil {
			return err
		}
		if err := r.Requests.Update(ctx, fr); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		collected.Record(fr.DomainEvents()...)
		updated = fr
		return nil
	})
	if err != nil {
		return dto.FundingRequestResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return toFundingRequestResponse(updated), nil
}
