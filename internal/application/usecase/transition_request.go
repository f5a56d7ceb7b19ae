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

// RequestRejectedReason is recorded on offers of a rejected request.
const RequestRejectedReason = "request_rejected"

// TransitionRequestUseCase moves a funding request along the lifecycle graph.
// Statuses whose side effects belong to another operation are refused here:
// offered (CreateOffer), accepted (AcceptOffer, EvaluateAutoApproval), funded
// (Disburse), and leaving offered for review or cancelled (RejectOffer,
// CancelRequest).
type TransitionRequestUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewTransitionRequestUseCase wires dependencies.
func NewTransitionRequestUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *TransitionRequestUseCase {
	return &TransitionRequestUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute applies the transition with an optimistic version check and emits
// exactly one StatusChanged event after commit.
func (uc *TransitionRequestUseCase) Execute(
	ctx context.Context,
	req dto.TransitionRequestRequest,
) (dto.FundingRequestResponse, error) {
	// 1. Validate input.
	if err := validation.Struct(req); err != nil {
		return dto.FundingRequestResponse{}, err
	}
	target, err := valueobject.NewRequestStatus(req.TargetStatus)
	if err != nil {
		return dto.FundingRequestResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.FundingRequestResponse{}, err
	}
	if err := checkTargetStatus(target, req.Actor); err != nil {
		return dto.FundingRequestResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		updated   model.FundingRequest
	)

	// 2. Load, transition and persist atomically.
	err = uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		fr, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		from := fr.Status()
		if err := checkFromOffered(from, target); err != nil {
			return err
		}
		fr, err = fr.TransitionTo(target, req.Actor, now)
		if err != nil {
			return fmt.Errorf("transition request: %w", err)
		}
		if from.Equal(valueobject.RequestStatusOffered) {
			if err := cancelOfferedOffers(ctx, r, req.CompanyID, fr.ID(), RequestRejectedReason, &collected, now); err != nil {
				return err
			}
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

	// 3. Publish after commit.
	notify(ctx, uc.publisher, &collected)

	return toFundingRequestResponse(updated), nil
}

// checkTargetStatus refuses targets owned by a dedicated operation and keeps
// rejecting and archiving to staff.
func checkTargetStatus(target valueobject.RequestStatus, actor model.Actor) error {
	switch target {
	case valueobject.RequestStatusOffered,
		valueobject.RequestStatusAccepted,
		valueobject.RequestStatusFunded:
		return apperr.TransitionNotAllowed(target.String())
	case valueobject.RequestStatusRejected,
		valueobject.RequestStatusArchived:
		return requireStaff(actor)
	}
	return nil
}

// checkFromOffered leaves offered -> review and offered -> cancelled to the
// operations that also settle the open offer.
func checkFromOffered(from, target valueobject.RequestStatus) error {
	if !from.Equal(valueobject.RequestStatusOffered) {
		return nil
	}
	if target.Equal(valueobject.RequestStatusReview) || target.Equal(valueobject.RequestStatusCancelled) {
		return apperr.TransitionNotAllowed(target.String())
	}
	return nil
}
