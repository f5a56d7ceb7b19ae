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

// ---------------------------------------------------------------------------
// OpenCollectionCase
// ---------------------------------------------------------------------------

// OpenCollectionCaseUseCase opens the collection case of a request.
type OpenCollectionCaseUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewOpenCollectionCaseUseCase wires dependencies.
func NewOpenCollectionCaseUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *OpenCollectionCaseUseCase {
	return &OpenCollectionCaseUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute is idempotent per request: when a case is already open it is
// returned unchanged.
func (uc *OpenCollectionCaseUseCase) Execute(
	ctx context.Context,
	req dto.OpenCollectionCaseRequest,
) (dto.CollectionCaseResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.CollectionCaseResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.CollectionCaseResponse{}, err
	}
	priority, err := valueobject.NewPriority(req.Priority)
	if err != nil {
		return dto.CollectionCaseResponse{}, apperr.InvalidField("priority", err.Error())
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		result    model.CollectionCase
	)
	err = uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		if _, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID); err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		existing, open, err := r.Cases.FindOpenByRequest(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return fmt.Errorf("find open case: %w", err)
		}
		if open {
			result = existing
			return nil
		}
		c, err := model.NewCollectionCase(req.CompanyID, req.RequestID, priority, req.Reason, now)
		if err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		if err := r.Cases.Insert(ctx, c); err != nil {
			return fmt.Errorf("insert case: %w", err)
		}
		collected.Record(c.DomainEvents()...)
		result = c
		return nil
	})
	if err != nil {
		return dto.CollectionCaseResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return toCollectionCaseResponse(result), nil
}

// ---------------------------------------------------------------------------
// RecordCollectionAction
// ---------------------------------------------------------------------------

// RecordCollectionActionUseCase appends an action to an open case.
type RecordCollectionActionUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewRecordCollectionActionUseCase wires dependencies.
func NewRecordCollectionActionUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *RecordCollectionActionUseCase {
	return &RecordCollectionActionUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute inserts the action and updates the case status and next action.
func (uc *RecordCollectionActionUseCase) Execute(
	ctx context.Context,
	req dto.RecordCollectionActionRequest,
) (dto.RecordCollectionActionResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.RecordCollectionActionResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.RecordCollectionActionResponse{}, err
	}
	kind, err := valueobject.NewActionKind(req.Kind)
	if err != nil {
		return dto.RecordCollectionActionResponse{}, apperr.InvalidField("kind", err.Error())
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		resp      dto.RecordCollectionActionResponse
	)
	err = uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		c, err := r.Cases.FindByID(ctx, req.CompanyID, req.CaseID)
		if err != nil {
			return fmt.Errorf("find case: %w", err)
		}
		action, err := model.NewCollectionAction(c.ID(), req.CompanyID, kind, req.Notes, req.DueAt, req.CompletedAt, req.Actor, now)
		if err != nil {
			return fmt.Errorf("create action: %w", err)
		}
		c, err = c.ApplyAction(action, now)
		if err != nil {
			return fmt.Errorf("apply action: %w", err)
		}
		if err := r.Actions.Insert(ctx, action); err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
		if err := r.Cases.Update(ctx, c); err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		collected.Record(c.DomainEvents()...)
		resp = dto.RecordCollectionActionResponse{
			Action: toCollectionActionResponse(action),
			Case:   toCollectionCaseResponse(c),
		}
		return nil
	})
	if err != nil {
		return dto.RecordCollectionActionResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return resp, nil
}

// ---------------------------------------------------------------------------
// UpdateCollectionPromise
// ---------------------------------------------------------------------------

// UpdateCollectionPromiseUseCase records a payment promise on a case.
type UpdateCollectionPromiseUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewUpdateCollectionPromiseUseCase wires dependencies.
func NewUpdateCollectionPromiseUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *UpdateCollectionPromiseUseCase {
	return &UpdateCollectionPromiseUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute moves the case to promise. The promise notification is sent after
// commit and never fails the call.
func (uc *UpdateCollectionPromiseUseCase) Execute(
	ctx context.Context,
	req dto.UpdateCollectionPromiseRequest,
) (dto.CollectionCaseResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.CollectionCaseResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.CollectionCaseResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		updated   model.CollectionCase
	)
	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		c, err := r.Cases.FindByID(ctx, req.CompanyID, req.CaseID)
		if err != nil {
			return fmt.Errorf("find case: %w", err)
		}
		c, err = c.UpdatePromise(req.PromiseAmount, req.PromiseDate, req.Actor, now)
		if err != nil {
			return fmt.Errorf("update promise: %w", err)
		}
		if err := r.Cases.Update(ctx, c); err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		collected.Record(c.DomainEvents()...)
		updated = c
		return nil
	})
	if err != nil {
		return dto.CollectionCaseResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return toCollectionCaseResponse(updated), nil
}

// ---------------------------------------------------------------------------
// CloseCollectionCase
// ---------------------------------------------------------------------------

// CloseCollectionCaseUseCase resolves a case.
type CloseCollectionCaseUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewCloseCollectionCaseUseCase wires dependencies.
func NewCloseCollectionCaseUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *CloseCollectionCaseUseCase {
	return &CloseCollectionCaseUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute sets the resolution and closed_at.
func (uc *CloseCollectionCaseUseCase) Execute(
	ctx context.Context,
	req dto.CloseCollectionCaseRequest,
) (dto.CollectionCaseResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.CollectionCaseResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.CollectionCaseResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		updated   model.CollectionCase
	)
	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		c, err := r.Cases.FindByID(ctx, req.CompanyID, req.CaseID)
		if err != nil {
			return fmt.Errorf("find case: %w", err)
		}
		c, err = c.Close(req.Resolution, now)
		if err != nil {
			return fmt.Errorf("close case: %w", err)
		}
		if err := r.Cases.Update(ctx, c); err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		collected.Record(c.DomainEvents()...)
		updated = c
		return nil
	})
	if err != nil {
		return dto.CollectionCaseResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return toCollectionCaseResponse(updated), nil
}

// ---------------------------------------------------------------------------
// ListCollectionActions
// ---------------------------------------------------------------------------

// ListCollectionActionsUseCase returns a case's action log.
type ListCollectionActionsUseCase struct {
	uow port.UnitOfWork
}

// NewListCollectionActionsUseCase wires dependencies.
func NewListCollectionActionsUseCase(uow port.UnitOfWork) *ListCollectionActionsUseCase {
	return &ListCollectionActionsUseCase{uow: uow}
}

// Execute lists actions oldest first.
func (uc *ListCollectionActionsUseCase) Execute(
	ctx context.Context,
	req dto.ListCollectionActionsRequest,
) (dto.CollectionActionsResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.CollectionActionsResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.CollectionActionsResponse{}, err
	}
	repos := uc.uow.Repositories()
	if _, err := repos.Cases.FindByID(ctx, req.CompanyID, req.CaseID); err != nil {
		return dto.CollectionActionsResponse{}, fmt.Errorf("find case: %w", err)
	}
	actions, err := repos.Actions.ListByCase(ctx, req.CompanyID, req.CaseID)
	if err != nil {
		return dto.CollectionActionsResponse{}, fmt.Errorf("list actions: %w", err)
	}
	out := make([]dto.CollectionActionResponse, len(actions))
	for i, a := range actions {
		out[i] = toCollectionActionResponse(a)
	}
	return dto.CollectionActionsResponse{CaseID: req.CaseID, Actions: out}, nil
}
