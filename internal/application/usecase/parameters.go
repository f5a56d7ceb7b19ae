package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// ---------------------------------------------------------------------------
// GetEffectiveParameters
// ---------------------------------------------------------------------------

// GetEffectiveParametersUseCase returns a company's resolved parameters.
type GetEffectiveParametersUseCase struct {
	uow      port.UnitOfWork
	resolver *service.ParameterResolver
}

// NewGetEffectiveParametersUseCase wires dependencies.
func NewGetEffectiveParametersUseCase(uow port.UnitOfWork, resolver *service.ParameterResolver) *GetEffectiveParametersUseCase {
	return &GetEffectiveParametersUseCase{uow: uow, resolver: resolver}
}

// Execute resolves parameters from the current settings; nothing is cached.
func (uc *GetEffectiveParametersUseCase) Execute(
	ctx context.Context,
	req dto.GetParametersRequest,
) (dto.EffectiveParametersResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.EffectiveParametersResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.EffectiveParametersResponse{}, err
	}
	params, err := resolveParameters(ctx, uc.uow.Repositories(), uc.resolver, req.CompanyID)
	if err != nil {
		return dto.EffectiveParametersResponse{}, err
	}
	return toEffectiveParametersResponse(params), nil
}

// ---------------------------------------------------------------------------
// UpsertParameterOverride
// ---------------------------------------------------------------------------

// UpsertParameterOverrideUseCase stores a company's overrides.
type UpsertParameterOverrideUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewUpsertParameterOverrideUseCase wires dependencies.
func NewUpsertParameterOverrideUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *UpsertParameterOverrideUseCase {
	return &UpsertParameterOverrideUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute replaces the override of the company, which must exist.
func (uc *UpsertParameterOverrideUseCase) Execute(
	ctx context.Context,
	req dto.UpsertParameterOverrideRequest,
) (dto.ParameterOverrideResponse, error) {
	// 1. Validate input.
	if err := validation.Struct(req); err != nil {
		return dto.ParameterOverrideResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.ParameterOverrideResponse{}, err
	}
	now := uc.clock.Now()
	override := model.ParameterOverride{
		CompanyID:     req.CompanyID,
		DiscountRate:  req.DiscountRate,
		AdvancePct:    req.AdvancePct,
		OperationDays: req.OperationDays,
		UpdatedAt:     now,
		UpdatedBy:     req.Actor.UserID,
	}
	if err := override.Validate(); err != nil {
		return dto.ParameterOverrideResponse{}, err
	}

	// 2. Persist.
	var collected events.EventCollector
	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		if _, err := r.Companies.FindByID(ctx, req.CompanyID); err != nil {
			return fmt.Errorf("find company: %w", err)
		}
		if err := r.Overrides.Upsert(ctx, override); err != nil {
			return fmt.Errorf("upsert override: %w", err)
		}
		collected.Record(event.NewParameterOverrideChanged(req.CompanyID, false, req.Actor.UserID, now))
		return nil
	})
	if err != nil {
		return dto.ParameterOverrideResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return toOverrideResponse(override), nil
}

// ---------------------------------------------------------------------------
// ResetParameterOverride
// ---------------------------------------------------------------------------

// ResetParameterOverrideUseCase deletes a company's overrides so the segment
// and global defaults apply again.
type ResetParameterOverrideUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewResetParameterOverrideUseCase wires dependencies.
func NewResetParameterOverrideUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *ResetParameterOverrideUseCase {
	return &ResetParameterOverrideUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute is a no-op, reporting Reset=false, when there was no override.
func (uc *ResetParameterOverrideUseCase) Execute(
	ctx context.Context,
	req dto.ResetParameterOverrideRequest,
) (dto.ResetParameterOverrideResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.ResetParameterOverrideResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.ResetParameterOverrideResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		reset     bool
	)
	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		_, found, err := r.Overrides.Find(ctx, req.CompanyID)
		if err != nil {
			return fmt.Errorf("find override: %w", err)
		}
		if !found {
			return nil
		}
		if err := r.Overrides.Delete(ctx, req.CompanyID); err != nil {
			return fmt.Errorf("delete override: %w", err)
		}
		reset = true
		collected.Record(event.NewParameterOverrideChanged(req.CompanyID, true, req.Actor.UserID, now))
		return nil
	})
	if err != nil {
		return dto.ResetParameterOverrideResponse{}, err
	}

	notify(ctx, uc.publisher, &collected)
	return dto.ResetParameterOverrideResponse{CompanyID: req.CompanyID, Reset: reset}, nil
}

// ---------------------------------------------------------------------------
// Global settings
// ---------------------------------------------------------------------------

// GetGlobalSettingsUseCase reads the settings singleton.
type GetGlobalSettingsUseCase struct {
	uow port.UnitOfWork
}

// NewGetGlobalSettingsUseCase wires dependencies.
func NewGetGlobalSettingsUseCase(uow port.UnitOfWork) *GetGlobalSettingsUseCase {
	return &GetGlobalSettingsUseCase{uow: uow}
}

// Execute returns the stored settings, or the defaults.
func (uc *GetGlobalSettingsUseCase) Execute(ctx context.Context, req dto.GetGlobalSettingsRequest) (dto.GlobalSettings, error) {
	if err := requireStaff(req.Actor); err != nil {
		return dto.GlobalSettings{}, err
	}
	s, err := uc.uow.Repositories().Settings.Get(ctx)
	if err != nil {
		return dto.GlobalSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return toSettingsDTO(s), nil
}

// UpdateGlobalSettingsUseCase replaces the settings singleton. Writes are
// last-write-wins.
type UpdateGlobalSettingsUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewUpdateGlobalSettingsUseCase wires dependencies.
func NewUpdateGlobalSettingsUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *UpdateGlobalSettingsUseCase {
	return &UpdateGlobalSettingsUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute validates every bound before writing.
func (uc *UpdateGlobalSettingsUseCase) Execute(ctx context.Context, req dto.UpdateGlobalSettingsRequest) (dto.GlobalSettings, error) {
	if err := requireStaff(req.Actor); err != nil {
		return dto.GlobalSettings{}, err
	}
	now := uc.clock.Now()
	settings := fromSettingsDTO(req.Settings)
	settings.UpdatedAt = now
	settings.UpdatedBy = req.Actor.UserID
	if err := settings.Validate(); err != nil {
		return dto.GlobalSettings{}, err
	}

	if err := uc.uow.Repositories().Settings.Put(ctx, settings); err != nil {
		return dto.GlobalSettings{}, fmt.Errorf("store settings: %w", err)
	}

	var collected events.EventCollector
	collected.Record(event.NewGlobalSettingsUpdated(req.Actor.UserID, now))
	notify(ctx, uc.publisher, &collected)
	return toSettingsDTO(settings), nil
}
