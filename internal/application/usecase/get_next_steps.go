package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
)

// GetNextStepsUseCase derives the borrower-facing next step of a request.
type GetNextStepsUseCase struct {
	uow port.UnitOfWork
}

// NewGetNextStepsUseCase wires dependencies.
func NewGetNextStepsUseCase(uow port.UnitOfWork) *GetNextStepsUseCase {
	return &GetNextStepsUseCase{uow: uow}
}

// Execute reads the request and its open collection case, if any.
func (uc *GetNextStepsUseCase) Execute(ctx context.Context, req dto.GetNextStepsRequest) (dto.NextStepResponse, error) {
	if err := validation.Struct(req); err != nil {
		return dto.NextStepResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.NextStepResponse{}, err
	}

	repos := uc.uow.Repositories()
	fr, err := repos.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
	if err != nil {
		return dto.NextStepResponse{}, fmt.Errorf("find request: %w", err)
	}
	c, open, err := repos.Cases.FindOpenByRequest(ctx, req.CompanyID, req.RequestID)
	if err != nil {
		return dto.NextStepResponse{}, fmt.Errorf("find collection case: %w", err)
	}
	var openCase *model.CollectionCase
	if open {
		openCase = &c
	}

	step := service.DeriveNextStep(fr.Status(), openCase)
	return dto.NextStepResponse{
		RequestID: fr.ID(),
		Status:    fr.Status().String(),
		Label:     step.Label,
		Hint:      step.Hint,
	}, nil
}
