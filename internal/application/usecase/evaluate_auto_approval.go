package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// EvaluateAutoApprovalUseCase accepts a review request without manual review
// when the company's exposure and the invoice tenor are within limits.
type EvaluateAutoApprovalUseCase struct {
	uow        port.UnitOfWork
	publisher  port.EventPublisher
	resolver   *service.ParameterResolver
	calculator *service.OfferCalculator
	gate       *service.AutoApprovalGate
	clock      port.Clock
}

// NewEvaluateAutoApprovalUseCase wires dependencies.
func NewEvaluateAutoApprovalUseCase(
	uow port.UnitOfWork,
	publisher port.EventPublisher,
	resolver *service.ParameterResolver,
	calculator *service.OfferCalculator,
	gate *service.AutoApprovalGate,
	clock port.Clock,
) *EvaluateAutoApprovalUseCase {
	return &EvaluateAutoApprovalUseCase{
		uow:        uow,
		publisher:  publisher,
		resolver:   resolver,
		calculator: calculator,
		gate:       gate,
		clock:      clock,
	}
}

// Execute runs the gate. On rejection the response carries the figures and
// the error carries the policy code; nothing is written.
func (uc *EvaluateAutoApprovalUseCase) Execute(
	ctx context.Context,
	req dto.EvaluateAutoApprovalRequest,
) (dto.AutoApprovalResponse, error) {
	// 1. Validate input.
	if err := validation.Struct(req); err != nil {
		return dto.AutoApprovalResponse{}, err
	}
	if err := ensureCompanyAccess(req.Actor, req.CompanyID); err != nil {
		return dto.AutoApprovalResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		resp      dto.AutoApprovalResponse
	)

	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		// 2. Load the request, the company's active requests and the invoices.
		fr, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		active, err := r.Requests.ListByCompany(ctx, req.CompanyID, valueobject.ActiveRequestStatuses())
		if err != nil {
			return fmt.Errorf("list active requests: %w", err)
		}
		invoices, err := r.Invoices.FindByIDs(ctx, req.CompanyID, fr.InvoiceIDs())
		if err != nil {
			return fmt.Errorf("find invoices: %w", err)
		}
		params, err := resolveParameters(ctx, r, uc.resolver, req.CompanyID)
		if err != nil {
			return err
		}

		// 3. Evaluate.
		result, err := uc.gate.Evaluate(fr, active, invoices, params, now)
		resp = toAutoApprovalResponse(result)
		if err != nil {
			return err
		}

		// 4. Insert the accepted offer and accept the request.
		terms := uc.calculator.Standard(fr.RequestedAmount().Amount(), standardParams(params), now)
		offer, err := model.NewAcceptedOffer(req.CompanyID, fr.ID(), terms, req.Actor, now)
		if err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		if err := r.Offers.Insert(ctx, offer); err != nil {
			return fmt.Errorf("insert offer: %w", err)
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
		offerResp := toOfferResponse(offer)
		reqResp := toFundingRequestResponse(fr)
		resp.Offer = &offerResp
		resp.Request = &reqResp
		return nil
	})
	if err != nil {
		return resp, err
	}

	// 5. Publish after commit.
	notify(ctx, uc.publisher, &collected)

	return resp, nil
}

func toAutoApprovalResponse(r service.AutoApprovalResult) dto.AutoApprovalResponse {
	return dto.AutoApprovalResponse{
		Approved:       r.Approved,
		Reason:         r.Reason,
		TotalExposure:  r.TotalExposure,
		CreditLimit:    r.CreditLimit,
		ExposureLimit:  r.ExposureLimit,
		MaxTenorDays:   r.MaxTenorDays,
		TenorLimitDays: r.TenorLimitDays,
	}
}
