package usecase

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/validation"
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// DisburseUseCase funds an accepted or signed request: it resolves the
// destination account, creates or refreshes the single outbound payment and
// moves the request to funded.
type DisburseUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
}

// NewDisburseUseCase wires dependencies.
func NewDisburseUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock) *DisburseUseCase {
	return &DisburseUseCase{uow: uow, publisher: publisher, clock: clock}
}

// Execute is idempotent: calling it again on a funded request updates the
// existing payment and keeps the original disbursed_at, unless that payment is
// already processing or paid.
func (uc *DisburseUseCase) Execute(ctx context.Context, req dto.DisburseRequest) (dto.DisburseResponse, error) {
	// 1. Validate input.
	if err := validation.Struct(req); err != nil {
		return dto.DisburseResponse{}, err
	}
	if err := requireStaff(req.Actor); err != nil {
		return dto.DisburseResponse{}, err
	}

	now := uc.clock.Now()
	var (
		collected events.EventCollector
		resp      dto.DisburseResponse
	)

	err := uc.uow.WithinTx(ctx, func(r port.Repositories) error {
		// 2. Check the request is ready.
		fr, err := r.Requests.FindByID(ctx, req.CompanyID, req.RequestID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		if !fr.ReadyForDisbursement() {
			return apperr.NotReadyForDisbursement()
		}
		retry := fr.Status().Equal(valueobject.RequestStatusFunded)

		// 3. Resolve the destination account.
		accounts, err := r.BankAccounts.ListByCompany(ctx, req.CompanyID)
		if err != nil {
			return fmt.Errorf("list bank accounts: %w", err)
		}
		account, err := ResolveBankAccount(accounts, req.BankAccountID, fr.DisbursementAccountID())
		if err != nil {
			return err
		}

		// 4. Create or refresh the outbound payment.
		payment, existed, err := r.Payments.FindOutbound(ctx, req.CompanyID, fr.ID())
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}
		if existed {
			payment, err = payment.Refresh(account.ID, fr.RequestedAmount(), now)
			if err != nil {
				return err
			}
			if err := r.Payments.Update(ctx, payment); err != nil {
				return fmt.Errorf("update payment: %w", err)
			}
		} else {
			payment, err = model.NewOutboundPayment(req.CompanyID, fr.ID(), account.ID, fr.RequestedAmount(), now)
			if err != nil {
				return fmt.Errorf("create payment: %w", err)
			}
			if err := r.Payments.Insert(ctx, payment); err != nil {
				return fmt.Errorf("insert payment: %w", err)
			}
		}

		// 5. Mark the request funded.
		fr, err = fr.MarkFunded(account.ID, req.Actor, now)
		if err != nil {
			return fmt.Errorf("mark funded: %w", err)
		}
		if err := r.Requests.Update(ctx, fr); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		collected.Record(fr.DomainEvents()...)
		collected.Record(event.NewDisbursementRequested(
			payment.ID(), req.CompanyID, fr.ID(), account.ID,
			payment.Amount().Amount(), payment.Amount().Currency().Code(), retry, now,
		))
		resp = dto.DisburseResponse{
			Request: toFundingRequestResponse(fr),
			Payment: toPaymentResponse(payment),
			Retry:   retry,
		}
		return nil
	})
	if err != nil {
		return dto.DisburseResponse{}, err
	}

	// 6. Notify staff after commit.
	notify(ctx, uc.publisher, &collected)

	return resp, nil
}

// ResolveBankAccount picks the destination account among the company's
// accounts, in order: the explicit id (which must belong to the company), the
// request's previous account if still present, the default-flagged account,
// then the first account.
func ResolveBankAccount(accounts []model.BankAccount, explicitID, previousID string) (model.BankAccount, error) {
	if len(accounts) == 0 {
		return model.BankAccount{}, apperr.NoBankAccount()
	}
	if explicitID != "" {
		for _, a := range accounts {
			if a.ID == explicitID {
				return a, nil
			}
		}
		return model.BankAccount{}, apperr.InvalidBankAccount()
	}
	if previousID != "" {
		for _, a := range accounts {
			if a.ID == previousID {
				return a, nil
			}
		}
	}
	for _, a := range accounts {
		if a.IsDefault {
			return a, nil
		}
	}
	return accounts[0], nil
}
